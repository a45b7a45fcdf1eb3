// Package message reads the body structure of MIME messages and decodes the
// parts for display.
//
// Parse works on a complete message held in memory. It returns a tree of
// Part values that point into the buffer by offset, nothing is copied:
//
//	root, err := message.Parse(src, false)
//	if err != nil {
//	  panic(err)
//	}
//
//	err = message.DecodePart(src, root.Parts[0], &message.DecodeContext{
//	  Out:   os.Stdout,
//	  Flags: message.Display | message.CharsetConvert,
//	})
//
// Real world mail is often broken. The parser never gives up on a message
// once the top level header is read: missing boundaries, truncated parts and
// excessive nesting are recovered from and the parts involved are marked
// Degraded.
package message
