// Package mua is the MIME engine of a terminal mail reader. It reads a
// message held in memory into a tree of parts, decodes the parts for display,
// printing, replying or signature checks, and handles the encodings found in
// header fields along the way.
//
// The code is split according to the piece of the message it deals with:
//
//   - message parses the body structure with message.Parse and decodes parts
//     with message.DecodePart. Parts only hold offsets into the source
//     buffer, so the buffer has to stay around for as long as the tree does.
//   - message/header and message/header/field read header blocks and decode
//     and encode RFC 2047 encoded words.
//   - message/header/param parses parameter lists like those of Content-type,
//     including the RFC 2231 continuations, charsets and languages.
//   - message/transfer removes and applies the transfer encodings and
//     converts text between charsets while doing so.
//   - message/flowed reflows format=flowed text (RFC 3676).
//   - message/walker visits the parts of a tree.
//   - charset maps charset names to converters.
//   - config loads the settings that feed all of the above.
//
// Real mail is frequently broken, so parsing never gives up on a message.
// When the structure cannot be read as declared, the parser settles for a
// simpler reading and marks the part as Degraded. Problems that were
// recovered from are reported to the *slog.Logger given with the options, if
// any.
//
// The mimetree command under cmd/ shows what the library makes of a message.
package mua
