package message

import (
	"bytes"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/zostay/go-addr/pkg/addr"

	"github.com/zostay/go-mua/message/header"
	"github.com/zostay/go-mua/message/header/param"
)

// BodyStructure describes the part tree of p the way an IMAP server reports
// it in a BODYSTRUCTURE response. The extension data is always included.
func BodyStructure(src []byte, p *Part) *imap.BodyStructure {
	bs := &imap.BodyStructure{
		MIMEType:    p.Type.String(),
		MIMESubType: p.Subtype,
		Params:      paramMap(p.Params),
		Id:          p.ID,
		Description: p.Description,
		Encoding:    p.Encoding.String(),
		Size:        uint32(p.Length),
		Extended:    true,
	}

	if p.Header != nil {
		if _, err := p.Header.Get(header.ContentDisposition); err == nil {
			bs.Disposition = p.Disposition.String()
			bs.DispositionParams = paramMap(p.DispositionParams)
		}
	}

	if p.IsText() || p.Type == Message {
		bs.Lines = uint32(bytes.Count(p.Body(src), []byte{'\n'}))
	}

	switch {
	case p.Type == Multipart:
		bs.Parts = make([]*imap.BodyStructure, len(p.Parts))
		for i, c := range p.Parts {
			bs.Parts[i] = BodyStructure(src, c)
		}
	case p.Type == Message && len(p.Parts) == 1:
		c := p.Parts[0]
		bs.BodyStructure = BodyStructure(src, c)
		if c.Envelope != nil {
			bs.Envelope = Envelope(c.Envelope)
		}
	}

	return bs
}

func paramMap(ps param.List) map[string]string {
	if len(ps) == 0 {
		return nil
	}
	return ps.Map()
}

// Envelope converts an envelope to the IMAP representation.
func Envelope(env *header.Envelope) *imap.Envelope {
	return &imap.Envelope{
		Date:      env.Date,
		Subject:   env.Subject,
		From:      addresses(env.From),
		Sender:    addresses(env.Sender),
		ReplyTo:   addresses(env.ReplyTo),
		To:        addresses(env.To),
		Cc:        addresses(env.Cc),
		Bcc:       addresses(env.Bcc),
		InReplyTo: env.InReplyTo,
		MessageId: env.MessageID,
	}
}

type displayNamer interface {
	DisplayName() string
}

func addresses(al addr.AddressList) []*imap.Address {
	if len(al) == 0 {
		return nil
	}

	as := make([]*imap.Address, 0, len(al))
	for _, a := range al {
		ia := &imap.Address{}
		if dn, ok := a.(displayNamer); ok {
			ia.PersonalName = dn.DisplayName()
		}

		email := a.Address()
		if i := strings.LastIndexByte(email, '@'); i >= 0 {
			ia.MailboxName = email[:i]
			ia.HostName = email[i+1:]
		} else {
			ia.MailboxName = email
		}

		as = append(as, ia)
	}

	return as
}
