package header

import (
	"time"

	"github.com/zostay/go-addr/pkg/addr"

	"github.com/zostay/go-mua/message/header/field"
)

// Envelope holds the fields that describe a message as a whole. It is built
// for the top level of a message and for each message/rfc822 part.
type Envelope struct {
	Date      time.Time
	Subject   string
	From      addr.AddressList
	Sender    addr.AddressList
	ReplyTo   addr.AddressList
	To        addr.AddressList
	Cc        addr.AddressList
	Bcc       addr.AddressList
	InReplyTo string
	MessageID string
}

// Envelope builds the envelope of the header. Missing fields are left zero and
// a date that cannot be parsed is the zero time. The subject is decoded with
// the given options.
//
// As in RFC 3501, a missing Sender or Reply-to takes the value of From.
func (h *Header) Envelope(opts ...field.DecodeOption) *Envelope {
	env := &Envelope{}

	env.Date, _ = h.GetTime(Date)
	env.Subject, _ = h.GetText(Subject, opts...)
	env.From, _ = h.GetAddressList(From)
	env.Sender, _ = h.GetAddressList(Sender)
	env.ReplyTo, _ = h.GetAddressList(ReplyTo)
	env.To, _ = h.GetAddressList(To)
	env.Cc, _ = h.GetAddressList(Cc)
	env.Bcc, _ = h.GetAddressList(Bcc)
	env.InReplyTo, _ = h.getFirst(InReplyTo)
	env.MessageID, _ = h.getFirst(MessageID)

	if len(env.Sender) == 0 {
		env.Sender = env.From
	}
	if len(env.ReplyTo) == 0 {
		env.ReplyTo = env.From
	}

	return env
}
