package header

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/zostay/go-addr/pkg/addr"

	"github.com/zostay/go-mua/message/header/field"
	"github.com/zostay/go-mua/message/header/param"
	"github.com/zostay/go-mua/message/transfer"
)

// Errors returned by various header methods and functions.
var (
	// ErrNoSuchField is returned by Header methods when the operation
	// being performed failed because the header named does not exist.
	ErrNoSuchField = errors.New("no such header field")

	// ErrManyFields is returned by Header methods when the operation
	// being performed failed because the there are multiple fields with the
	// given name.
	ErrManyFields = errors.New("many header fields found")
)

// These are the header fields the MIME engine reads.
const (
	Bcc                     = "Bcc"
	Cc                      = "Cc"
	ContentDescription      = "Content-description"
	ContentDisposition      = "Content-disposition"
	ContentID               = "Content-id"
	ContentTransferEncoding = "Content-transfer-encoding"
	ContentType             = "Content-type"
	Date                    = "Date"
	From                    = "From"
	InReplyTo               = "In-reply-to"
	Keywords                = "Keywords"
	MessageID               = "Message-id"
	MIMEVersion             = "Mime-version"
	ReplyTo                 = "Reply-to"
	Sender                  = "Sender"
	Subject                 = "Subject"
	To                      = "To"
)

// Even more custom date formats, built from those seen in the wild that the
// usual parsers have trouble with.
const (
	// UnixDateWithEarlyYear is a weird one, eh?
	UnixDateWithEarlyYear = "Mon Jan 02 15:04:05 2006 MST"
)

// Header is an ordered list of header fields as read from a message or from
// the sub-header of a MIME part. Fields are kept exactly as they were read.
//
// The getter methods of this object will return an error if the field being
// fetched has not been set on the header. The error returned will be
// ErrNoSuchField.
type Header struct {
	lbr    Break
	fields []*field.Field

	// valueCache holds the parsed value of singular fields. It must only hold
	// immutable values or values that are copied on the way out.
	valueCache map[string]any
}

// New returns a header holding the given fields.
func New(lbr Break, fs ...*field.Field) *Header {
	return &Header{lbr: lbr, fields: fs}
}

// Break returns the line break detected when the header was parsed.
func (h *Header) Break() Break { return h.lbr }

// Len returns the number of fields in the header.
func (h *Header) Len() int { return len(h.fields) }

// Fields returns the fields of the header in order.
func (h *Header) Fields() []*field.Field { return h.fields }

// Raw returns the header as it appeared in the source.
func (h *Header) Raw() []byte {
	var b []byte
	for _, f := range h.fields {
		b = append(b, f.Raw()...)
	}
	return b
}

// getValue retrieves the cached value. The second value is true if the cache
// value was set.
func (h *Header) getValue(name string) (any, bool) {
	v, found := h.valueCache[strings.ToLower(name)]
	return v, found
}

// setValue replaces the cached value for the given name.
func (h *Header) setValue(name string, value any) {
	if h.valueCache == nil {
		h.valueCache = make(map[string]any, len(h.fields))
	}
	h.valueCache[strings.ToLower(name)] = value
}

// GetAllFieldsNamed returns every field with the given name, compared
// case-insensitively.
func (h *Header) GetAllFieldsNamed(name string) []*field.Field {
	var fs []*field.Field
	for _, f := range h.fields {
		if f.Is(name) {
			fs = append(fs, f)
		}
	}
	return fs
}

// Get retrieves the unfolded body of the named field.
//
// If the named field is not set in the header, it will return an empty string
// with ErrNoSuchField. If there are multiple headers for the given named field,
// it will return the first value found and return ErrManyFields.
func (h *Header) Get(name string) (string, error) {
	fs := h.GetAllFieldsNamed(name)
	if len(fs) == 0 {
		return "", ErrNoSuchField
	}

	if len(fs) > 1 {
		return fs[0].Body(), ErrManyFields
	}

	return fs[0].Body(), nil
}

// getFirst is Get for fields that are singular by definition. A repeated
// field yields the first occurrence without complaint.
func (h *Header) getFirst(name string) (string, error) {
	b, err := h.Get(name)
	if errors.Is(err, ErrManyFields) {
		return b, nil
	}
	return b, err
}

// GetAll fetches all the header field bodies for fields with the given
// name and returns them as a slice of strings.
//
// It returns nil with ErrNoSuchField if no field with the given name is set on
// the header.
func (h *Header) GetAll(name string) ([]string, error) {
	fs := h.GetAllFieldsNamed(name)
	if len(fs) == 0 {
		return nil, ErrNoSuchField
	}

	bs := make([]string, len(fs))
	for i, f := range fs {
		bs[i] = f.Body()
	}

	return bs, nil
}

// GetText returns the body of the named field with RFC 2047 encoded words
// decoded.
func (h *Header) GetText(name string, opts ...field.DecodeOption) (string, error) {
	fs := h.GetAllFieldsNamed(name)
	if len(fs) == 0 {
		return "", ErrNoSuchField
	}

	return fs[0].Text(opts...), nil
}

// GetParamValue will return a param.Value for the header field matching the
// given name. Parameter parsing is lenient, so the only errors are
// ErrNoSuchField and ErrManyFields.
func (h *Header) GetParamValue(name string, opts ...param.Option) (*param.Value, error) {
	body, err := h.Get(name)
	if err != nil && !errors.Is(err, ErrManyFields) {
		return nil, err
	}

	return param.ParseValue(body, opts...), err
}

// GetContentType returns the parsed Content-type field. The media type is
// lowercased and may lack a subtype, exactly as found.
func (h *Header) GetContentType(opts ...param.Option) (*param.Value, error) {
	pv, err := h.GetParamValue(ContentType, opts...)
	if errors.Is(err, ErrManyFields) {
		err = nil
	}
	return pv, err
}

// GetContentDisposition returns the parsed Content-disposition field.
func (h *Header) GetContentDisposition(opts ...param.Option) (*param.Value, error) {
	pv, err := h.GetParamValue(ContentDisposition, opts...)
	if errors.Is(err, ErrManyFields) {
		err = nil
	}
	return pv, err
}

// GetTransferEncoding returns the Content-transfer-encoding. A missing field
// is 7bit. An unrecognized one is transfer.Other.
func (h *Header) GetTransferEncoding() transfer.Encoding {
	body, err := h.getFirst(ContentTransferEncoding)
	if err != nil {
		return transfer.SevenBit
	}

	return transfer.ParseEncoding(body)
}

// ParseTime is a function that provides the time parsing used by GetTime() to
// parse dates to be used on any field body. This will attempt to parse the
// date using the format specified by RFC 5322 first and fallback to parsing it
// in many other formats.
//
// It either returns a parsed time or the parse error.
func ParseTime(body string) (time.Time, error) {
	t, err := mail.ParseDate(body)
	if err == nil {
		return t, nil
	}

	t, err = dateparse.ParseAny(body)
	if err == nil {
		return t, nil
	}

	t, err = time.Parse(UnixDateWithEarlyYear, body)
	if err == nil {
		return t, nil
	}

	return t, fmt.Errorf("time string %q cannot be parsed", body)
}

// GetTime gets the given date header field as a time.Time. It will attempt to
// parse the date in many formats, not just the format specified by RFC 5322
// (though, it will try that first).
//
// It will return the zero value and ErrNoSuchField if the header does not
// exist.
func (h *Header) GetTime(name string) (time.Time, error) {
	if v, found := h.getValue(name); found {
		if t, isTime := v.(time.Time); isTime {
			return t, nil
		}
	}

	body, err := h.getFirst(name)
	if err != nil {
		return time.Time{}, err
	}

	t, err := ParseTime(body)
	if err != nil {
		return t, err
	}

	h.setValue(name, t)

	return t, nil
}

// ParseAddressList provides the address parsing used by GetAddressList() and
// can be used to parse any field body. It will attempt a strict parse of the
// email address list. However, if that fails, an extremely lenient parsing
// will be attempted, which might result in results that can only be described
// as "weird" in the effort to provide some kind of result.
func ParseAddressList(body string) addr.AddressList {
	al, err := addr.ParseEmailAddressList(body)
	if err != nil {
		al = parseEmailAddressList(body)
	}

	return al
}

// GetAddressList will return an addr.AddressList for the named field. Every
// occurrence of the field contributes to the list. This method works hard to
// avoid parse errors and tries to accept anything.
//
// It will return nil and ErrNoSuchField if the field is not set on the header.
func (h *Header) GetAddressList(name string) (addr.AddressList, error) {
	if v, found := h.getValue(name); found {
		if al, isAddrList := v.(addr.AddressList); isAddrList {
			return al, nil
		}
	}

	bs, err := h.GetAll(name)
	if err != nil {
		return nil, err
	}

	var al addr.AddressList
	for _, b := range bs {
		al = append(al, ParseAddressList(b)...)
	}

	h.setValue(name, al)

	return al, nil
}

// GetKeywordsList will return a list of strings representing all the keywords
// set on the named header. There can be zero or more such headers, each with a
// comma-separated list of keywords.
//
// This method will return nil with ErrNoSuchField if the named field does not
// exist.
func (h *Header) GetKeywordsList(name string) ([]string, error) {
	bs, err := h.GetAll(name)
	if err != nil {
		return nil, err
	}

	ks := make([]string, 0, len(bs)*2)
	for _, b := range bs {
		for _, k := range strings.Split(b, ",") {
			if k = strings.TrimSpace(k); k != "" {
				ks = append(ks, k)
			}
		}
	}

	return ks, nil
}

// parseEmailAddressList is a very forgiving address parser used when strict
// parsing fails. We stuff whatever we get into an addr.Mailbox and call it
// good.
func parseEmailAddressList(v string) addr.AddressList {
	extractComments := func(s string) (string, string) {
		var clean, comment strings.Builder
		nestLevel := 0
		for _, c := range s {
			switch {
			case c == '(':
				nestLevel++
				if nestLevel > 1 {
					comment.WriteRune(c)
				}
			case c == ')':
				nestLevel--
				switch {
				case nestLevel == 0:
				case nestLevel < 0:
					nestLevel = 0
					clean.WriteRune(c)
				default:
					comment.WriteRune(c)
				}
			case nestLevel > 0:
				comment.WriteRune(c)
			default:
				clean.WriteRune(c)
			}
		}

		return clean.String(), comment.String()
	}

	mbs := strings.Split(v, ",")
	as := make(addr.AddressList, 0, len(mbs))
	for _, orig := range mbs {
		mb, com := extractComments(orig)
		mb = strings.TrimSpace(mb)
		com = strings.TrimSpace(com)

		parts := strings.Fields(mb)
		if len(parts) == 0 {
			continue
		}

		dn := strings.Join(parts[:len(parts)-1], " ")
		email := strings.Trim(parts[len(parts)-1], "<>")

		local, domain, _ := strings.Cut(email, "@")
		addrSpec := addr.NewAddrSpecParsed(local, domain, email)

		mailbox, err := addr.NewMailboxParsed(dn, addrSpec, com, orig)
		if err != nil {
			mailbox, _ = addr.NewMailboxParsed(dn, addrSpec, "", orig)
		}

		as = append(as, mailbox)
	}

	return as
}
