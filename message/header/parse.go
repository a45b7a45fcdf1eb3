package header

import (
	"errors"

	"github.com/zostay/go-mua/message/header/field"
)

// Parse will parse the given slice of bytes into a header. It will assume the
// entire slice represents the header block, without the blank line that ends
// it.
//
// Junk at the start of the block that does not look like a field is skipped
// and reported as a *field.BadStartError. The returned header is usable in
// that case.
func Parse(m []byte) (*Header, error) {
	lines, err := field.ParseLines(m)

	var badStartErr *field.BadStartError // recoverable
	var finalErr error
	if errors.As(err, &badStartErr) {
		finalErr = badStartErr
	} else if err != nil {
		return nil, err
	}

	fields := make([]*field.Field, len(lines))
	for i, line := range lines {
		fields[i] = field.Parse(line)
	}

	return New(DetectBreak(m), fields...), finalErr
}
