package transfer

import "io"

// writer closes an encoder and then the line writer beneath it.
type writer struct {
	io.WriteCloser
	inner io.Closer
}

// Close flushes the encoder and then closes the inner writer.
func (w *writer) Close() error {
	if err := w.WriteCloser.Close(); err != nil {
		return err
	}
	if w.inner != nil {
		return w.inner.Close()
	}
	return nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
