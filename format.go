package sexpfmt

import (
	"fmt"
	"io"
	"sync"
)

var printerPool = sync.Pool{
	New: func() any {
		return &printer{}
	},
}

// FormatRequest configures Format.
type FormatRequest struct {
	Reader io.Reader
	Writer io.Writer
	Width  int
}

// Format reads every top-level form from the request reader and writes the
// formatted document to the request writer. Forms are separated by one blank
// line and the document ends with a newline. A Width of zero or less means
// DefaultWidth.
func Format(req FormatRequest) error {
	if req.Reader == nil {
		return fmt.Errorf("format: reader is nil")
	}
	if req.Writer == nil {
		return fmt.Errorf("format: writer is nil")
	}
	src, err := io.ReadAll(req.Reader)
	if err != nil {
		return fmt.Errorf("format: read: %w", err)
	}
	out, err := FormatBytes(src, req.Width)
	if err != nil {
		return err
	}
	if _, err := req.Writer.Write(out); err != nil {
		return fmt.Errorf("format: write: %w", err)
	}
	return nil
}

// FormatBytes formats src and returns the result. The input must be valid
// UTF-8 text containing at least one form.
func FormatBytes(src []byte, width int) ([]byte, error) {
	if err := ValidateInput(src); err != nil {
		return nil, err
	}
	roots, err := Parse(src)
	if err != nil {
		return nil, err
	}
	if width <= 0 {
		width = DefaultWidth
	}
	p := printerPool.Get().(*printer)
	p.reset(width)
	for i, root := range roots {
		if i > 0 {
			p.buf = append(p.buf, '\n')
		}
		p.render(root, 0)
		p.buf = append(p.buf, '\n')
	}
	out := make([]byte, len(p.buf))
	copy(out, p.buf)
	p.reset(0)
	printerPool.Put(p)
	return out, nil
}
