package container

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// IntReader is a pull-style cursor over an integer dataset, for
// callers that consume two datasets in lock-step and cannot express
// that as nested streaming callbacks.
type IntReader struct {
	ds    *Dataset
	f     *os.File
	r     *bufio.Reader
	buf   []byte
	width int
	left  uint64
}

// IntReader opens a cursor over the dataset. Close releases the
// underlying file.
func (d *Dataset) IntReader() (*IntReader, error) {
	if !d.Type().IsInteger() {
		return nil, fmt.Errorf("dataset '%s' is not of an integer type", d.name)
	}
	f, err := os.Open(d.payloadPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open payload of '%s': %w", d.name, err)
	}

	width := d.Type().width()
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if uint64(info.Size()) != d.Length()*uint64(width) {
		f.Close()
		return nil, fmt.Errorf("payload of '%s' is %d bytes, expected %d", d.name, info.Size(), d.Length()*uint64(width))
	}

	return &IntReader{
		ds:    d,
		f:     f,
		r:     bufio.NewReader(f),
		buf:   make([]byte, width),
		width: width,
		left:  d.Length(),
	}, nil
}

// Next returns the next element; ok is false once the dataset is exhausted
func (r *IntReader) Next() (v int64, ok bool, err error) {
	if r.left == 0 {
		return 0, false, nil
	}
	if _, err := io.ReadFull(r.r, r.buf); err != nil {
		return 0, false, fmt.Errorf("truncated payload of '%s'", r.ds.name)
	}
	r.left--
	v, err = decodeInt(r.ds.Type(), r.buf)
	if err != nil {
		return 0, false, fmt.Errorf("dataset '%s': %w", r.ds.name, err)
	}
	return v, true, nil
}

// Close releases the cursor's file handle
func (r *IntReader) Close() error {
	return r.f.Close()
}
