package container

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"unicode/utf8"
)

// StreamInts streams an integer dataset in blocks of at most blockSize
// elements, widening every element to int64. The callback may retain
// nothing past its return; the block slice is reused.
func (d *Dataset) StreamInts(blockSize int, fn func(block []int64) error) error {
	if !d.Type().IsInteger() {
		return fmt.Errorf("dataset '%s' is not of an integer type", d.name)
	}
	return d.streamFixed(blockSize, func(buf []byte, n int, width int, out []int64) error {
		for i := 0; i < n; i++ {
			v, err := decodeInt(d.Type(), buf[i*width:(i+1)*width])
			if err != nil {
				return fmt.Errorf("dataset '%s': %w", d.name, err)
			}
			out[i] = v
		}
		return fn(out[:n])
	})
}

// StreamFloats streams a floating-point dataset, widening to float64
func (d *Dataset) StreamFloats(blockSize int, fn func(block []float64) error) error {
	if !d.Type().IsFloat() {
		return fmt.Errorf("dataset '%s' is not of a floating-point type", d.name)
	}
	out := make([]float64, 0)
	return d.streamFixed(blockSize, func(buf []byte, n int, width int, _ []int64) error {
		if cap(out) < n {
			out = make([]float64, n)
		}
		block := out[:n]
		for i := 0; i < n; i++ {
			if width == 4 {
				block[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])))
			} else {
				block[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
			}
		}
		return fn(block)
	})
}

// StreamBools streams a boolean dataset; payload bytes must be 0 or 1
func (d *Dataset) StreamBools(blockSize int, fn func(block []bool) error) error {
	if d.Type() != Bool {
		return fmt.Errorf("dataset '%s' is not of a boolean type", d.name)
	}
	out := make([]bool, 0)
	return d.streamFixed(blockSize, func(buf []byte, n int, _ int, _ []int64) error {
		if cap(out) < n {
			out = make([]bool, n)
		}
		block := out[:n]
		for i := 0; i < n; i++ {
			switch buf[i] {
			case 0:
				block[i] = false
			case 1:
				block[i] = true
			default:
				return fmt.Errorf("dataset '%s': boolean payload byte %d out of range", d.name, buf[i])
			}
		}
		return fn(block)
	})
}

// StreamStrings streams a string dataset of uvarint-length-prefixed
// UTF-8 records, checking each record is valid UTF-8.
func (d *Dataset) StreamStrings(blockSize int, fn func(block []string) error) error {
	if d.Type() != String {
		return fmt.Errorf("dataset '%s' is not of a string type", d.name)
	}
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	f, err := os.Open(d.payloadPath())
	if err != nil {
		return fmt.Errorf("failed to open payload of '%s': %w", d.name, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	total := d.Length()
	block := make([]string, 0, blockSize)

	for read := uint64(0); read < total; read++ {
		length, err := binary.ReadUvarint(r)
		if err != nil {
			return fmt.Errorf("truncated payload of '%s'", d.name)
		}
		raw := make([]byte, length)
		if _, err := io.ReadFull(r, raw); err != nil {
			return fmt.Errorf("truncated payload of '%s'", d.name)
		}
		if !utf8.Valid(raw) {
			return fmt.Errorf("dataset '%s' contains invalid UTF-8", d.name)
		}
		block = append(block, string(raw))
		if len(block) == blockSize {
			if err := fn(block); err != nil {
				return err
			}
			block = block[:0]
		}
	}
	if len(block) > 0 {
		if err := fn(block); err != nil {
			return err
		}
	}
	if _, err := r.ReadByte(); err != io.EOF {
		return fmt.Errorf("payload of '%s' is longer than its declared shape", d.name)
	}
	return nil
}

// streamFixed drives block reads over a fixed-width payload, verifying
// the byte count against the declared shape.
func (d *Dataset) streamFixed(blockSize int, fn func(buf []byte, n int, width int, ints []int64) error) error {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	width := d.Type().width()
	total := d.Length()

	f, err := os.Open(d.payloadPath())
	if err != nil {
		return fmt.Errorf("failed to open payload of '%s': %w", d.name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if uint64(info.Size()) != total*uint64(width) {
		return fmt.Errorf("payload of '%s' is %d bytes, expected %d", d.name, info.Size(), total*uint64(width))
	}

	r := bufio.NewReader(f)
	if d.store.parallel {
		return d.streamFixedReadAhead(r, blockSize, width, total, fn)
	}

	buf := make([]byte, blockSize*width)
	ints := make([]int64, blockSize)

	for read := uint64(0); read < total; {
		n := blockSize
		if rest := total - read; rest < uint64(n) {
			n = int(rest)
		}
		if _, err := io.ReadFull(r, buf[:n*width]); err != nil {
			return fmt.Errorf("truncated payload of '%s'", d.name)
		}
		if err := fn(buf, n, width, ints); err != nil {
			return err
		}
		read += uint64(n)
	}
	return nil
}

// streamFixedReadAhead drives the same block loop with the reads on
// their own goroutine, so decoding the current block overlaps reading
// the next. Two buffers rotate through the free channel; blocks are
// delivered in file order.
func (d *Dataset) streamFixedReadAhead(r io.Reader, blockSize, width int, total uint64, fn func(buf []byte, n int, width int, ints []int64) error) error {
	type fixedBlock struct {
		buf []byte
		n   int
		err error
	}

	free := make(chan []byte, 2)
	free <- make([]byte, blockSize*width)
	free <- make([]byte, blockSize*width)
	blocks := make(chan fixedBlock, 2)

	go func() {
		defer close(blocks)
		for read := uint64(0); read < total; {
			buf := <-free
			n := blockSize
			if rest := total - read; rest < uint64(n) {
				n = int(rest)
			}
			if _, err := io.ReadFull(r, buf[:n*width]); err != nil {
				blocks <- fixedBlock{err: fmt.Errorf("truncated payload of '%s'", d.name)}
				return
			}
			blocks <- fixedBlock{buf: buf, n: n}
			read += uint64(n)
		}
	}()

	ints := make([]int64, blockSize)
	var consumeErr error
	// drain the channel even after a failure so the reader never blocks
	for b := range blocks {
		if b.err != nil {
			if consumeErr == nil {
				consumeErr = b.err
			}
			continue
		}
		if consumeErr == nil {
			consumeErr = fn(b.buf, b.n, width, ints)
		}
		free <- b.buf
	}
	return consumeErr
}

// ReadScalarInt reads a dataset expected to hold exactly one integer
func (d *Dataset) ReadScalarInt() (int64, error) {
	if d.Length() != 1 {
		return 0, fmt.Errorf("dataset '%s' should be a scalar", d.name)
	}
	var out int64
	err := d.StreamInts(1, func(block []int64) error {
		out = block[0]
		return nil
	})
	return out, err
}

// ReadAllInts materializes a small integer dataset. Intended for
// bounded metadata-sized datasets such as shapes; bulk payloads go
// through StreamInts.
func (d *Dataset) ReadAllInts() ([]int64, error) {
	out := make([]int64, 0, d.Length())
	err := d.StreamInts(DefaultBlockSize, func(block []int64) error {
		out = append(out, block...)
		return nil
	})
	return out, err
}

// ReadAllStrings materializes a small string dataset
func (d *Dataset) ReadAllStrings() ([]string, error) {
	out := make([]string, 0, d.Length())
	err := d.StreamStrings(DefaultBlockSize, func(block []string) error {
		out = append(out, block...)
		return nil
	})
	return out, err
}

func decodeInt(t Type, raw []byte) (int64, error) {
	switch t {
	case Int8:
		return int64(int8(raw[0])), nil
	case Uint8:
		return int64(raw[0]), nil
	case Int16:
		return int64(int16(binary.LittleEndian.Uint16(raw))), nil
	case Uint16:
		return int64(binary.LittleEndian.Uint16(raw)), nil
	case Int32:
		return int64(int32(binary.LittleEndian.Uint32(raw))), nil
	case Uint32:
		return int64(binary.LittleEndian.Uint32(raw)), nil
	case Int64:
		return int64(binary.LittleEndian.Uint64(raw)), nil
	case Uint64:
		v := binary.LittleEndian.Uint64(raw)
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("uint64 value %d overflows the streaming range", v)
		}
		return int64(v), nil
	}
	return 0, fmt.Errorf("type '%s' is not an integer type", t)
}
