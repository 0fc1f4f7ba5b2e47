package container

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Writer builds a shelf store on disk. Payload files are written
// eagerly; the index is written on Close.
type Writer struct {
	dir    string
	root   *GroupWriter
	serial int
}

// Create initializes a new shelf store directory at dir
func Create(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create shelf store at '%s': %w", dir, err)
	}
	w := &Writer{dir: dir}
	w.root = &GroupWriter{writer: w, node: &groupNode{}}
	return w, nil
}

// Root returns the top-level group writer
func (w *Writer) Root() *GroupWriter {
	return w.root
}

// Close writes the index.json, finalizing the store
func (w *Writer) Close() error {
	idx := indexFile{ShelfStore: FormatVersion, Root: w.root.node}
	raw, err := json.MarshalIndent(&idx, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(w.dir, "index.json"), raw, 0o644)
}

// GroupWriter accumulates one group of the store tree
type GroupWriter struct {
	writer *Writer
	node   *groupNode
}

// Group creates (or reopens) a child group
func (g *GroupWriter) Group(name string) *GroupWriter {
	if g.node.Groups == nil {
		g.node.Groups = make(map[string]*groupNode)
	}
	child, ok := g.node.Groups[name]
	if !ok {
		child = &groupNode{}
		g.node.Groups[name] = child
	}
	return &GroupWriter{writer: g.writer, node: child}
}

// DatasetWriter finalizes attributes of a written dataset
type DatasetWriter struct {
	node *datasetNode
}

// SetAttribute attaches a scalar attribute to the dataset
func (d *DatasetWriter) SetAttribute(name string, value interface{}) *DatasetWriter {
	if d.node.Attributes == nil {
		d.node.Attributes = make(map[string]interface{})
	}
	d.node.Attributes[name] = value
	return d
}

func (g *GroupWriter) newDataset(name string, dtype Type, shape []uint64) (*datasetNode, *os.File, error) {
	if g.node.Datasets == nil {
		g.node.Datasets = make(map[string]*datasetNode)
	}
	if _, exists := g.node.Datasets[name]; exists {
		return nil, nil, fmt.Errorf("dataset '%s' already written", name)
	}

	g.writer.serial++
	file := fmt.Sprintf("d%04d.bin", g.writer.serial)
	f, err := os.Create(filepath.Join(g.writer.dir, file))
	if err != nil {
		return nil, nil, err
	}

	node := &datasetNode{DType: dtype, Shape: shape, File: file}
	g.node.Datasets[name] = node
	return node, f, nil
}

// WriteInts writes an integer dataset, narrowing each value to the
// declared dtype. An empty shape writes a scalar of length one.
func (g *GroupWriter) WriteInts(name string, dtype Type, shape []uint64, values []int64) (*DatasetWriter, error) {
	if !dtype.IsInteger() {
		return nil, fmt.Errorf("dtype '%s' is not an integer type", dtype)
	}
	node, f, err := g.newDataset(name, dtype, shape)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	width := dtype.width()
	buf := make([]byte, width)
	for _, v := range values {
		switch width {
		case 1:
			buf[0] = byte(v)
		case 2:
			binary.LittleEndian.PutUint16(buf, uint16(v))
		case 4:
			binary.LittleEndian.PutUint32(buf, uint32(v))
		case 8:
			binary.LittleEndian.PutUint64(buf, uint64(v))
		}
		if _, err := f.Write(buf); err != nil {
			return nil, err
		}
	}
	return &DatasetWriter{node: node}, nil
}

// WriteFloats writes a floating-point dataset
func (g *GroupWriter) WriteFloats(name string, dtype Type, shape []uint64, values []float64) (*DatasetWriter, error) {
	if !dtype.IsFloat() {
		return nil, fmt.Errorf("dtype '%s' is not a floating-point type", dtype)
	}
	node, f, err := g.newDataset(name, dtype, shape)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, dtype.width())
	for _, v := range values {
		if dtype == Float32 {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
		} else {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		}
		if _, err := f.Write(buf); err != nil {
			return nil, err
		}
	}
	return &DatasetWriter{node: node}, nil
}

// WriteBools writes a boolean dataset
func (g *GroupWriter) WriteBools(name string, shape []uint64, values []bool) (*DatasetWriter, error) {
	node, f, err := g.newDataset(name, Bool, shape)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for _, v := range values {
		b := byte(0)
		if v {
			b = 1
		}
		if _, err := f.Write([]byte{b}); err != nil {
			return nil, err
		}
	}
	return &DatasetWriter{node: node}, nil
}

// WriteStrings writes a string dataset of length-prefixed UTF-8 records
func (g *GroupWriter) WriteStrings(name string, shape []uint64, values []string) (*DatasetWriter, error) {
	node, f, err := g.newDataset(name, String, shape)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	varint := make([]byte, binary.MaxVarintLen64)
	for _, v := range values {
		n := binary.PutUvarint(varint, uint64(len(v)))
		if _, err := f.Write(varint[:n]); err != nil {
			return nil, err
		}
		if _, err := f.WriteString(v); err != nil {
			return nil, err
		}
	}
	return &DatasetWriter{node: node}, nil
}
