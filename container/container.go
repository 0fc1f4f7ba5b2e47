// Package container implements the shelf store, the on-disk container
// format holding the binary payloads of serialized objects. A store is
// a directory with an index.json describing a tree of groups and typed
// datasets; each dataset's payload lives in its own raw little-endian
// file so arbitrarily large data can be streamed in bounded memory.
package container

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FormatVersion is the shelf store version this package reads and writes
const FormatVersion = 1

// DefaultBlockSize is the number of elements handed to streaming
// callbacks per block when the caller does not tune it.
const DefaultBlockSize = 65536

type indexFile struct {
	ShelfStore int        `json:"shelf_store"`
	Root       *groupNode `json:"root"`
}

type groupNode struct {
	Groups   map[string]*groupNode   `json:"groups,omitempty"`
	Datasets map[string]*datasetNode `json:"datasets,omitempty"`
}

type datasetNode struct {
	DType      Type                   `json:"dtype"`
	Shape      []uint64               `json:"shape"`
	File       string                 `json:"file"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// Store is an open shelf store rooted at a directory
type Store struct {
	dir      string
	root     *Group
	parallel bool
}

// SetParallel switches fixed-width streaming to a read-ahead mode
// where the next block is read off a goroutine while the current one
// is being consumed. Callbacks still run sequentially and in order.
func (s *Store) SetParallel(p bool) {
	s.parallel = p
}

// Open reads the index of the shelf store at dir. Payload files are
// opened lazily per streaming read.
func Open(dir string) (*Store, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "index.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to open shelf store at '%s': %w", dir, err)
	}

	var idx indexFile
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("malformed shelf store index at '%s': %w", dir, err)
	}
	if idx.ShelfStore != FormatVersion {
		return nil, fmt.Errorf("unsupported shelf store version %d at '%s'", idx.ShelfStore, dir)
	}
	if idx.Root == nil {
		return nil, fmt.Errorf("shelf store index at '%s' has no root group", dir)
	}

	s := &Store{dir: dir}
	s.root = &Group{store: s, name: "/", node: idx.Root}
	return s, nil
}

// Root returns the top-level group
func (s *Store) Root() *Group {
	return s.root
}

// Group is a named node of the store tree holding child groups and datasets
type Group struct {
	store *Store
	name  string
	node  *groupNode
}

// HasGroup reports whether a child group exists
func (g *Group) HasGroup(name string) bool {
	_, ok := g.node.Groups[name]
	return ok
}

// Group opens a child group
func (g *Group) Group(name string) (*Group, error) {
	node, ok := g.node.Groups[name]
	if !ok {
		return nil, fmt.Errorf("expected a group '%s' in '%s'", name, g.name)
	}
	return &Group{store: g.store, name: g.name + name + "/", node: node}, nil
}

// HasDataset reports whether a child dataset exists
func (g *Group) HasDataset(name string) bool {
	_, ok := g.node.Datasets[name]
	return ok
}

// Dataset opens a child dataset, checking that its declared type is known
func (g *Group) Dataset(name string) (*Dataset, error) {
	node, ok := g.node.Datasets[name]
	if !ok {
		return nil, fmt.Errorf("expected a dataset '%s' in '%s'", name, g.name)
	}
	if !knownType(node.DType) {
		return nil, fmt.Errorf("dataset '%s%s' has unknown type '%s'", g.name, name, node.DType)
	}
	return &Dataset{store: g.store, name: g.name + name, node: node}, nil
}

// DatasetNames returns the names of the group's datasets
func (g *Group) DatasetNames() []string {
	names := make([]string, 0, len(g.node.Datasets))
	for name := range g.node.Datasets {
		names = append(names, name)
	}
	return names
}

// GroupNames returns the names of the group's child groups
func (g *Group) GroupNames() []string {
	names := make([]string, 0, len(g.node.Groups))
	for name := range g.node.Groups {
		names = append(names, name)
	}
	return names
}

// Dataset is a typed N-dimensional payload of the store
type Dataset struct {
	store *Store
	name  string
	node  *datasetNode
}

// Name returns the slash-separated path of the dataset inside the store
func (d *Dataset) Name() string {
	return d.name
}

// Type returns the declared element type
func (d *Dataset) Type() Type {
	return d.node.DType
}

// Shape returns the stored extents, first dimension slowest-varying
func (d *Dataset) Shape() []uint64 {
	out := make([]uint64, len(d.node.Shape))
	copy(out, d.node.Shape)
	return out
}

// Length returns the total element count (product of the shape; a
// scalar dataset has an empty shape and length 1)
func (d *Dataset) Length() uint64 {
	n := uint64(1)
	for _, e := range d.node.Shape {
		n *= e
	}
	return n
}

// Attribute looks up a scalar attribute by name
func (d *Dataset) Attribute(name string) (interface{}, bool) {
	v, ok := d.node.Attributes[name]
	return v, ok
}

// StringAttribute looks up a scalar attribute that must be a string
func (d *Dataset) StringAttribute(name string) (string, bool, error) {
	v, ok := d.node.Attributes[name]
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, fmt.Errorf("attribute '%s' on '%s' should be a string", name, d.name)
	}
	return s, true, nil
}

// BoolAttribute looks up a scalar attribute that must be a boolean
func (d *Dataset) BoolAttribute(name string) (bool, bool, error) {
	v, ok := d.node.Attributes[name]
	if !ok {
		return false, false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, false, fmt.Errorf("attribute '%s' on '%s' should be a boolean", name, d.name)
	}
	return b, true, nil
}

// MissingPlaceholder returns the sentinel value treated as missing for
// this dataset, if one was declared at write time.
func (d *Dataset) MissingPlaceholder() (interface{}, bool) {
	return d.Attribute("missing_placeholder")
}

func (d *Dataset) payloadPath() string {
	return filepath.Join(d.store.dir, filepath.FromSlash(d.node.File))
}
