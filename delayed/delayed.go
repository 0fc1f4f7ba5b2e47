// Package delayed checks the grammar of stored delayed-operation
// graphs. A graph is a tree of container groups, each tagged as an
// operation or an array leaf; the checker walks the tree, verifies
// each node's structure and computes the dimensions it would produce.
// Array leaf kinds are open for extension through a handler table, the
// hook used by callers whose leaves reference data stored elsewhere.
package delayed

import (
	"fmt"

	"github.com/shelfdata/shelfcheck/container"
)

// ArrayHandler validates one array leaf node and returns the
// dimensions it produces.
type ArrayHandler func(node *container.Group) ([]uint64, error)

// Checker validates delayed-operation graphs. It is not safe for
// concurrent use; handler installation is expected to be scoped by the
// caller around a single Validate.
type Checker struct {
	arrays map[string]ArrayHandler
}

// NewChecker creates a checker knowing the built-in node kinds
func NewChecker() *Checker {
	return &Checker{arrays: make(map[string]ArrayHandler)}
}

// HasArrayHandler reports whether a handler is installed for an array kind
func (c *Checker) HasArrayHandler(kind string) bool {
	_, ok := c.arrays[kind]
	return ok
}

// SetArrayHandler installs a handler for an array kind
func (c *Checker) SetArrayHandler(kind string, h ArrayHandler) {
	c.arrays[kind] = h
}

// RemoveArrayHandler uninstalls the handler for an array kind
func (c *Checker) RemoveArrayHandler(kind string) {
	delete(c.arrays, kind)
}

// Validate checks the graph rooted at node and returns its dimensions
func (c *Checker) Validate(node *container.Group) ([]uint64, error) {
	return c.validateNode(node, 0)
}

const maxGraphDepth = 256

func (c *Checker) validateNode(node *container.Group, depth int) ([]uint64, error) {
	if depth > maxGraphDepth {
		return nil, fmt.Errorf("delayed graph exceeds the maximum depth of %d", maxGraphDepth)
	}

	kind, ok, err := groupAttribute(node, "node_type")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("expected a 'node_type' attribute")
	}

	switch kind {
	case "operation":
		return c.validateOperation(node, depth)
	case "array":
		return c.validateArray(node)
	default:
		return nil, fmt.Errorf("unknown node type '%s'", kind)
	}
}

// groupAttribute reads a string attribute off the group's _attrs
// pseudo-dataset; groups carry their tags as attributes of a
// zero-length marker dataset.
func groupAttribute(node *container.Group, name string) (string, bool, error) {
	if !node.HasDataset("_attrs") {
		return "", false, fmt.Errorf("expected an '_attrs' marker dataset")
	}
	marker, err := node.Dataset("_attrs")
	if err != nil {
		return "", false, err
	}
	return marker.StringAttribute(name)
}

func groupIntAttribute(node *container.Group, name string) (int64, bool, error) {
	marker, err := node.Dataset("_attrs")
	if err != nil {
		return 0, false, err
	}
	v, ok := marker.Attribute(name)
	if !ok {
		return 0, false, nil
	}
	f, isNum := v.(float64)
	if !isNum || f != float64(int64(f)) {
		return 0, false, fmt.Errorf("attribute '%s' should be an integer", name)
	}
	return int64(f), true, nil
}

func (c *Checker) validateArray(node *container.Group) ([]uint64, error) {
	kind, ok, err := groupAttribute(node, "array_type")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("expected an 'array_type' attribute")
	}

	if handler, installed := c.arrays[kind]; installed {
		return handler(node)
	}

	switch kind {
	case "constant":
		return DeclaredDimensions(node)
	case "dense":
		data, err := node.Dataset("data")
		if err != nil {
			return nil, fmt.Errorf("dense array: %w", err)
		}
		dims := data.Shape()
		if len(dims) == 0 {
			return nil, fmt.Errorf("dense array 'data' should have at least one dimension")
		}
		return dims, nil
	default:
		return nil, fmt.Errorf("unknown array type '%s'", kind)
	}
}

// DeclaredDimensions reads and sanity-checks a node's 'dimensions'
// dataset. Exported for array handlers whose leaves declare their
// extents at the reference site.
func DeclaredDimensions(node *container.Group) ([]uint64, error) {
	ds, err := node.Dataset("dimensions")
	if err != nil {
		return nil, err
	}
	if !ds.Type().IsInteger() {
		return nil, fmt.Errorf("'dimensions' should be of an integer type")
	}
	raw, err := ds.ReadAllInts()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("'dimensions' should not be empty")
	}
	dims := make([]uint64, len(raw))
	for i, v := range raw {
		if v < 0 {
			return nil, fmt.Errorf("'dimensions' contains a negative extent")
		}
		dims[i] = uint64(v)
	}
	return dims, nil
}

func (c *Checker) validateOperation(node *container.Group, depth int) ([]uint64, error) {
	op, ok, err := groupAttribute(node, "operation_type")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("expected an 'operation_type' attribute")
	}

	switch op {
	case "transpose":
		return c.validateTranspose(node, depth)
	case "subset":
		return c.validateSubset(node, depth)
	case "combine":
		return c.validateCombine(node, depth)
	case "unary arithmetic":
		return c.validateUnary(node, depth)
	default:
		return nil, fmt.Errorf("unknown operation type '%s'", op)
	}
}

func (c *Checker) seedOf(node *container.Group, depth int) ([]uint64, error) {
	seed, err := node.Group("seed")
	if err != nil {
		return nil, fmt.Errorf("expected a 'seed' group")
	}
	dims, err := c.validateNode(seed, depth+1)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return dims, nil
}

func (c *Checker) validateTranspose(node *container.Group, depth int) ([]uint64, error) {
	seedDims, err := c.seedOf(node, depth)
	if err != nil {
		return nil, err
	}

	perm, err := node.Dataset("permutation")
	if err != nil {
		return nil, err
	}
	order, err := perm.ReadAllInts()
	if err != nil {
		return nil, err
	}
	if len(order) != len(seedDims) {
		return nil, fmt.Errorf("'permutation' length %d does not match seed rank %d", len(order), len(seedDims))
	}

	out := make([]uint64, len(order))
	seen := make([]bool, len(order))
	for i, p := range order {
		if p < 0 || int(p) >= len(order) || seen[p] {
			return nil, fmt.Errorf("'permutation' is not a permutation of 0..%d", len(order)-1)
		}
		seen[p] = true
		out[i] = seedDims[p]
	}
	return out, nil
}

func (c *Checker) validateSubset(node *container.Group, depth int) ([]uint64, error) {
	seedDims, err := c.seedOf(node, depth)
	if err != nil {
		return nil, err
	}

	index, err := node.Group("index")
	if err != nil {
		return nil, fmt.Errorf("expected an 'index' group")
	}

	out := make([]uint64, len(seedDims))
	copy(out, seedDims)
	for d := range seedDims {
		name := fmt.Sprintf("%d", d)
		if !index.HasDataset(name) {
			continue
		}
		ds, err := index.Dataset(name)
		if err != nil {
			return nil, err
		}
		limit := int64(seedDims[d])
		err = ds.StreamInts(container.DefaultBlockSize, func(block []int64) error {
			for _, v := range block {
				if v < 0 || v >= limit {
					return fmt.Errorf("subset index %d out of range for dimension %d (extent %d)", v, d, limit)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		out[d] = ds.Length()
	}
	return out, nil
}

func (c *Checker) validateCombine(node *container.Group, depth int) ([]uint64, error) {
	along, ok, err := groupIntAttribute(node, "along")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("expected an 'along' attribute")
	}

	seeds, err := node.Group("seeds")
	if err != nil {
		return nil, fmt.Errorf("expected a 'seeds' group")
	}

	var out []uint64
	for i := 0; ; i++ {
		name := fmt.Sprintf("%d", i)
		if !seeds.HasGroup(name) {
			if i == 0 {
				return nil, fmt.Errorf("'seeds' group is empty")
			}
			break
		}
		child, err := seeds.Group(name)
		if err != nil {
			return nil, err
		}
		dims, err := c.validateNode(child, depth+1)
		if err != nil {
			return nil, fmt.Errorf("seeds/%d: %w", i, err)
		}

		if out == nil {
			if along < 0 || int(along) >= len(dims) {
				return nil, fmt.Errorf("'along' dimension %d out of range for rank %d", along, len(dims))
			}
			out = make([]uint64, len(dims))
			copy(out, dims)
			continue
		}
		if len(dims) != len(out) {
			return nil, fmt.Errorf("seeds/%d has rank %d, expected %d", i, len(dims), len(out))
		}
		for d := range dims {
			if d == int(along) {
				out[d] += dims[d]
			} else if dims[d] != out[d] {
				return nil, fmt.Errorf("seeds/%d extent %d differs on non-combined dimension %d", i, dims[d], d)
			}
		}
	}
	return out, nil
}

var unaryMethods = map[string]bool{
	"+": true, "-": true, "abs": true, "log": true, "log2": true,
	"log10": true, "sqrt": true, "round": true, "exp": true,
}

func (c *Checker) validateUnary(node *container.Group, depth int) ([]uint64, error) {
	method, ok, err := groupAttribute(node, "method")
	if err != nil {
		return nil, err
	}
	if !ok || !unaryMethods[method] {
		return nil, fmt.Errorf("unknown unary arithmetic method '%s'", method)
	}
	return c.seedOf(node, depth)
}
