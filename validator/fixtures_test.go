package validator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shelfdata/shelfcheck/container"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

// writeObjectDoc writes an OBJECT side-car with the given type and
// namespace blocks, creating the directory if needed.
func writeObjectDoc(t *testing.T, dir, typeName string, namespaces map[string]map[string]interface{}) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	doc := map[string]interface{}{"type": typeName}
	for name, ns := range namespaces {
		doc[name] = ns
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, metadata.ObjectFile), raw, 0o644))
}

// ns1 builds a version-1.0 namespace block with extra properties
func ns1(extra map[string]interface{}) map[string]interface{} {
	ns := map[string]interface{}{"version": "1.0"}
	for k, v := range extra {
		ns[k] = v
	}
	return ns
}

func writeManifest(t *testing.T, dir string, names []string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	raw, err := json.Marshal(map[string]interface{}{"names": names})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_manifest.json"), raw, 0o644))
}

func intVectorFixture(t *testing.T, dir string, values []int64) {
	t.Helper()
	writeObjectDoc(t, dir, "atomic_vector", map[string]map[string]interface{}{
		"atomic_vector": ns1(map[string]interface{}{"type": "integer"}),
	})
	w, err := container.Create(filepath.Join(dir, "vector.sf"))
	require.NoError(t, err)
	_, err = w.Root().WriteInts("values", container.Int32, []uint64{uint64(len(values))}, values)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func stringVectorFixture(t *testing.T, dir string, values []string, format string) {
	t.Helper()
	extra := map[string]interface{}{"type": "string"}
	if format != "" {
		extra["format"] = format
	}
	writeObjectDoc(t, dir, "atomic_vector", map[string]map[string]interface{}{
		"atomic_vector": ns1(extra),
	})
	w, err := container.Create(filepath.Join(dir, "vector.sf"))
	require.NoError(t, err)
	_, err = w.Root().WriteStrings("values", []uint64{uint64(len(values))}, values)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func factorFixture(t *testing.T, dir string, codes []int64, levels []string) {
	t.Helper()
	writeObjectDoc(t, dir, "string_factor", map[string]map[string]interface{}{
		"string_factor": ns1(map[string]interface{}{"ordered": false}),
	})
	w, err := container.Create(filepath.Join(dir, "factor.sf"))
	require.NoError(t, err)
	_, err = w.Root().WriteStrings("levels", []uint64{uint64(len(levels))}, levels)
	require.NoError(t, err)
	_, err = w.Root().WriteInts("codes", container.Int32, []uint64{uint64(len(codes))}, codes)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func denseArrayFixture(t *testing.T, dir string, dims []uint64) {
	t.Helper()
	writeObjectDoc(t, dir, "dense_array", map[string]map[string]interface{}{
		"dense_array": ns1(map[string]interface{}{"type": "number"}),
	})
	n := uint64(1)
	for _, d := range dims {
		n *= d
	}
	w, err := container.Create(filepath.Join(dir, "array.sf"))
	require.NoError(t, err)
	_, err = w.Root().WriteFloats("data", container.Float64, dims, make([]float64, n))
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

// dfColumn describes one column of a data frame fixture. Exactly one
// of the payload fields should be set; external builds a nested object
// under other_columns.
type dfColumn struct {
	name     string
	ints     []int64
	strs     []string
	format   string
	codes    []int64
	levels   []string
	external func(t *testing.T, dir string)
}

func dataFrameFixture(t *testing.T, dir string, rows uint64, cols []dfColumn) {
	t.Helper()
	writeObjectDoc(t, dir, "data_frame", map[string]map[string]interface{}{
		"data_frame": ns1(map[string]interface{}{
			"dimensions": []interface{}{float64(rows), float64(len(cols))},
		}),
	})

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}

	w, err := container.Create(filepath.Join(dir, "frame.sf"))
	require.NoError(t, err)
	_, err = w.Root().WriteStrings("column_names", []uint64{uint64(len(cols))}, names)
	require.NoError(t, err)

	columns := w.Root().Group("columns")
	for i, c := range cols {
		key := strconv.Itoa(i)
		switch {
		case c.ints != nil:
			ds, err := columns.WriteInts(key, container.Int32, []uint64{uint64(len(c.ints))}, c.ints)
			require.NoError(t, err)
			ds.SetAttribute("type", "integer")
		case c.strs != nil:
			ds, err := columns.WriteStrings(key, []uint64{uint64(len(c.strs))}, c.strs)
			require.NoError(t, err)
			ds.SetAttribute("type", "string")
			if c.format != "" {
				ds.SetAttribute("format", c.format)
			}
		case c.levels != nil:
			g := columns.Group(key)
			_, err := g.WriteStrings("levels", []uint64{uint64(len(c.levels))}, c.levels)
			require.NoError(t, err)
			ds, err := g.WriteInts("codes", container.Int32, []uint64{uint64(len(c.codes))}, c.codes)
			require.NoError(t, err)
			ds.SetAttribute("ordered", false)
		case c.external != nil:
			c.external(t, filepath.Join(dir, "other_columns", key))
		default:
			t.Fatalf("column %d has no payload", i)
		}
	}
	require.NoError(t, w.Close())
}

func simpleListFixture(t *testing.T, dir string, length int64) {
	t.Helper()
	writeObjectDoc(t, dir, "simple_list", map[string]map[string]interface{}{
		"simple_list": ns1(nil),
	})
	w, err := container.Create(filepath.Join(dir, "list.sf"))
	require.NoError(t, err)
	_, err = w.Root().WriteInts("length", container.Int32, nil, []int64{length})
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func sparseMatrixFixture(t *testing.T, dir, layout string, rows, cols int64, data []float64, indices, indptr []int64) {
	t.Helper()
	writeObjectDoc(t, dir, "compressed_sparse_matrix", map[string]map[string]interface{}{
		"compressed_sparse_matrix": ns1(map[string]interface{}{"type": "number", "layout": layout}),
	})
	w, err := container.Create(filepath.Join(dir, "matrix.sf"))
	require.NoError(t, err)
	_, err = w.Root().WriteInts("shape", container.Int64, []uint64{2}, []int64{rows, cols})
	require.NoError(t, err)
	_, err = w.Root().WriteFloats("data", container.Float64, []uint64{uint64(len(data))}, data)
	require.NoError(t, err)
	_, err = w.Root().WriteInts("indices", container.Int32, []uint64{uint64(len(indices))}, indices)
	require.NoError(t, err)
	_, err = w.Root().WriteInts("indptr", container.Int64, []uint64{uint64(len(indptr))}, indptr)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

// experimentFixture writes the OBJECT side-car of an experiment flavor
// with the required namespace blocks; children are added by the caller.
func experimentFixture(t *testing.T, dir, typeName string, rows, cols uint64) {
	t.Helper()
	namespaces := map[string]map[string]interface{}{
		"summarized_experiment": ns1(map[string]interface{}{
			"dimensions": []interface{}{float64(rows), float64(cols)},
		}),
	}
	switch typeName {
	case "ranged_summarized_experiment":
		namespaces["ranged_summarized_experiment"] = ns1(nil)
	case "single_cell_experiment":
		namespaces["single_cell_experiment"] = ns1(nil)
	case "spatial_experiment":
		namespaces["single_cell_experiment"] = ns1(nil)
		namespaces["spatial_experiment"] = ns1(nil)
	}
	writeObjectDoc(t, dir, typeName, namespaces)
}
