package validator

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfdata/shelfcheck/container"
	verrors "github.com/shelfdata/shelfcheck/validator/errors"
)

func TestSparseMatrix(t *testing.T) {
	t.Run("valid CSC", func(t *testing.T) {
		dir := t.TempDir()
		sparseMatrixFixture(t, dir, "CSC", 3, 3,
			[]float64{1, 2, 3, 4},
			[]int64{0, 2, 1, 2},
			[]int64{0, 2, 2, 4})
		assert.NoError(t, Validate(dir, nil))

		dims, err := Dimensions(dir, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, []uint64{3, 3}, dims)

		h, err := Height(dir, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), h)
	})

	t.Run("valid CSR", func(t *testing.T) {
		dir := t.TempDir()
		sparseMatrixFixture(t, dir, "CSR", 2, 5,
			[]float64{1, 2, 3},
			[]int64{1, 4, 0},
			[]int64{0, 2, 3})
		assert.NoError(t, Validate(dir, nil))
	})

	t.Run("empty matrix", func(t *testing.T) {
		dir := t.TempDir()
		sparseMatrixFixture(t, dir, "CSC", 3, 2,
			nil, nil, []int64{0, 0, 0})
		assert.NoError(t, Validate(dir, nil))
	})

	t.Run("indices unsorted within a group", func(t *testing.T) {
		dir := t.TempDir()
		sparseMatrixFixture(t, dir, "CSC", 3, 3,
			[]float64{1, 2, 3, 4},
			[]int64{0, 2, 2, 1},
			[]int64{0, 2, 2, 4})
		assert.Equal(t, verrors.UnsortedCoordinate, verrors.KindOf(Validate(dir, nil)))
	})

	t.Run("decreasing indptr", func(t *testing.T) {
		dir := t.TempDir()
		sparseMatrixFixture(t, dir, "CSC", 3, 3,
			[]float64{1, 2, 3, 4},
			[]int64{0, 2, 1, 2},
			[]int64{0, 2, 1, 4})
		assert.Equal(t, verrors.UnsortedCoordinate, verrors.KindOf(Validate(dir, nil)))
	})

	t.Run("indptr not starting at zero", func(t *testing.T) {
		dir := t.TempDir()
		sparseMatrixFixture(t, dir, "CSC", 3, 1,
			[]float64{1},
			[]int64{0},
			[]int64{1, 1})
		assert.Equal(t, verrors.UnsortedCoordinate, verrors.KindOf(Validate(dir, nil)))
	})

	t.Run("indptr not ending at nnz", func(t *testing.T) {
		dir := t.TempDir()
		sparseMatrixFixture(t, dir, "CSC", 3, 2,
			[]float64{1, 2},
			[]int64{0, 1},
			[]int64{0, 2, 3})
		assert.Equal(t, verrors.CountMismatch, verrors.KindOf(Validate(dir, nil)))
	})

	t.Run("index exceeds secondary extent", func(t *testing.T) {
		dir := t.TempDir()
		sparseMatrixFixture(t, dir, "CSC", 2, 2,
			[]float64{1},
			[]int64{2},
			[]int64{0, 1, 1})
		assert.Equal(t, verrors.OutOfRangeIndex, verrors.KindOf(Validate(dir, nil)))
	})

	t.Run("indptr length mismatch", func(t *testing.T) {
		dir := t.TempDir()
		sparseMatrixFixture(t, dir, "CSC", 3, 3,
			[]float64{1},
			[]int64{0},
			[]int64{0, 1})
		assert.Equal(t, verrors.CountMismatch, verrors.KindOf(Validate(dir, nil)))
	})

	t.Run("non-integer indices", func(t *testing.T) {
		dir := t.TempDir()
		writeObjectDoc(t, dir, "compressed_sparse_matrix", map[string]map[string]interface{}{
			"compressed_sparse_matrix": ns1(map[string]interface{}{"type": "number", "layout": "CSC"}),
		})
		w, err := container.Create(filepath.Join(dir, "matrix.sf"))
		require.NoError(t, err)
		_, err = w.Root().WriteInts("shape", container.Int64, []uint64{2}, []int64{2, 1})
		require.NoError(t, err)
		_, err = w.Root().WriteFloats("data", container.Float64, []uint64{1}, []float64{1})
		require.NoError(t, err)
		_, err = w.Root().WriteFloats("indices", container.Float64, []uint64{1}, []float64{0})
		require.NoError(t, err)
		_, err = w.Root().WriteInts("indptr", container.Int64, []uint64{2}, []int64{0, 1})
		require.NoError(t, err)
		require.NoError(t, w.Close())

		err = Validate(dir, nil)
		assert.Equal(t, verrors.MalformedMetadata, verrors.KindOf(err))
		assert.Contains(t, err.Error(), "'indices' should be stored as integers")
	})

	t.Run("unknown layout", func(t *testing.T) {
		dir := t.TempDir()
		sparseMatrixFixture(t, dir, "COO", 2, 2, nil, nil, []int64{0, 0, 0})
		assert.Equal(t, verrors.MalformedMetadata, verrors.KindOf(Validate(dir, nil)))
	})
}
