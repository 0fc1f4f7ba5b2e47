package validator

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfdata/shelfcheck/container"
	verrors "github.com/shelfdata/shelfcheck/validator/errors"
)

// bumpyFixture writes a ragged array over an integer vector payload;
// nil indices selects the dense layout.
func bumpyFixture(t *testing.T, dir string, values []int64, lengths []int64, dims []int64, indices [][]int64) {
	t.Helper()
	writeObjectDoc(t, dir, "bumpy_atomic_array", map[string]map[string]interface{}{
		"bumpy_atomic_array": ns1(nil),
	})
	intVectorFixture(t, filepath.Join(dir, "concatenated"), values)

	w, err := container.Create(filepath.Join(dir, "partitions.sf"))
	require.NoError(t, err)
	_, err = w.Root().WriteInts("lengths", container.Int32, []uint64{uint64(len(lengths))}, lengths)
	require.NoError(t, err)
	_, err = w.Root().WriteInts("dimensions", container.Int32, []uint64{uint64(len(dims))}, dims)
	require.NoError(t, err)
	if indices != nil {
		g := w.Root().Group("indices")
		for d, idx := range indices {
			_, err = g.WriteInts(strconv.Itoa(d), container.Int32, []uint64{uint64(len(idx))}, idx)
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())
}

func TestBumpyArrayDense(t *testing.T) {
	t.Run("partitions fill the extents", func(t *testing.T) {
		dir := t.TempDir()
		bumpyFixture(t, dir,
			[]int64{1, 2, 3, 4, 5, 6, 7},
			[]int64{1, 0, 2, 1, 3, 0},
			[]int64{2, 3}, nil)
		assert.NoError(t, Validate(dir, nil))

		dims, err := Dimensions(dir, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, []uint64{2, 3}, dims)
	})

	t.Run("partition count does not fill the extents", func(t *testing.T) {
		dir := t.TempDir()
		bumpyFixture(t, dir,
			[]int64{1, 2, 3},
			[]int64{1, 1, 1},
			[]int64{2, 3}, nil)
		assert.Equal(t, verrors.CountMismatch, verrors.KindOf(Validate(dir, nil)))
	})

	t.Run("lengths do not sum to the payload height", func(t *testing.T) {
		dir := t.TempDir()
		bumpyFixture(t, dir,
			[]int64{1, 2, 3, 4},
			[]int64{1, 1, 1, 1, 1, 1},
			[]int64{2, 3}, nil)
		assert.Equal(t, verrors.CountMismatch, verrors.KindOf(Validate(dir, nil)))
	})

	t.Run("negative length", func(t *testing.T) {
		dir := t.TempDir()
		bumpyFixture(t, dir,
			[]int64{1, 2},
			[]int64{3, -1, 0, 0, 0, 0},
			[]int64{2, 3}, nil)
		assert.Equal(t, verrors.OutOfRangeIndex, verrors.KindOf(Validate(dir, nil)))
	})
}

func TestBumpyArraySparse(t *testing.T) {
	t.Run("sorted coordinates", func(t *testing.T) {
		dir := t.TempDir()
		// tuples (0,0), (1,1), (0,2): strictly increasing with the last
		// dimension most significant
		bumpyFixture(t, dir,
			[]int64{1, 2, 3, 4, 5, 6},
			[]int64{2, 2, 2},
			[]int64{2, 3},
			[][]int64{{0, 1, 0}, {0, 1, 2}})
		assert.NoError(t, Validate(dir, nil))
	})

	t.Run("unsorted coordinates", func(t *testing.T) {
		dir := t.TempDir()
		// (0,2) before (1,1) violates the ordering
		bumpyFixture(t, dir,
			[]int64{1, 2, 3, 4},
			[]int64{2, 2},
			[]int64{2, 3},
			[][]int64{{0, 1}, {2, 1}})
		assert.Equal(t, verrors.UnsortedCoordinate, verrors.KindOf(Validate(dir, nil)))
	})

	t.Run("duplicate coordinates", func(t *testing.T) {
		dir := t.TempDir()
		bumpyFixture(t, dir,
			[]int64{1, 2, 3, 4},
			[]int64{2, 2},
			[]int64{2, 3},
			[][]int64{{1, 1}, {0, 0}})
		assert.Equal(t, verrors.UnsortedCoordinate, verrors.KindOf(Validate(dir, nil)))
	})

	t.Run("coordinate out of range", func(t *testing.T) {
		dir := t.TempDir()
		bumpyFixture(t, dir,
			[]int64{1, 2},
			[]int64{2},
			[]int64{2, 3},
			[][]int64{{2}, {0}})
		assert.Equal(t, verrors.OutOfRangeIndex, verrors.KindOf(Validate(dir, nil)))
	})

	t.Run("index array length mismatch", func(t *testing.T) {
		dir := t.TempDir()
		bumpyFixture(t, dir,
			[]int64{1, 2, 3, 4},
			[]int64{2, 2},
			[]int64{2, 3},
			[][]int64{{0, 1}, {0}})
		assert.Equal(t, verrors.CountMismatch, verrors.KindOf(Validate(dir, nil)))
	})
}

func TestBumpyArrayContract(t *testing.T) {
	dir := t.TempDir()
	writeObjectDoc(t, dir, "bumpy_atomic_array", map[string]map[string]interface{}{
		"bumpy_atomic_array": ns1(nil),
	})
	dataFrameFixture(t, filepath.Join(dir, "concatenated"), 1, []dfColumn{
		{name: "x", ints: []int64{1}},
	})

	w, err := container.Create(filepath.Join(dir, "partitions.sf"))
	require.NoError(t, err)
	_, err = w.Root().WriteInts("lengths", container.Int32, []uint64{1}, []int64{1})
	require.NoError(t, err)
	_, err = w.Root().WriteInts("dimensions", container.Int32, []uint64{1}, []int64{1})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, verrors.TypeContractViolation, verrors.KindOf(Validate(dir, nil)))
}
