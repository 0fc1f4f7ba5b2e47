package validator

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfdata/shelfcheck/container"
	verrors "github.com/shelfdata/shelfcheck/validator/errors"
)

// multiSampleFixture writes a dataset with the given number of samples
// and one experiment whose columns map to samples via sampleMap.
func multiSampleFixture(t *testing.T, dir string, numSamples int, expCols uint64, sampleMap []int64) {
	t.Helper()
	writeObjectDoc(t, dir, "multi_sample_dataset", map[string]map[string]interface{}{
		"multi_sample_dataset": ns1(nil),
	})

	names := make([]string, numSamples)
	for i := range names {
		names[i] = "sample-" + string(rune('a'+i))
	}
	dataFrameFixture(t, filepath.Join(dir, "sample_data"), uint64(numSamples), []dfColumn{
		{name: "id", strs: names},
	})

	writeManifest(t, filepath.Join(dir, "experiments"), []string{"rna"})
	expDir := filepath.Join(dir, "experiments", "0")
	experimentFixture(t, expDir, "summarized_experiment", 5, expCols)

	w, err := container.Create(filepath.Join(expDir, "sample_map.sf"))
	require.NoError(t, err)
	_, err = w.Root().WriteInts("indices", container.Int32, []uint64{uint64(len(sampleMap))}, sampleMap)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestMultiSampleDataset(t *testing.T) {
	t.Run("valid dataset", func(t *testing.T) {
		dir := t.TempDir()
		multiSampleFixture(t, dir, 3, 4, []int64{0, 1, 2, 0})
		assert.NoError(t, Validate(dir, nil))

		h, err := Height(dir, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), h)
	})

	t.Run("sample map references an unknown sample", func(t *testing.T) {
		dir := t.TempDir()
		multiSampleFixture(t, dir, 2, 2, []int64{0, 5})
		assert.Equal(t, verrors.OutOfRangeIndex, verrors.KindOf(Validate(dir, nil)))
	})

	t.Run("sample map length mismatch", func(t *testing.T) {
		dir := t.TempDir()
		multiSampleFixture(t, dir, 2, 3, []int64{0, 1})
		assert.Equal(t, verrors.CountMismatch, verrors.KindOf(Validate(dir, nil)))
	})

	t.Run("sample data must be a data frame", func(t *testing.T) {
		dir := t.TempDir()
		writeObjectDoc(t, dir, "multi_sample_dataset", map[string]map[string]interface{}{
			"multi_sample_dataset": ns1(nil),
		})
		intVectorFixture(t, filepath.Join(dir, "sample_data"), []int64{1, 2})
		assert.Equal(t, verrors.TypeContractViolation, verrors.KindOf(Validate(dir, nil)))
	})
}
