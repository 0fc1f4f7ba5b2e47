package validator

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	verrors "github.com/shelfdata/shelfcheck/validator/errors"
)

func TestSingleCellExperiment(t *testing.T) {
	t.Run("valid with reduced dimensions and alternative experiments", func(t *testing.T) {
		dir := t.TempDir()
		experimentFixture(t, dir, "single_cell_experiment", 10, 5)
		writeManifest(t, filepath.Join(dir, "assays"), []string{"counts"})
		denseArrayFixture(t, filepath.Join(dir, "assays", "0"), []uint64{10, 5})

		writeManifest(t, filepath.Join(dir, "reduced_dimensions"), []string{"pca"})
		denseArrayFixture(t, filepath.Join(dir, "reduced_dimensions", "0"), []uint64{5, 2})

		writeManifest(t, filepath.Join(dir, "alternative_experiments"), []string{"spikes"})
		experimentFixture(t, filepath.Join(dir, "alternative_experiments", "0"), "summarized_experiment", 7, 5)

		assert.NoError(t, Validate(dir, nil))
	})

	t.Run("reduced dimensions first extent mismatch", func(t *testing.T) {
		dir := t.TempDir()
		experimentFixture(t, dir, "single_cell_experiment", 10, 5)
		writeManifest(t, filepath.Join(dir, "reduced_dimensions"), []string{"pca"})
		denseArrayFixture(t, filepath.Join(dir, "reduced_dimensions", "0"), []uint64{4, 2})
		assert.Equal(t, verrors.DimensionMismatch, verrors.KindOf(Validate(dir, nil)))
	})

	t.Run("alternative experiment column mismatch", func(t *testing.T) {
		dir := t.TempDir()
		experimentFixture(t, dir, "single_cell_experiment", 10, 5)
		writeManifest(t, filepath.Join(dir, "alternative_experiments"), []string{"spikes"})
		experimentFixture(t, filepath.Join(dir, "alternative_experiments", "0"), "summarized_experiment", 7, 4)
		assert.Equal(t, verrors.DimensionMismatch, verrors.KindOf(Validate(dir, nil)))
	})

	t.Run("alternative experiment must be an experiment", func(t *testing.T) {
		dir := t.TempDir()
		experimentFixture(t, dir, "single_cell_experiment", 10, 5)
		writeManifest(t, filepath.Join(dir, "alternative_experiments"), []string{"oops"})
		intVectorFixture(t, filepath.Join(dir, "alternative_experiments", "0"), []int64{1})
		assert.Equal(t, verrors.TypeContractViolation, verrors.KindOf(Validate(dir, nil)))
	})

	t.Run("main experiment name collision", func(t *testing.T) {
		dir := t.TempDir()
		writeObjectDoc(t, dir, "single_cell_experiment", map[string]map[string]interface{}{
			"summarized_experiment": ns1(map[string]interface{}{
				"dimensions": []interface{}{float64(10), float64(5)},
			}),
			"single_cell_experiment": ns1(map[string]interface{}{
				"main_experiment_name": "spikes",
			}),
		})
		writeManifest(t, filepath.Join(dir, "alternative_experiments"), []string{"spikes"})
		experimentFixture(t, filepath.Join(dir, "alternative_experiments", "0"), "summarized_experiment", 7, 5)
		assert.Equal(t, verrors.DuplicateKey, verrors.KindOf(Validate(dir, nil)))
	})

	t.Run("derived flavor counts as an alternative experiment", func(t *testing.T) {
		dir := t.TempDir()
		experimentFixture(t, dir, "single_cell_experiment", 10, 5)
		writeManifest(t, filepath.Join(dir, "alternative_experiments"), []string{"nested"})
		experimentFixture(t, filepath.Join(dir, "alternative_experiments", "0"), "single_cell_experiment", 3, 5)
		assert.NoError(t, Validate(dir, nil))
	})
}
