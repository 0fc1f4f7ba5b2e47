package validator

import (
	"path/filepath"

	verrors "github.com/shelfdata/shelfcheck/validator/errors"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

func init() {
	registerDefault("ranged_summarized_experiment", validateRangedExperiment,
		heightSummarizedExperiment, dimensionsSummarizedExperiment)
}

func validateRangedExperiment(path string, meta *metadata.Object, opts *Options) error {
	dims, err := experimentShape(meta)
	if err != nil {
		return err
	}
	if _, err := formatNamespace(meta, "ranged_summarized_experiment"); err != nil {
		return err
	}
	if err := checkExperimentBase(path, dims[0], dims[1], opts); err != nil {
		return err
	}
	return checkRowRanges(path, dims[0], opts)
}

// checkRowRanges validates the optional per-row range annotation; it
// may be a single range set or a list of range sets, either way of
// height equal to the row count.
func checkRowRanges(path string, numRows uint64, opts *Options) error {
	p := filepath.Join(path, "row_ranges")
	if !metadata.IsDirectory(p) {
		return nil
	}
	rangesMeta, err := metadata.Read(p)
	if err != nil {
		return verrors.Wrap(err, "", "row_ranges")
	}
	if err := validateSatisfying(p, rangesMeta, "RANGES", "row_ranges", opts); err != nil {
		return err
	}
	h, err := Height(p, rangesMeta, opts)
	if err != nil {
		return verrors.Wrap(err, "", "row_ranges")
	}
	if h != numRows {
		return verrors.New(verrors.DimensionMismatch,
			"'row_ranges' has height %d but the experiment declares %d rows", h, numRows)
	}
	return nil
}
