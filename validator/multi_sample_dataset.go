package validator

import (
	"path/filepath"

	verrors "github.com/shelfdata/shelfcheck/validator/errors"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

func init() {
	registerDefault("multi_sample_dataset", validateMultiSampleDataset, heightMultiSampleDataset, nil)
}

func validateMultiSampleDataset(path string, meta *metadata.Object, opts *Options) error {
	if _, err := formatNamespace(meta, "multi_sample_dataset"); err != nil {
		return err
	}

	samplePath, sampleMeta, err := childObject(path, "sample_data")
	if err != nil {
		return err
	}
	if err := validateSatisfying(samplePath, sampleMeta, "DATA_FRAME", "sample_data", opts); err != nil {
		return err
	}
	numSamples, err := Height(samplePath, sampleMeta, opts)
	if err != nil {
		return verrors.Wrap(err, "", "sample_data")
	}

	experimentsDir := filepath.Join(path, "experiments")
	if !metadata.IsDirectory(experimentsDir) {
		return nil
	}
	_, err = validateCollection(experimentsDir, "experiments", opts,
		func(p string, expMeta *metadata.Object, name string, i int) error {
			if !SatisfiesInterface(expMeta.Type, "SUMMARIZED_EXPERIMENT", opts) {
				return verrors.New(verrors.TypeContractViolation,
					"experiment '%s' of type '%s' does not satisfy the 'SUMMARIZED_EXPERIMENT' interface",
					name, expMeta.Type)
			}
			if err := ValidateObject(p, expMeta, opts); err != nil {
				return err
			}
			dims, err := Dimensions(p, expMeta, opts)
			if err != nil {
				return err
			}
			return checkSampleMap(p, name, dims[1], numSamples, opts)
		})
	return err
}

// checkSampleMap validates an experiment's column-to-sample
// assignment: one index per experiment column, every index below the
// dataset's sample count.
func checkSampleMap(expPath, name string, numCols, numSamples uint64, opts *Options) error {
	store, err := openStore(expPath, "sample_map.sf", opts)
	if err != nil {
		return verrors.Wrap(err, "", "sample_map")
	}
	indices, err := store.Root().Dataset("indices")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	if !indices.Type().IsInteger() {
		return verrors.New(verrors.MalformedMetadata, "'indices' should be stored as integers")
	}
	if indices.Length() != numCols {
		return verrors.New(verrors.CountMismatch,
			"sample map of experiment '%s' has length %d but the experiment has %d columns",
			name, indices.Length(), numCols)
	}
	return indices.StreamInts(opts.blockSize(), func(block []int64) error {
		for _, v := range block {
			if v < 0 || uint64(v) >= numSamples {
				return verrors.New(verrors.OutOfRangeIndex,
					"sample map of experiment '%s' references sample %d of %d", name, v, numSamples)
			}
		}
		return nil
	})
}

// heightMultiSampleDataset reports the number of samples
func heightMultiSampleDataset(path string, meta *metadata.Object, opts *Options) (uint64, error) {
	samplePath, sampleMeta, err := childObject(path, "sample_data")
	if err != nil {
		return 0, err
	}
	return Height(samplePath, sampleMeta, opts)
}
