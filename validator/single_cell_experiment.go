package validator

import (
	"path/filepath"

	verrors "github.com/shelfdata/shelfcheck/validator/errors"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

func init() {
	registerDefault("single_cell_experiment", validateSingleCellExperiment,
		heightSummarizedExperiment, dimensionsSummarizedExperiment)
}

func validateSingleCellExperiment(path string, meta *metadata.Object, opts *Options) error {
	dims, err := experimentShape(meta)
	if err != nil {
		return err
	}
	ns, err := formatNamespace(meta, "single_cell_experiment")
	if err != nil {
		return err
	}
	if err := checkExperimentBase(path, dims[0], dims[1], opts); err != nil {
		return err
	}
	if err := checkRowRanges(path, dims[0], opts); err != nil {
		return err
	}
	return checkSingleCellExtras(path, ns, dims[1], opts)
}

// checkSingleCellExtras validates the reduced-dimension and
// alternative-experiment collections against the column count.
func checkSingleCellExtras(path string, ns metadata.Namespace, numCols uint64, opts *Options) error {
	reducedDir := filepath.Join(path, "reduced_dimensions")
	if metadata.IsDirectory(reducedDir) {
		_, err := validateCollection(reducedDir, "reduced_dimensions", opts,
			func(p string, memberMeta *metadata.Object, name string, i int) error {
				if err := ValidateObject(p, memberMeta, opts); err != nil {
					return err
				}
				dims, err := Dimensions(p, memberMeta, opts)
				if err != nil {
					return err
				}
				if len(dims) < 1 || dims[0] != numCols {
					return verrors.New(verrors.DimensionMismatch,
						"reduced dimensions '%s' should have a first extent of %d", name, numCols)
				}
				return nil
			})
		if err != nil {
			return err
		}
	}

	mainName, hasMain, err := ns.OptionalString("main_experiment_name")
	if err != nil {
		return err
	}

	altDir := filepath.Join(path, "alternative_experiments")
	if !metadata.IsDirectory(altDir) {
		return nil
	}
	altNames, err := validateCollection(altDir, "alternative_experiments", opts,
		func(p string, memberMeta *metadata.Object, name string, i int) error {
			if !SatisfiesInterface(memberMeta.Type, "SUMMARIZED_EXPERIMENT", opts) {
				return verrors.New(verrors.TypeContractViolation,
					"alternative experiment '%s' of type '%s' does not satisfy the 'SUMMARIZED_EXPERIMENT' interface",
					name, memberMeta.Type)
			}
			if err := ValidateObject(p, memberMeta, opts); err != nil {
				return err
			}
			dims, err := Dimensions(p, memberMeta, opts)
			if err != nil {
				return err
			}
			if len(dims) < 2 {
				return verrors.New(verrors.DimensionMismatch,
					"alternative experiment '%s' should have at least two dimensions", name)
			}
			if dims[1] != numCols {
				return verrors.New(verrors.DimensionMismatch,
					"alternative experiment '%s' has %d columns but the main experiment has %d",
					name, dims[1], numCols)
			}
			return nil
		})
	if err != nil {
		return err
	}

	if hasMain {
		for _, name := range altNames {
			if name == mainName {
				return verrors.New(verrors.DuplicateKey,
					"main experiment name '%s' collides with an alternative experiment", mainName)
			}
		}
	}
	return nil
}
