package validator

import (
	"path/filepath"

	verrors "github.com/shelfdata/shelfcheck/validator/errors"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

func init() {
	registerDefault("summarized_experiment", validateSummarizedExperiment, heightSummarizedExperiment, dimensionsSummarizedExperiment)
}

// experimentShape reads the declared [rows, cols] of any experiment
// flavor; derived types reuse the base namespace.
func experimentShape(meta *metadata.Object) ([]uint64, error) {
	ns, err := formatNamespace(meta, "summarized_experiment")
	if err != nil {
		return nil, err
	}
	dims, err := ns.Dimensions("dimensions")
	if err != nil {
		return nil, err
	}
	if len(dims) != 2 {
		return nil, verrors.New(verrors.MalformedMetadata, "'dimensions' should contain two entries")
	}
	return dims, nil
}

func validateSummarizedExperiment(path string, meta *metadata.Object, opts *Options) error {
	dims, err := experimentShape(meta)
	if err != nil {
		return err
	}
	return checkExperimentBase(path, dims[0], dims[1], opts)
}

// checkExperimentBase validates the container parts shared by every
// experiment flavor: the annotation frames and the assay collection.
func checkExperimentBase(path string, numRows, numCols uint64, opts *Options) error {
	if err := checkAnnotationFrame(path, "row_data", numRows, opts); err != nil {
		return err
	}
	if err := checkAnnotationFrame(path, "column_data", numCols, opts); err != nil {
		return err
	}

	otherPath := filepath.Join(path, "other_data")
	if metadata.IsDirectory(otherPath) {
		otherMeta, err := metadata.Read(otherPath)
		if err != nil {
			return verrors.Wrap(err, "", "other_data")
		}
		if err := validateSatisfying(otherPath, otherMeta, "SIMPLE_LIST", "other_data", opts); err != nil {
			return err
		}
	}

	assaysDir := filepath.Join(path, "assays")
	if !metadata.IsDirectory(assaysDir) {
		return nil
	}
	_, err := validateCollection(assaysDir, "assays", opts,
		func(p string, assayMeta *metadata.Object, name string, i int) error {
			if err := ValidateObject(p, assayMeta, opts); err != nil {
				return err
			}
			dims, err := Dimensions(p, assayMeta, opts)
			if err != nil {
				return err
			}
			if len(dims) < 2 {
				return verrors.New(verrors.DimensionMismatch,
					"assay '%s' should have at least two dimensions", name)
			}
			if dims[0] != numRows || dims[1] != numCols {
				return verrors.New(verrors.DimensionMismatch,
					"assay '%s' has extents [%d, %d] but the experiment declares [%d, %d]",
					name, dims[0], dims[1], numRows, numCols)
			}
			return nil
		})
	return err
}

// checkAnnotationFrame validates an optional data-frame-like child
// whose height must equal the given extent.
func checkAnnotationFrame(path, name string, extent uint64, opts *Options) error {
	p := filepath.Join(path, name)
	if !metadata.IsDirectory(p) {
		return nil
	}
	childMeta, err := metadata.Read(p)
	if err != nil {
		return verrors.Wrap(err, "", name)
	}
	if err := validateSatisfying(p, childMeta, "DATA_FRAME", name, opts); err != nil {
		return err
	}
	h, err := Height(p, childMeta, opts)
	if err != nil {
		return verrors.Wrap(err, "", name)
	}
	if h != extent {
		return verrors.New(verrors.DimensionMismatch,
			"'%s' has height %d but the experiment declares %d", name, h, extent)
	}
	return nil
}

func heightSummarizedExperiment(path string, meta *metadata.Object, opts *Options) (uint64, error) {
	dims, err := experimentShape(meta)
	if err != nil {
		return 0, err
	}
	return dims[0], nil
}

func dimensionsSummarizedExperiment(path string, meta *metadata.Object, opts *Options) ([]uint64, error) {
	return experimentShape(meta)
}
