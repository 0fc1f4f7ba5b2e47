package validator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shelfdata/shelfcheck/internal/sniff"
	verrors "github.com/shelfdata/shelfcheck/validator/errors"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

func init() {
	registerDefault("spatial_experiment", validateSpatialExperiment,
		heightSummarizedExperiment, dimensionsSummarizedExperiment)
}

func validateSpatialExperiment(path string, meta *metadata.Object, opts *Options) error {
	dims, err := experimentShape(meta)
	if err != nil {
		return err
	}
	if _, err := formatNamespace(meta, "spatial_experiment"); err != nil {
		return err
	}
	if err := checkExperimentBase(path, dims[0], dims[1], opts); err != nil {
		return err
	}
	if err := checkRowRanges(path, dims[0], opts); err != nil {
		return err
	}
	sc, err := formatNamespace(meta, "single_cell_experiment")
	if err != nil {
		return err
	}
	if err := checkSingleCellExtras(path, sc, dims[1], opts); err != nil {
		return err
	}
	if err := checkSpatialCoordinates(path, dims[1], opts); err != nil {
		return err
	}
	return checkSpatialImages(path, opts)
}

// checkSpatialCoordinates validates the mandatory per-column spatial
// coordinates: a rank-2 numeric array of height cols with 2 or 3
// coordinate columns.
func checkSpatialCoordinates(path string, numCols uint64, opts *Options) error {
	coordsPath, coordsMeta, err := childObject(path, "coordinates")
	if err != nil {
		return err
	}
	if err := ValidateObject(coordsPath, coordsMeta, opts); err != nil {
		return verrors.Wrap(err, "", "coordinates")
	}
	dims, err := Dimensions(coordsPath, coordsMeta, opts)
	if err != nil {
		return verrors.Wrap(err, "", "coordinates")
	}
	if len(dims) != 2 {
		return verrors.New(verrors.DimensionMismatch, "'coordinates' should be a two-dimensional array")
	}
	if dims[0] != numCols {
		return verrors.New(verrors.DimensionMismatch,
			"'coordinates' has height %d but the experiment has %d columns", dims[0], numCols)
	}
	if dims[1] != 2 && dims[1] != 3 {
		return verrors.New(verrors.DimensionMismatch,
			"'coordinates' should have 2 or 3 columns, not %d", dims[1])
	}
	return nil
}

// imageManifest lists the stored images of a spatial experiment
type imageManifest struct {
	Images []struct {
		Sample string `json:"sample"`
		Format string `json:"format"`
		File   string `json:"file"`
	} `json:"images"`
}

// checkSpatialImages validates the image directory: every image maps
// to a known sample, every sample owns at least one image, and every
// image file passes its declared format's signature check plus any
// caller-supplied strict check.
func checkSpatialImages(path string, opts *Options) error {
	imagesDir := filepath.Join(path, "images")
	raw, err := os.ReadFile(filepath.Join(imagesDir, "_manifest.json"))
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "expected an image manifest in 'images'")
	}
	var manifest imageManifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return verrors.New(verrors.MalformedMetadata, "malformed image manifest: %v", err)
	}

	samples, err := readSampleLevels(path, opts)
	if err != nil {
		return err
	}

	owned := make(map[string]bool, len(samples))
	for i, img := range manifest.Images {
		if !samples[img.Sample] {
			return verrors.New(verrors.OutOfRangeIndex,
				"image %d maps to unknown sample '%s'", i, img.Sample)
		}
		owned[img.Sample] = true

		if img.Format != sniff.PNG && img.Format != sniff.TIFF {
			return verrors.New(verrors.MalformedMetadata,
				"image %d declares unsupported format '%s'", i, img.Format)
		}
		file := filepath.Join(imagesDir, img.File)
		if err := sniff.Check(file, img.Format); err != nil {
			return verrors.New(verrors.CorruptSignature, "image %d: %v", i, err)
		}
		if strict, ok := opts.StrictChecks[img.Format]; ok {
			if err := strict(file); err != nil {
				return verrors.New(verrors.CorruptSignature, "image %d failed the strict '%s' check: %v", i, img.Format, err)
			}
		}
	}

	for sample := range samples {
		if !owned[sample] {
			return verrors.New(verrors.CountMismatch, "sample '%s' owns no image", sample)
		}
	}

	observed, err := metadata.CountNonHidden(imagesDir)
	if err != nil {
		return err
	}
	if observed != len(manifest.Images) {
		return verrors.New(verrors.CountMismatch,
			"'images' contains %d entries but the manifest names %d", observed, len(manifest.Images))
	}
	return nil
}

// readSampleLevels extracts the sample set from the 'sample' factor
// column of the experiment's column_data frame.
func readSampleLevels(path string, opts *Options) (map[string]bool, error) {
	framePath := filepath.Join(path, "column_data")
	if !metadata.IsDirectory(framePath) {
		return nil, verrors.New(verrors.MissingRequiredFile,
			"a spatial experiment requires 'column_data' with a 'sample' factor column")
	}
	store, err := openStore(framePath, "frame.sf", opts)
	if err != nil {
		return nil, verrors.Wrap(err, "", "column_data")
	}
	root := store.Root()

	columnNames, err := root.Dataset("column_names")
	if err != nil {
		return nil, verrors.Wrap(err, "", "column_data")
	}
	names, err := columnNames.ReadAllStrings()
	if err != nil {
		return nil, verrors.New(verrors.MalformedMetadata, "%v", err)
	}
	position := -1
	for i, name := range names {
		if name == "sample" {
			position = i
			break
		}
	}
	if position < 0 {
		return nil, verrors.New(verrors.MissingRequiredFile,
			"'column_data' has no 'sample' column")
	}

	columns, err := root.Group("columns")
	if err != nil {
		return nil, verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	if !columns.HasGroup(strconv.Itoa(position)) {
		return nil, verrors.New(verrors.TypeContractViolation,
			"the 'sample' column should be a factor")
	}
	factor, err := columns.Group(strconv.Itoa(position))
	if err != nil {
		return nil, err
	}
	levels, err := factor.Dataset("levels")
	if err != nil {
		return nil, verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	values, err := levels.ReadAllStrings()
	if err != nil {
		return nil, verrors.New(verrors.MalformedMetadata, "%v", err)
	}

	samples := make(map[string]bool, len(values))
	for _, v := range values {
		samples[v] = true
	}
	return samples, nil
}
