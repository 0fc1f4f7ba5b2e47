package validator

import (
	"path/filepath"
	"strconv"

	"github.com/shelfdata/shelfcheck/container"
	verrors "github.com/shelfdata/shelfcheck/validator/errors"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

func init() {
	registerDefault("data_frame", validateDataFrame, heightDataFrame, dimensionsDataFrame)
}

func dataFrameShape(meta *metadata.Object) ([]uint64, error) {
	ns, err := formatNamespace(meta, "data_frame")
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

func validateDataFrame(path string, meta *metadata.Object, opts *Options) error {
	dims, err := dataFrameShape(meta)
	if err != nil {
		return err
	}
	numRows, numCols := dims[0], dims[1]

	store, err := openStore(path, "frame.sf", opts)
	if err != nil {
		return err
	}
	root := store.Root()

	columnNames, err := root.Dataset("column_names")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	if columnNames.Type() != container.String {
		return verrors.New(verrors.MalformedMetadata, "'column_names' should be a string dataset")
	}
	if columnNames.Length() != numCols {
		return verrors.New(verrors.CountMismatch,
			"'column_names' has length %d but %d columns are declared", columnNames.Length(), numCols)
	}
	names, err := columnNames.ReadAllStrings()
	if err != nil {
		return verrors.New(verrors.MalformedMetadata, "%v", err)
	}
	if err := checkUniqueNames(names, false); err != nil {
		return verrors.Wrap(err, "", "column_names")
	}

	if root.HasDataset("row_names") {
		rowNames, err := root.Dataset("row_names")
		if err != nil {
			return err
		}
		if rowNames.Type() != container.String {
			return verrors.New(verrors.MalformedMetadata, "'row_names' should be a string dataset")
		}
		if rowNames.Length() != numRows {
			return verrors.New(verrors.CountMismatch,
				"'row_names' has length %d but %d rows are declared", rowNames.Length(), numRows)
		}
		if err := validateStringFormat(rowNames, formatNone, opts); err != nil {
			return verrors.Wrap(err, "", "row_names")
		}
	}

	columns, err := root.Group("columns")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	for i := uint64(0); i < numCols; i++ {
		if err := validateDataFrameColumn(path, columns, int(i), numRows, opts); err != nil {
			return verrors.Wrap(err, "", "column "+strconv.Itoa(int(i)))
		}
	}
	// every in-store entry must be one of the declared column positions
	for _, name := range append(columns.DatasetNames(), columns.GroupNames()...) {
		idx, convErr := strconv.Atoi(name)
		if convErr != nil || strconv.Itoa(idx) != name || uint64(idx) >= numCols {
			return verrors.New(verrors.CountMismatch,
				"'columns' contains an entry '%s' beyond the %d declared columns", name, numCols)
		}
	}

	if err := validateColumnAnnotations(path, numCols, opts); err != nil {
		return err
	}
	return validateOtherAnnotations(path, opts)
}

// validateDataFrameColumn checks one column position: a primitive
// dataset, an in-store factor group, or a nested object under
// other_columns whose height must match the row count.
func validateDataFrameColumn(path string, columns *container.Group, index int, numRows uint64, opts *Options) error {
	name := strconv.Itoa(index)

	if columns.HasDataset(name) {
		ds, err := columns.Dataset(name)
		if err != nil {
			return err
		}
		if len(ds.Shape()) != 1 {
			return verrors.New(verrors.MalformedMetadata, "column dataset should be one-dimensional")
		}
		if ds.Length() != numRows {
			return verrors.New(verrors.CountMismatch,
				"column has length %d but %d rows are declared", ds.Length(), numRows)
		}
		declared, ok, err := ds.StringAttribute("type")
		if err != nil {
			return verrors.New(verrors.MalformedMetadata, "%v", err)
		}
		if !ok {
			return verrors.New(verrors.MalformedMetadata, "column dataset should declare a 'type' attribute")
		}
		format, _, err := ds.StringAttribute("format")
		if err != nil {
			return verrors.New(verrors.MalformedMetadata, "%v", err)
		}
		return validatePrimitive(ds, declared, format, opts)
	}

	if columns.HasGroup(name) {
		return validateFactorColumn(columns, name, numRows, opts)
	}

	// neither in-store form exists, so this must be an external column
	childPath, childMeta, err := childObject(filepath.Join(path, "other_columns"), name)
	if err != nil {
		return err
	}
	if err := ValidateObject(childPath, childMeta, opts); err != nil {
		return err
	}
	h, err := Height(childPath, childMeta, opts)
	if err != nil {
		return err
	}
	if h != numRows {
		return verrors.New(verrors.DimensionMismatch,
			"external column has height %d but %d rows are declared", h, numRows)
	}
	return nil
}

// validateFactorColumn checks an in-store factor: bounded codes over
// unique levels, with the 'ordered' flag carried on the codes dataset.
func validateFactorColumn(columns *container.Group, name string, numRows uint64, opts *Options) error {
	g, err := columns.Group(name)
	if err != nil {
		return err
	}
	levels, err := g.Dataset("levels")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	if err := validateFactorLevels(levels, opts); err != nil {
		return verrors.Wrap(err, "", "levels")
	}
	codes, err := g.Dataset("codes")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	if _, _, err := codes.BoolAttribute("ordered"); err != nil {
		return verrors.New(verrors.MalformedMetadata, "%v", err)
	}
	if codes.Length() != numRows {
		return verrors.New(verrors.CountMismatch,
			"factor column has length %d but %d rows are declared", codes.Length(), numRows)
	}
	if err := validateFactorCodes(codes, levels.Length(), opts); err != nil {
		return verrors.Wrap(err, "", "codes")
	}
	return nil
}

// validateColumnAnnotations checks the optional side table annotating
// columns; its height must equal the column count.
func validateColumnAnnotations(path string, numCols uint64, opts *Options) error {
	p := filepath.Join(path, "column_annotations")
	if !metadata.IsDirectory(p) {
		return nil
	}
	childMeta, err := metadata.Read(p)
	if err != nil {
		return verrors.Wrap(err, "", "column_annotations")
	}
	if err := validateSatisfying(p, childMeta, "DATA_FRAME", "column_annotations", opts); err != nil {
		return err
	}
	h, err := Height(p, childMeta, opts)
	if err != nil {
		return verrors.Wrap(err, "", "column_annotations")
	}
	if h != numCols {
		return verrors.New(verrors.DimensionMismatch,
			"'column_annotations' has height %d but should match the column count %d", h, numCols)
	}
	return nil
}

func validateOtherAnnotations(path string, opts *Options) error {
	p := filepath.Join(path, "other_annotations")
	if !metadata.IsDirectory(p) {
		return nil
	}
	childMeta, err := metadata.Read(p)
	if err != nil {
		return verrors.Wrap(err, "", "other_annotations")
	}
	return validateSatisfying(p, childMeta, "SIMPLE_LIST", "other_annotations", opts)
}

func heightDataFrame(path string, meta *metadata.Object, opts *Options) (uint64, error) {
	dims, err := dataFrameShape(meta)
	if err != nil {
		return 0, err
	}
	return dims[0], nil
}

func dimensionsDataFrame(path string, meta *metadata.Object, opts *Options) ([]uint64, error) {
	return dataFrameShape(meta)
}
