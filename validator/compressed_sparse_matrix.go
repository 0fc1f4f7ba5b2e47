package validator

import (
	"github.com/shelfdata/shelfcheck/container"
	verrors "github.com/shelfdata/shelfcheck/validator/errors"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

func init() {
	registerDefault("compressed_sparse_matrix", validateSparseMatrix, heightSparseMatrix, dimensionsSparseMatrix)
}

// sparseShape reads the stored [rows, cols] pair
func sparseShape(path string, opts *Options) ([2]uint64, error) {
	var shape [2]uint64
	store, err := openStore(path, "matrix.sf", opts)
	if err != nil {
		return shape, err
	}
	ds, err := store.Root().Dataset("shape")
	if err != nil {
		return shape, verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	raw, err := ds.ReadAllInts()
	if err != nil {
		return shape, verrors.New(verrors.MalformedMetadata, "%v", err)
	}
	if len(raw) != 2 || raw[0] < 0 || raw[1] < 0 {
		return shape, verrors.New(verrors.MalformedMetadata, "'shape' should contain two non-negative entries")
	}
	shape[0], shape[1] = uint64(raw[0]), uint64(raw[1])
	return shape, nil
}

func validateSparseMatrix(path string, meta *metadata.Object, opts *Options) error {
	ns, err := formatNamespace(meta, "compressed_sparse_matrix")
	if err != nil {
		return err
	}
	declared, err := ns.String("type")
	if err != nil {
		return err
	}
	layout, err := ns.String("layout")
	if err != nil {
		return err
	}
	if layout != "CSR" && layout != "CSC" {
		return verrors.New(verrors.MalformedMetadata, "unknown layout '%s'", layout)
	}

	shape, err := sparseShape(path, opts)
	if err != nil {
		return err
	}
	primary, secondary := shape[0], shape[1]
	if layout == "CSC" {
		primary, secondary = shape[1], shape[0]
	}

	store, err := openStore(path, "matrix.sf", opts)
	if err != nil {
		return err
	}
	root := store.Root()

	data, err := root.Dataset("data")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	if err := validatePrimitive(data, declared, "", opts); err != nil {
		return verrors.Wrap(err, "", "data")
	}
	nnz := data.Length()

	indices, err := root.Dataset("indices")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	if !indices.Type().IsInteger() {
		return verrors.New(verrors.MalformedMetadata, "'indices' should be stored as integers")
	}
	if indices.Length() != nnz {
		return verrors.New(verrors.CountMismatch,
			"'indices' has length %d but 'data' has length %d", indices.Length(), nnz)
	}

	indptr, err := root.Dataset("indptr")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	if !indptr.Type().IsInteger() {
		return verrors.New(verrors.MalformedMetadata, "'indptr' should be stored as integers")
	}
	if indptr.Length() != primary+1 {
		return verrors.New(verrors.CountMismatch,
			"'indptr' has length %d but should be the primary extent plus one (%d)", indptr.Length(), primary+1)
	}

	return checkSparseIndices(indices, indptr, nnz, secondary, opts)
}

// checkSparseIndices performs the single linear pass over 'indices':
// the indptr cursor tracks the current primary group, every index must
// stay below the secondary extent, and within one group indices must be
// strictly increasing. O(nnz) time, O(1) memory beyond the block
// buffers.
func checkSparseIndices(indices, indptr *container.Dataset, nnz, secondary uint64, opts *Options) error {
	ptr, err := indptr.IntReader()
	if err != nil {
		return verrors.New(verrors.MalformedMetadata, "%v", err)
	}
	defer ptr.Close()

	first, ok, err := ptr.Next()
	if err != nil {
		return verrors.New(verrors.MalformedMetadata, "%v", err)
	}
	if !ok || first != 0 {
		return verrors.New(verrors.UnsortedCoordinate, "'indptr' should start at zero")
	}

	// advance to the end of the first non-empty group
	groupEnd := int64(0)
	lastPtr := int64(0)
	nextBoundary := func() error {
		for {
			v, ok, err := ptr.Next()
			if err != nil {
				return verrors.New(verrors.MalformedMetadata, "%v", err)
			}
			if !ok {
				groupEnd = -1
				return nil
			}
			if v < lastPtr {
				return verrors.New(verrors.UnsortedCoordinate, "'indptr' should be non-decreasing")
			}
			lastPtr = v
			if v > groupEnd {
				groupEnd = v
				return nil
			}
			// zero-length group, keep skipping
		}
	}
	if err := nextBoundary(); err != nil {
		return err
	}

	pos := uint64(0)
	lastIndex := int64(-1)
	err = indices.StreamInts(opts.blockSize(), func(block []int64) error {
		for _, idx := range block {
			if idx < 0 || uint64(idx) >= secondary {
				return verrors.New(verrors.OutOfRangeIndex,
					"index %d at position %d exceeds the secondary extent %d", idx, pos, secondary)
			}
			if groupEnd >= 0 && int64(pos) == groupEnd {
				// entering the next group; reset the ordering tracker
				if err := nextBoundary(); err != nil {
					return err
				}
				lastIndex = -1
			}
			if idx <= lastIndex {
				return verrors.New(verrors.UnsortedCoordinate,
					"index %d at position %d is not strictly increasing within its group", idx, pos)
			}
			lastIndex = idx
			pos++
		}
		return nil
	})
	if err != nil {
		return err
	}

	// drain the remaining boundaries so trailing empty groups and the
	// final nnz boundary are still checked
	for groupEnd >= 0 {
		if uint64(groupEnd) > nnz {
			return verrors.New(verrors.CountMismatch,
				"'indptr' boundary %d exceeds the number of non-zero elements %d", groupEnd, nnz)
		}
		if err := nextBoundary(); err != nil {
			return err
		}
	}
	if uint64(lastPtr) != nnz {
		return verrors.New(verrors.CountMismatch,
			"'indptr' should end at the number of non-zero elements %d", nnz)
	}
	return nil
}

func heightSparseMatrix(path string, meta *metadata.Object, opts *Options) (uint64, error) {
	shape, err := sparseShape(path, opts)
	if err != nil {
		return 0, err
	}
	return shape[0], nil
}

func dimensionsSparseMatrix(path string, meta *metadata.Object, opts *Options) ([]uint64, error) {
	shape, err := sparseShape(path, opts)
	if err != nil {
		return nil, err
	}
	return []uint64{shape[0], shape[1]}, nil
}
