package validator

import (
	"strconv"

	"github.com/shelfdata/shelfcheck/container"
	verrors "github.com/shelfdata/shelfcheck/validator/errors"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

func init() {
	registerDefault("bumpy_atomic_array",
		bumpyValidator(func(t string, opts *Options) bool { return DerivedFrom(t, "atomic_vector", opts) }, "atomic_vector"),
		heightBumpyArray, dimensionsBumpyArray)
	registerDefault("bumpy_data_frame_array",
		bumpyValidator(func(t string, opts *Options) bool { return SatisfiesInterface(t, "DATA_FRAME", opts) }, "DATA_FRAME"),
		heightBumpyArray, dimensionsBumpyArray)
}

// bumpyDimensions reads the declared extents of the ragged array
func bumpyDimensions(path string, opts *Options) ([]uint64, error) {
	store, err := openStore(path, "partitions.sf", opts)
	if err != nil {
		return nil, err
	}
	ds, err := store.Root().Dataset("dimensions")
	if err != nil {
		return nil, verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	raw, err := ds.ReadAllInts()
	if err != nil {
		return nil, verrors.New(verrors.MalformedMetadata, "%v", err)
	}
	if len(raw) == 0 {
		return nil, verrors.New(verrors.MalformedMetadata, "'dimensions' should not be empty")
	}
	dims := make([]uint64, len(raw))
	for i, v := range raw {
		if v < 0 {
			return nil, verrors.New(verrors.MalformedMetadata, "'dimensions' contains a negative extent")
		}
		dims[i] = uint64(v)
	}
	return dims, nil
}

// bumpyValidator builds the validator for one ragged flavor; flavors
// differ only in the contract imposed on the concatenated payload.
func bumpyValidator(accepts func(string, *Options) bool, contract string) ValidateFn {
	return func(path string, meta *metadata.Object, opts *Options) error {
		if _, err := formatNamespace(meta, meta.Type); err != nil {
			return err
		}

		concatPath, concatMeta, err := childObject(path, "concatenated")
		if err != nil {
			return err
		}
		if !accepts(concatMeta.Type, opts) {
			return verrors.New(verrors.TypeContractViolation,
				"concatenated payload of type '%s' does not satisfy the '%s' contract", concatMeta.Type, contract)
		}
		if err := ValidateObject(concatPath, concatMeta, opts); err != nil {
			return verrors.Wrap(err, "", "concatenated")
		}
		concatHeight, err := Height(concatPath, concatMeta, opts)
		if err != nil {
			return verrors.Wrap(err, "", "concatenated")
		}

		dims, err := bumpyDimensions(path, opts)
		if err != nil {
			return err
		}

		store, err := openStore(path, "partitions.sf", opts)
		if err != nil {
			return err
		}
		root := store.Root()

		lengths, err := root.Dataset("lengths")
		if err != nil {
			return verrors.New(verrors.MissingRequiredFile, "%v", err)
		}
		if err := checkPartitionLengths(lengths, concatHeight, opts); err != nil {
			return err
		}
		numPartitions := lengths.Length()

		if !root.HasGroup("indices") {
			// dense mode: one partition per cell of the declared extents
			if numPartitions != uintProduct(dims) {
				return verrors.New(verrors.CountMismatch,
					"%d partitions do not fill the declared extents (product %d)", numPartitions, uintProduct(dims))
			}
			return nil
		}

		indices, err := root.Group("indices")
		if err != nil {
			return err
		}
		return checkBumpyCoordinates(indices, dims, numPartitions, opts)
	}
}

// checkPartitionLengths verifies lengths are non-negative and sum to
// the concatenated height.
func checkPartitionLengths(lengths *container.Dataset, concatHeight uint64, opts *Options) error {
	if !lengths.Type().IsInteger() {
		return verrors.New(verrors.MalformedMetadata, "'lengths' should be stored as integers")
	}
	if len(lengths.Shape()) != 1 {
		return verrors.New(verrors.MalformedMetadata, "'lengths' should be one-dimensional")
	}

	sum := uint64(0)
	err := lengths.StreamInts(opts.blockSize(), func(block []int64) error {
		for _, v := range block {
			if v < 0 {
				return verrors.New(verrors.OutOfRangeIndex, "'lengths' contains a negative entry")
			}
			sum += uint64(v)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if sum != concatHeight {
		return verrors.New(verrors.CountMismatch,
			"'lengths' sums to %d but the concatenated object has height %d", sum, concatHeight)
	}
	return nil
}

// checkBumpyCoordinates walks the R index cursors in lock-step. Tuples
// must be strictly increasing with the last dimension most significant
// (first dimension fastest-varying) and every component within its
// declared extent.
func checkBumpyCoordinates(indices *container.Group, dims []uint64, numPartitions uint64, opts *Options) error {
	rank := len(dims)
	cursors := make([]*container.IntReader, rank)
	defer func() {
		for _, c := range cursors {
			if c != nil {
				c.Close()
			}
		}
	}()

	for d := 0; d < rank; d++ {
		ds, err := indices.Dataset(strconv.Itoa(d))
		if err != nil {
			return verrors.New(verrors.MissingRequiredFile, "%v", err)
		}
		if ds.Length() != numPartitions {
			return verrors.New(verrors.CountMismatch,
				"index array %d has length %d but there are %d partitions", d, ds.Length(), numPartitions)
		}
		cursors[d], err = ds.IntReader()
		if err != nil {
			return verrors.New(verrors.MalformedMetadata, "%v", err)
		}
	}

	prev := make([]int64, rank)
	cur := make([]int64, rank)
	for step := uint64(0); step < numPartitions; step++ {
		for d := 0; d < rank; d++ {
			v, ok, err := cursors[d].Next()
			if err != nil || !ok {
				return verrors.New(verrors.MalformedMetadata, "index array %d is truncated", d)
			}
			if v < 0 || uint64(v) >= dims[d] {
				return verrors.New(verrors.OutOfRangeIndex,
					"coordinate %d of tuple %d exceeds the extent %d", v, step, dims[d])
			}
			cur[d] = v
		}
		if step > 0 {
			cmp := 0
			for d := rank - 1; d >= 0; d-- {
				if cur[d] != prev[d] {
					if cur[d] > prev[d] {
						cmp = 1
					} else {
						cmp = -1
					}
					break
				}
			}
			if cmp <= 0 {
				return verrors.New(verrors.UnsortedCoordinate,
					"coordinate tuple %d is not strictly greater than its predecessor", step)
			}
		}
		copy(prev, cur)
	}
	return nil
}

func heightBumpyArray(path string, meta *metadata.Object, opts *Options) (uint64, error) {
	dims, err := bumpyDimensions(path, opts)
	if err != nil {
		return 0, err
	}
	return dims[0], nil
}

func dimensionsBumpyArray(path string, meta *metadata.Object, opts *Options) ([]uint64, error) {
	return bumpyDimensions(path, opts)
}
