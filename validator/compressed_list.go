package validator

import (
	verrors "github.com/shelfdata/shelfcheck/validator/errors"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

func init() {
	registerDefault("atomic_vector_list",
		compressedListValidator(func(t string, opts *Options) bool { return DerivedFrom(t, "atomic_vector", opts) }, "atomic_vector"),
		heightCompressedList, vectorDimensions("atomic_vector_list", heightCompressedList))
	registerDefault("data_frame_list",
		compressedListValidator(func(t string, opts *Options) bool { return SatisfiesInterface(t, "DATA_FRAME", opts) }, "DATA_FRAME"),
		heightCompressedList, vectorDimensions("data_frame_list", heightCompressedList))
	registerDefault("genomic_ranges_list",
		compressedListValidator(func(t string, opts *Options) bool { return DerivedFrom(t, "genomic_ranges", opts) }, "genomic_ranges"),
		heightCompressedList, vectorDimensions("genomic_ranges_list", heightCompressedList))
}

// compressedListValidator builds the validator for one partitioned
// list flavor. Element i of the abstract list spans lengths[i]
// consecutive rows of the concatenated payload.
func compressedListValidator(accepts func(string, *Options) bool, contract string) ValidateFn {
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
		return checkNamesDataset(root, lengths.Length(), opts)
	}
}

func heightCompressedList(path string, meta *metadata.Object, opts *Options) (uint64, error) {
	store, err := openStore(path, "partitions.sf", opts)
	if err != nil {
		return 0, err
	}
	lengths, err := store.Root().Dataset("lengths")
	if err != nil {
		return 0, verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	return lengths.Length(), nil
}
