package validator

import (
	verrors "github.com/shelfdata/shelfcheck/validator/errors"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

func init() {
	registerDefault("genomic_ranges", validateGenomicRanges, heightGenomicRanges,
		vectorDimensions("genomic_ranges", heightGenomicRanges))
}

func validateGenomicRanges(path string, meta *metadata.Object, opts *Options) error {
	if _, err := formatNamespace(meta, "genomic_ranges"); err != nil {
		return err
	}

	seqPath, seqMeta, err := childObject(path, "sequence_information")
	if err != nil {
		return err
	}
	if !DerivedFrom(seqMeta.Type, "sequence_information", opts) {
		return verrors.New(verrors.TypeContractViolation,
			"'sequence_information' child has type '%s'", seqMeta.Type)
	}
	if err := ValidateObject(seqPath, seqMeta, opts); err != nil {
		return verrors.Wrap(err, "", "sequence_information")
	}
	numSequences, err := Height(seqPath, seqMeta, opts)
	if err != nil {
		return verrors.Wrap(err, "", "sequence_information")
	}

	store, err := openStore(path, "ranges.sf", opts)
	if err != nil {
		return err
	}
	root := store.Root()

	sequence, err := root.Dataset("sequence")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	if err := validateFactorCodes(sequence, numSequences, opts); err != nil {
		return verrors.Wrap(err, "", "sequence")
	}
	if _, has := sequence.MissingPlaceholder(); has {
		return verrors.New(verrors.MalformedMetadata, "'sequence' assignments cannot be missing")
	}
	n := sequence.Length()

	start, err := root.Dataset("start")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	if !start.Type().IsInteger() || start.Length() != n {
		return verrors.New(verrors.CountMismatch, "'start' should be an integer dataset of length %d", n)
	}

	width, err := root.Dataset("width")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	if !width.Type().IsInteger() || width.Length() != n {
		return verrors.New(verrors.CountMismatch, "'width' should be an integer dataset of length %d", n)
	}
	err = width.StreamInts(opts.blockSize(), func(block []int64) error {
		for _, w := range block {
			if w < 0 {
				return verrors.New(verrors.OutOfRangeIndex, "'width' contains a negative entry")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	strand, err := root.Dataset("strand")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	if !strand.Type().IsInteger() || strand.Length() != n {
		return verrors.New(verrors.CountMismatch, "'strand' should be an integer dataset of length %d", n)
	}
	err = strand.StreamInts(opts.blockSize(), func(block []int64) error {
		for _, s := range block {
			if s < -1 || s > 1 {
				return verrors.New(verrors.OutOfRangeIndex, "'strand' entries should be -1, 0 or 1")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return checkNamesDataset(root, n, opts)
}

func heightGenomicRanges(path string, meta *metadata.Object, opts *Options) (uint64, error) {
	store, err := openStore(path, "ranges.sf", opts)
	if err != nil {
		return 0, err
	}
	sequence, err := store.Root().Dataset("sequence")
	if err != nil {
		return 0, verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	return sequence.Length(), nil
}
