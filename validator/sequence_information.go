package validator

import (
	"github.com/shelfdata/shelfcheck/container"
	verrors "github.com/shelfdata/shelfcheck/validator/errors"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

func init() {
	registerDefault("sequence_information", validateSequenceInformation, heightSequenceInformation,
		vectorDimensions("sequence_information", heightSequenceInformation))
}

func validateSequenceInformation(path string, meta *metadata.Object, opts *Options) error {
	if _, err := formatNamespace(meta, "sequence_information"); err != nil {
		return err
	}

	store, err := openStore(path, "seqinfo.sf", opts)
	if err != nil {
		return err
	}
	root := store.Root()

	names, err := root.Dataset("names")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	if names.Type() != container.String {
		return verrors.New(verrors.MalformedMetadata, "'names' should be a string dataset")
	}
	n := names.Length()

	seen := make(map[string]bool, n)
	err = names.StreamStrings(opts.blockSize(), func(block []string) error {
		for _, name := range block {
			if name == "" {
				return verrors.New(verrors.DuplicateKey, "sequence names should not be empty")
			}
			if seen[name] {
				return verrors.New(verrors.DuplicateKey, "duplicate sequence name '%s'", name)
			}
			seen[name] = true
		}
		return nil
	})
	if err != nil {
		return err
	}

	lengths, err := root.Dataset("lengths")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	if !lengths.Type().IsInteger() || lengths.Length() != n {
		return verrors.New(verrors.CountMismatch,
			"'lengths' should be an integer dataset of length %d", n)
	}

	circular, err := root.Dataset("circular")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	if circular.Type() != container.Bool || circular.Length() != n {
		return verrors.New(verrors.CountMismatch,
			"'circular' should be a boolean dataset of length %d", n)
	}

	genome, err := root.Dataset("genome")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	if genome.Type() != container.String || genome.Length() != n {
		return verrors.New(verrors.CountMismatch,
			"'genome' should be a string dataset of length %d", n)
	}
	return nil
}

func heightSequenceInformation(path string, meta *metadata.Object, opts *Options) (uint64, error) {
	store, err := openStore(path, "seqinfo.sf", opts)
	if err != nil {
		return 0, err
	}
	names, err := store.Root().Dataset("names")
	if err != nil {
		return 0, verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	return names.Length(), nil
}
