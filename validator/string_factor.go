package validator

import (
	"github.com/shelfdata/shelfcheck/container"
	verrors "github.com/shelfdata/shelfcheck/validator/errors"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

func init() {
	registerDefault("string_factor", validateStringFactor, heightStringFactor, vectorDimensions("string_factor", heightStringFactor))
}

func validateStringFactor(path string, meta *metadata.Object, opts *Options) error {
	ns, err := formatNamespace(meta, "string_factor")
	if err != nil {
		return err
	}
	if _, err := ns.Bool("ordered", false); err != nil {
		return err
	}

	store, err := openStore(path, "factor.sf", opts)
	if err != nil {
		return err
	}
	root := store.Root()

	levels, err := root.Dataset("levels")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	if err := validateFactorLevels(levels, opts); err != nil {
		return verrors.Wrap(err, "", "levels")
	}

	codes, err := root.Dataset("codes")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	if err := validateFactorCodes(codes, levels.Length(), opts); err != nil {
		return verrors.Wrap(err, "", "codes")
	}

	return checkNamesDataset(root, codes.Length(), opts)
}

// validateFactorLevels checks levels are unique non-missing strings
func validateFactorLevels(levels *container.Dataset, opts *Options) error {
	if levels.Type() != container.String {
		return verrors.New(verrors.MalformedMetadata, "levels should be stored as strings")
	}
	if _, has := levels.MissingPlaceholder(); has {
		return verrors.New(verrors.MalformedMetadata, "levels should not declare a missing-value placeholder")
	}

	seen := make(map[string]bool, levels.Length())
	return levels.StreamStrings(opts.blockSize(), func(block []string) error {
		for _, level := range block {
			if seen[level] {
				return verrors.New(verrors.DuplicateKey, "duplicate level '%s'", level)
			}
			seen[level] = true
		}
		return nil
	})
}

// validateFactorCodes bounds every non-placeholder code by the level count
func validateFactorCodes(codes *container.Dataset, numLevels uint64, opts *Options) error {
	if !codes.Type().IsInteger() {
		return verrors.New(verrors.MalformedMetadata, "codes should be stored as integers")
	}
	if container.ExceedsIntegerLimit(codes.Type(), 64, true) {
		return verrors.New(verrors.MalformedMetadata, "codes cannot be stored as unsigned 64-bit integers")
	}
	if len(codes.Shape()) != 1 {
		return verrors.New(verrors.MalformedMetadata, "codes should be one-dimensional")
	}

	var sentinel int64
	hasSentinel := false
	if raw, has := codes.MissingPlaceholder(); has {
		f, ok := raw.(float64)
		if !ok || f != float64(int64(f)) {
			return verrors.New(verrors.MalformedMetadata, "missing-value placeholder on codes should be an integer")
		}
		sentinel = int64(f)
		hasSentinel = true
	}

	pos := uint64(0)
	return codes.StreamInts(opts.blockSize(), func(block []int64) error {
		for _, code := range block {
			if hasSentinel && code == sentinel {
				pos++
				continue
			}
			if code < 0 || uint64(code) >= numLevels {
				return verrors.New(verrors.OutOfRangeIndex,
					"code %d at position %d is out of range for %d levels", code, pos, numLevels)
			}
			pos++
		}
		return nil
	})
}

func heightStringFactor(path string, meta *metadata.Object, opts *Options) (uint64, error) {
	store, err := openStore(path, "factor.sf", opts)
	if err != nil {
		return 0, err
	}
	codes, err := store.Root().Dataset("codes")
	if err != nil {
		return 0, verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	return codes.Length(), nil
}
