package validator

import (
	verrors "github.com/shelfdata/shelfcheck/validator/errors"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

func init() {
	registerDefault("atomic_vector", validateAtomicVector, heightAtomicVector, vectorDimensions("atomic_vector", heightAtomicVector))
}

// vectorDimensions adapts a height function into the 1-D dimensions
// shape shared by all vector-like types.
func vectorDimensions(name string, h HeightFn) DimensionsFn {
	return func(path string, meta *metadata.Object, opts *Options) ([]uint64, error) {
		n, err := h(path, meta, opts)
		if err != nil {
			return nil, err
		}
		return []uint64{n}, nil
	}
}

func validateAtomicVector(path string, meta *metadata.Object, opts *Options) error {
	ns, err := formatNamespace(meta, "atomic_vector")
	if err != nil {
		return err
	}
	declared, err := ns.String("type")
	if err != nil {
		return err
	}
	format, _, err := ns.OptionalString("format")
	if err != nil {
		return err
	}

	store, err := openStore(path, "vector.sf", opts)
	if err != nil {
		return err
	}
	root := store.Root()

	values, err := root.Dataset("values")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	if len(values.Shape()) != 1 {
		return verrors.New(verrors.MalformedMetadata, "'values' should be one-dimensional")
	}
	if err := validatePrimitive(values, declared, format, opts); err != nil {
		return err
	}

	return checkNamesDataset(root, values.Length(), opts)
}

func heightAtomicVector(path string, meta *metadata.Object, opts *Options) (uint64, error) {
	store, err := openStore(path, "vector.sf", opts)
	if err != nil {
		return 0, err
	}
	values, err := store.Root().Dataset("values")
	if err != nil {
		return 0, verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	return values.Length(), nil
}
