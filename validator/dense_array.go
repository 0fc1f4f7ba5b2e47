package validator

import (
	"strconv"

	"github.com/shelfdata/shelfcheck/container"
	verrors "github.com/shelfdata/shelfcheck/validator/errors"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

func init() {
	registerDefault("dense_array", validateDenseArray, heightDenseArray, dimensionsDenseArray)
}

// denseArrayData opens the backing dataset and resolves the logical
// dimension order. The 'transposed' attribute means the payload is laid
// out fastest-dimension-first, so the reported dimensions are the
// stored shape reversed; the logical array itself is unchanged.
func denseArrayData(path string, opts *Options) (*container.Dataset, []uint64, error) {
	store, err := openStore(path, "array.sf", opts)
	if err != nil {
		return nil, nil, err
	}
	data, err := store.Root().Dataset("data")
	if err != nil {
		return nil, nil, verrors.New(verrors.MissingRequiredFile, "%v", err)
	}

	dims := data.Shape()
	if len(dims) == 0 {
		return nil, nil, verrors.New(verrors.MalformedMetadata, "'data' should have at least one dimension")
	}
	transposed, _, err := data.BoolAttribute("transposed")
	if err != nil {
		return nil, nil, verrors.New(verrors.MalformedMetadata, "%v", err)
	}
	if transposed {
		for i, j := 0, len(dims)-1; i < j; i, j = i+1, j-1 {
			dims[i], dims[j] = dims[j], dims[i]
		}
	}
	return data, dims, nil
}

func validateDenseArray(path string, meta *metadata.Object, opts *Options) error {
	ns, err := formatNamespace(meta, "dense_array")
	if err != nil {
		return err
	}
	declared, err := ns.String("type")
	if err != nil {
		return err
	}

	data, dims, err := denseArrayData(path, opts)
	if err != nil {
		return err
	}
	if err := validatePrimitive(data, declared, "", opts); err != nil {
		return err
	}

	// optional per-dimension name vectors
	store, err := openStore(path, "array.sf", opts)
	if err != nil {
		return err
	}
	if store.Root().HasGroup("names") {
		names, err := store.Root().Group("names")
		if err != nil {
			return err
		}
		for d, extent := range dims {
			key := strconv.Itoa(d)
			if !names.HasDataset(key) {
				continue
			}
			ds, err := names.Dataset(key)
			if err != nil {
				return err
			}
			if ds.Type() != container.String {
				return verrors.New(verrors.MalformedMetadata, "dimension names should be stored as strings")
			}
			if ds.Length() != extent {
				return verrors.New(verrors.CountMismatch,
					"names for dimension %d have length %d but the extent is %d", d, ds.Length(), extent)
			}
		}
	}
	return nil
}

func heightDenseArray(path string, meta *metadata.Object, opts *Options) (uint64, error) {
	_, dims, err := denseArrayData(path, opts)
	if err != nil {
		return 0, err
	}
	return dims[0], nil
}

func dimensionsDenseArray(path string, meta *metadata.Object, opts *Options) ([]uint64, error) {
	_, dims, err := denseArrayData(path, opts)
	if err != nil {
		return nil, err
	}
	return dims, nil
}
