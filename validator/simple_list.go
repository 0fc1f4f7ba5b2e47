package validator

import (
	"path/filepath"
	"strconv"

	verrors "github.com/shelfdata/shelfcheck/validator/errors"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

func init() {
	registerDefault("simple_list", validateSimpleList, heightSimpleList, vectorDimensions("simple_list", heightSimpleList))
}

func validateSimpleList(path string, meta *metadata.Object, opts *Options) error {
	if _, err := formatNamespace(meta, "simple_list"); err != nil {
		return err
	}

	store, err := openStore(path, "list.sf", opts)
	if err != nil {
		return err
	}
	root := store.Root()

	lengthDS, err := root.Dataset("length")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	length, err := lengthDS.ReadScalarInt()
	if err != nil {
		return verrors.New(verrors.MalformedMetadata, "%v", err)
	}
	if length < 0 {
		return verrors.New(verrors.MalformedMetadata, "'length' should be non-negative")
	}
	if err := checkNamesDataset(root, uint64(length), opts); err != nil {
		return err
	}

	entriesDir := filepath.Join(path, "entries")
	if length == 0 && !metadata.IsDirectory(entriesDir) {
		return nil
	}
	for i := int64(0); i < length; i++ {
		p, childMeta, err := childObject(entriesDir, strconv.FormatInt(i, 10))
		if err != nil {
			return verrors.Wrap(err, "", "entries")
		}
		if err := ValidateObject(p, childMeta, opts); err != nil {
			return verrors.Wrap(err, "", "entries/"+strconv.FormatInt(i, 10))
		}
	}

	observed, err := metadata.CountNonHidden(entriesDir)
	if err != nil {
		return err
	}
	if int64(observed) != length {
		return verrors.New(verrors.CountMismatch,
			"'entries' contains %d entries but the list declares %d", observed, length)
	}
	return nil
}

func heightSimpleList(path string, meta *metadata.Object, opts *Options) (uint64, error) {
	store, err := openStore(path, "list.sf", opts)
	if err != nil {
		return 0, err
	}
	lengthDS, err := store.Root().Dataset("length")
	if err != nil {
		return 0, verrors.New(verrors.MissingRequiredFile, "%v", err)
	}
	length, err := lengthDS.ReadScalarInt()
	if err != nil || length < 0 {
		return 0, verrors.New(verrors.MalformedMetadata, "'length' should be a non-negative scalar")
	}
	return uint64(length), nil
}
