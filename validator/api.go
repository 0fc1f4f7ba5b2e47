// Package validator checks that a directory-tree serialization of a
// structured data object conforms to its on-disk format. Validation
// never materializes the object: payloads are streamed in bounded
// blocks and child objects are validated by recursion through the
// same dispatch used for the root.
package validator

import (
	verrors "github.com/shelfdata/shelfcheck/validator/errors"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

// Validate checks the object rooted at path. A nil opts validates with
// defaults.
func Validate(path string, opts *Options) error {
	opts = ensure(opts)
	meta, err := readObject(path)
	if err != nil {
		return err
	}
	return ValidateObject(path, meta, opts)
}

// ValidateObject is the re-entrant form of Validate, used by parent
// validators that already hold the child's parsed metadata.
func ValidateObject(path string, meta *metadata.Object, opts *Options) error {
	opts = ensure(opts)

	fn, ok := lookupValidate(meta.Type, opts)
	if !ok {
		return verrors.New(verrors.UnregisteredType, "no registered 'validate' function for type '%s' at '%s'", meta.Type, path)
	}
	if err := fn(path, meta, opts); err != nil {
		return verrors.Wrap(err, path, meta.Type)
	}

	if opts.PostValidate != nil {
		if err := opts.PostValidate(path, meta, opts); err != nil {
			return verrors.Wrap(err, path, meta.Type)
		}
	}
	return nil
}

// Height returns the extent of the object's first dimension. Metadata
// may be nil, in which case it is read from path.
func Height(path string, meta *metadata.Object, opts *Options) (uint64, error) {
	opts = ensure(opts)
	if meta == nil {
		var err error
		if meta, err = readObject(path); err != nil {
			return 0, err
		}
	}
	fn, ok := lookupHeight(meta.Type, opts)
	if !ok {
		return 0, verrors.New(verrors.UnregisteredType, "no registered 'height' function for type '%s' at '%s'", meta.Type, path)
	}
	return fn(path, meta, opts)
}

// Dimensions returns the object's full extents, fastest-varying
// dimension last. Metadata may be nil.
func Dimensions(path string, meta *metadata.Object, opts *Options) ([]uint64, error) {
	opts = ensure(opts)
	if meta == nil {
		var err error
		if meta, err = readObject(path); err != nil {
			return nil, err
		}
	}
	fn, ok := lookupDimensions(meta.Type, opts)
	if !ok {
		return nil, verrors.New(verrors.UnregisteredType, "no registered 'dimensions' function for type '%s' at '%s'", meta.Type, path)
	}
	return fn(path, meta, opts)
}

// readObject performs the directory and side-car checks shared by all
// entry points.
func readObject(path string) (*metadata.Object, error) {
	if !metadata.IsDirectory(path) {
		return nil, verrors.New(verrors.NotADirectory, "'%s' is not a directory", path)
	}
	return metadata.Read(path)
}
