package validator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shelfdata/shelfcheck/container"
	verrors "github.com/shelfdata/shelfcheck/validator/errors"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

// currentMajor is the metadata major version this validator understands
const currentMajor = 1

// formatNamespace fetches a type's metadata namespace and gates its
// declared version against the supported major.
func formatNamespace(meta *metadata.Object, name string) (metadata.Namespace, error) {
	ns, err := meta.Namespace(name)
	if err != nil {
		return nil, err
	}
	if _, err := ns.Version(currentMajor); err != nil {
		return nil, err
	}
	return ns, nil
}

// openStore opens the named shelf store inside an object directory
func openStore(path, name string, opts *Options) (*container.Store, error) {
	full := filepath.Join(path, name)
	if !metadata.IsDirectory(full) {
		return nil, verrors.New(verrors.MissingRequiredFile, "expected a '%s' store", name)
	}
	store, err := container.Open(full)
	if err != nil {
		return nil, verrors.New(verrors.MalformedMetadata, "%v", err)
	}
	store.SetParallel(opts.parallel())
	return store, nil
}

// childObject reads the metadata of a nested object, failing with the
// missing-file kind when the directory is absent. Callers treating the
// child as optional should test with metadata.IsDirectory first.
func childObject(parent, name string) (string, *metadata.Object, error) {
	p := filepath.Join(parent, name)
	if !metadata.IsDirectory(p) {
		return "", nil, verrors.New(verrors.MissingRequiredFile, "expected a '%s' directory", name)
	}
	meta, err := metadata.Read(p)
	if err != nil {
		return "", nil, verrors.Wrap(err, "", name)
	}
	return p, meta, nil
}

// validateSatisfying validates a nested object after checking its type
// against an abstract contract.
func validateSatisfying(path string, meta *metadata.Object, iface, role string, opts *Options) error {
	if !SatisfiesInterface(meta.Type, iface, opts) {
		return verrors.New(verrors.TypeContractViolation,
			"object of type '%s' does not satisfy the '%s' interface", meta.Type, iface).WithFrame("", role)
	}
	if err := ValidateObject(path, meta, opts); err != nil {
		return verrors.Wrap(err, "", role)
	}
	return nil
}

// collectionManifest is the _manifest.json of a named ordered collection
type collectionManifest struct {
	Names []string `json:"names"`
}

// validateCollection validates a directory holding a named, ordered
// collection of child objects. The manifest lists the expected member
// names; members live in subdirectories named by 0-based position; the
// member callback performs per-member contract and extent checks. After
// the walk, the directory must hold exactly len(names) non-hidden
// entries.
func validateCollection(dir, role string, opts *Options,
	member func(path string, meta *metadata.Object, name string, index int) error) ([]string, error) {

	raw, err := os.ReadFile(filepath.Join(dir, "_manifest.json"))
	if err != nil {
		return nil, verrors.New(verrors.MissingRequiredFile, "expected a manifest in '%s'", role).WithFrame("", role)
	}
	var manifest collectionManifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, verrors.New(verrors.MalformedMetadata, "malformed manifest: %v", err).WithFrame("", role)
	}
	if err := checkUniqueNames(manifest.Names, false); err != nil {
		return nil, verrors.Wrap(err, "", role)
	}

	for i, name := range manifest.Names {
		memberRole := role + "/" + strconv.Itoa(i)
		p, meta, err := childObject(dir, strconv.Itoa(i))
		if err != nil {
			return nil, verrors.Wrap(err, "", role)
		}
		if err := member(p, meta, name, i); err != nil {
			return nil, verrors.Wrap(err, "", memberRole)
		}
	}

	observed, err := metadata.CountNonHidden(dir)
	if err != nil {
		return nil, err
	}
	if observed != len(manifest.Names) {
		return nil, verrors.New(verrors.CountMismatch,
			"'%s' contains %d entries but the manifest names %d", role, observed, len(manifest.Names)).WithFrame("", role)
	}
	return manifest.Names, nil
}

// checkUniqueNames rejects duplicate (and, unless allowed, empty) names
func checkUniqueNames(names []string, allowEmpty bool) error {
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		if name == "" && !allowEmpty {
			return verrors.New(verrors.DuplicateKey, "name %d is empty", i)
		}
		if seen[name] {
			return verrors.New(verrors.DuplicateKey, "duplicate name '%s'", name)
		}
		seen[name] = true
	}
	return nil
}

// Logical column/vector element types and their display formats
const (
	typeInteger = "integer"
	typeBoolean = "boolean"
	typeNumber  = "number"
	typeString  = "string"

	formatNone     = "none"
	formatDate     = "date"
	formatDateTime = "date-time"
)

// validatePrimitive checks a stored dataset against its declared
// logical type and display format. Integer storage must fit a signed
// 32-bit limit; string formats are parsed value by value, with the
// declared missing-value placeholder exempted.
func validatePrimitive(ds *container.Dataset, declared, format string, opts *Options) error {
	switch declared {
	case typeInteger:
		if container.ExceedsIntegerLimit(ds.Type(), 32, true) {
			return verrors.New(verrors.MalformedMetadata,
				"dataset of type '%s' cannot hold 32-bit signed integers", ds.Type())
		}
	case typeBoolean:
		if ds.Type() != container.Bool {
			return verrors.New(verrors.MalformedMetadata,
				"dataset of type '%s' cannot hold booleans", ds.Type())
		}
	case typeNumber:
		if !ds.Type().IsNumeric() || container.ExceedsFloatLimit(ds.Type(), 64) {
			return verrors.New(verrors.MalformedMetadata,
				"dataset of type '%s' cannot hold double-precision numbers", ds.Type())
		}
	case typeString:
		if ds.Type() != container.String {
			return verrors.New(verrors.MalformedMetadata,
				"dataset of type '%s' cannot hold strings", ds.Type())
		}
		return validateStringFormat(ds, format, opts)
	default:
		return verrors.New(verrors.MalformedMetadata, "unknown value type '%s'", declared)
	}
	if format != "" && format != formatNone {
		return verrors.New(verrors.MalformedMetadata, "format '%s' only applies to strings", format)
	}
	return nil
}

// validateStringFormat streams all values of a string dataset through
// the declared format's parser.
func validateStringFormat(ds *container.Dataset, format string, opts *Options) error {
	var parse func(string) error
	switch format {
	case "", formatNone:
		// streamed anyway so UTF-8 validity is still enforced
		parse = func(string) error { return nil }
	case formatDate:
		parse = func(v string) error {
			_, err := time.Parse("2006-01-02", v)
			return err
		}
	case formatDateTime:
		parse = func(v string) error {
			_, err := time.Parse(time.RFC3339, v)
			return err
		}
	default:
		return verrors.New(verrors.MalformedMetadata, "unknown string format '%s'", format)
	}

	placeholder, hasPlaceholder := ds.MissingPlaceholder()
	sentinel := ""
	if hasPlaceholder {
		s, ok := placeholder.(string)
		if !ok {
			return verrors.New(verrors.MalformedMetadata,
				"missing-value placeholder on a string dataset should itself be a string")
		}
		sentinel = s
	}

	pos := uint64(0)
	return ds.StreamStrings(opts.blockSize(), func(block []string) error {
		for _, v := range block {
			if !(hasPlaceholder && v == sentinel) {
				if err := parse(v); err != nil {
					return verrors.New(verrors.InvalidFormatValue,
						"value %d ('%s') does not follow the '%s' format", pos, v, format)
				}
			}
			pos++
		}
		return nil
	})
}

// streamCheckNames verifies a names dataset has the expected length
func checkNamesDataset(g *container.Group, expected uint64, opts *Options) error {
	if !g.HasDataset("names") {
		return nil
	}
	names, err := g.Dataset("names")
	if err != nil {
		return verrors.New(verrors.MalformedMetadata, "%v", err)
	}
	if names.Type() != container.String {
		return verrors.New(verrors.MalformedMetadata, "'names' should be a string dataset")
	}
	if names.Length() != expected {
		return verrors.New(verrors.CountMismatch,
			"'names' has length %d but should match the object length %d", names.Length(), expected)
	}
	return validateStringFormat(names, formatNone, opts)
}

// uintProduct multiplies extents, used by dense-mode partition checks
func uintProduct(dims []uint64) uint64 {
	n := uint64(1)
	for _, d := range dims {
		n *= d
	}
	return n
}

// formatPath renders a member path for error messages
func formatPath(role string, i int) string {
	return fmt.Sprintf("%s/%d", role, i)
}
