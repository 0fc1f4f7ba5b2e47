// Package metadata reads the OBJECT side-car that every serialized
// object carries at its directory root.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	verrors "github.com/shelfdata/shelfcheck/validator/errors"
)

// ObjectFile is the name of the per-object type marker and metadata side-car
const ObjectFile = "OBJECT"

// Object is the parsed OBJECT side-car: the declared type name plus the
// remaining top-level keys, typically one namespace object per applicable
// format. Immutable once constructed.
type Object struct {
	Type  string
	Other map[string]json.RawMessage
}

// Read parses dir/OBJECT. The document must be a JSON object with a
// string "type" field.
func Read(dir string) (*Object, error) {
	raw, err := os.ReadFile(filepath.Join(dir, ObjectFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, verrors.New(verrors.MissingRequiredFile, "no '%s' file at '%s'", ObjectFile, dir)
		}
		return nil, err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, verrors.New(verrors.MalformedMetadata, "malformed '%s' file at '%s': %v", ObjectFile, dir, err)
	}

	typeRaw, ok := all["type"]
	if !ok {
		return nil, verrors.New(verrors.MalformedMetadata, "missing 'type' property in '%s' at '%s'", ObjectFile, dir)
	}
	var typeName string
	if err := json.Unmarshal(typeRaw, &typeName); err != nil {
		return nil, verrors.New(verrors.MalformedMetadata, "'type' property in '%s' at '%s' is not a string", ObjectFile, dir)
	}
	delete(all, "type")

	return &Object{Type: typeName, Other: all}, nil
}

// Namespace returns the type-specific sub-object stored under name.
// Every format namespace is required to exist for an object of that type.
func (o *Object) Namespace(name string) (Namespace, error) {
	raw, ok := o.Other[name]
	if !ok {
		return nil, verrors.New(verrors.MalformedMetadata, "expected a '%s' property", name)
	}
	var ns map[string]interface{}
	if err := json.Unmarshal(raw, &ns); err != nil {
		return nil, verrors.New(verrors.MalformedMetadata, "'%s' property should be a JSON object", name)
	}
	return Namespace(ns), nil
}

// Namespace is one type-specific key-value block of the OBJECT document
type Namespace map[string]interface{}

// Version parses the mandatory "version" string of the namespace and
// checks its major component against the given supported major version.
func (ns Namespace) Version(supportedMajor int) (Version, error) {
	s, err := ns.String("version")
	if err != nil {
		return Version{}, err
	}
	v, perr := ParseVersion(s, true)
	if perr != nil {
		return Version{}, verrors.New(verrors.MalformedMetadata, "invalid 'version' string %q", s)
	}
	if v.Major != supportedMajor {
		return Version{}, verrors.New(verrors.UnsupportedVersion, "unsupported version '%s'", s)
	}
	return v, nil
}

// String fetches a mandatory string property
func (ns Namespace) String(key string) (string, error) {
	v, ok := ns[key]
	if !ok {
		return "", verrors.New(verrors.MalformedMetadata, "expected a '%s' property", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", verrors.New(verrors.MalformedMetadata, "'%s' property should be a string", key)
	}
	return s, nil
}

// OptionalString fetches an optional string property
func (ns Namespace) OptionalString(key string) (string, bool, error) {
	v, ok := ns[key]
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, verrors.New(verrors.MalformedMetadata, "'%s' property should be a string", key)
	}
	return s, true, nil
}

// Bool fetches an optional boolean property, returning def when absent
func (ns Namespace) Bool(key string, def bool) (bool, error) {
	v, ok := ns[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, verrors.New(verrors.MalformedMetadata, "'%s' property should be a boolean", key)
	}
	return b, nil
}

// Dimensions fetches a mandatory array of non-negative integers
func (ns Namespace) Dimensions(key string) ([]uint64, error) {
	v, ok := ns[key]
	if !ok {
		return nil, verrors.New(verrors.MalformedMetadata, "expected a '%s' property", key)
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil, verrors.New(verrors.MalformedMetadata, "'%s' property should be an array", key)
	}
	dims := make([]uint64, len(arr))
	for i, e := range arr {
		f, ok := e.(float64)
		if !ok || f < 0 || f != float64(uint64(f)) {
			return nil, verrors.New(verrors.MalformedMetadata, "'%s' property should contain non-negative integers", key)
		}
		dims[i] = uint64(f)
	}
	return dims, nil
}

// IsDirectory reports whether path exists and is a directory
func IsDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// CountNonHidden counts directory entries whose names do not start with
// '.' or '_'; such entries are invisible to collection size checks.
func CountNonHidden(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list '%s': %w", dir, err)
	}
	n := 0
	for _, e := range entries {
		name := e.Name()
		if len(name) > 0 && name[0] != '.' && name[0] != '_' {
			n++
		}
	}
	return n, nil
}
