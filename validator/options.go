package validator

import (
	"github.com/shelfdata/shelfcheck/container"
	"github.com/shelfdata/shelfcheck/delayed"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

// ValidateFn checks one object directory
type ValidateFn func(path string, meta *metadata.Object, opts *Options) error

// HeightFn reports the extent of an object's first dimension
type HeightFn func(path string, meta *metadata.Object, opts *Options) (uint64, error)

// DimensionsFn reports an object's full extents
type DimensionsFn func(path string, meta *metadata.Object, opts *Options) ([]uint64, error)

// StrictCheck is a caller-supplied deep check for one opaque file
// format, run after the default signature check passes.
type StrictCheck func(path string) error

// Options carries per-call configuration through the whole recursion.
// One instance must not be shared across concurrent validations: some
// validators install transient state (the delayed seed resolver) that
// is rolled back before they return, and that dance is not
// synchronized.
type Options struct {
	// BlockSize is the element count per streaming block; zero means
	// the container default.
	BlockSize int

	// Parallel lets the container layer read the next payload block
	// ahead of the callback processing the current one. It introduces
	// no concurrency in the validator itself.
	Parallel bool

	// Per-type overrides consulted before the default registries
	ValidateOverrides   map[string]ValidateFn
	HeightOverrides     map[string]HeightFn
	DimensionsOverrides map[string]DimensionsFn

	// Additive overlays on the default type hierarchy. CustomDerivedFrom
	// maps a base type to extra derived types; CustomInterfaces maps an
	// interface name to extra satisfying types. Overlays need not be
	// transitively closed.
	CustomDerivedFrom map[string]map[string]bool
	CustomInterfaces  map[string]map[string]bool

	// StrictChecks holds deep checks per opaque file format name
	StrictChecks map[string]StrictCheck

	// PostValidate, when set, runs after every successful type-specific
	// validation.
	PostValidate func(path string, meta *metadata.Object, opts *Options) error

	delayedChecker *delayed.Checker
}

// NewOptions returns an Options with all defaults
func NewOptions() *Options {
	return &Options{}
}

// parallel reports whether read-ahead streaming was requested
func (o *Options) parallel() bool {
	return o != nil && o.Parallel
}

// blockSize resolves the effective streaming block size
func (o *Options) blockSize() int {
	if o == nil || o.BlockSize <= 0 {
		return container.DefaultBlockSize
	}
	return o.BlockSize
}

// DelayedChecker returns the per-call delayed graph checker, creating
// it on first use so unrelated validations pay nothing.
func (o *Options) DelayedChecker() *delayed.Checker {
	if o.delayedChecker == nil {
		o.delayedChecker = delayed.NewChecker()
	}
	return o.delayedChecker
}

// ensure returns opts itself, or a fresh default instance when nil, so
// every internal call site can dereference without nil checks.
func ensure(opts *Options) *Options {
	if opts == nil {
		return NewOptions()
	}
	return opts
}
