package validator

import "sync"

// The default dispatch tables. Built-in types register themselves at
// startup; application-defined types join through the Register
// functions before the first Validate call.
var (
	registryMu        sync.RWMutex
	defaultValidate   = make(map[string]ValidateFn)
	defaultHeight     = make(map[string]HeightFn)
	defaultDimensions = make(map[string]DimensionsFn)
)

// registerDefault wires a built-in type into all three tables; nil
// entries mean the concept does not apply to the type (e.g. height of
// an opaque file).
func registerDefault(name string, v ValidateFn, h HeightFn, d DimensionsFn) {
	if v != nil {
		defaultValidate[name] = v
	}
	if h != nil {
		defaultHeight[name] = h
	}
	if d != nil {
		defaultDimensions[name] = d
	}
}

// RegisterValidate adds (or replaces) the validator for a type
func RegisterValidate(name string, fn ValidateFn) {
	registryMu.Lock()
	defer registryMu.Unlock()
	defaultValidate[name] = fn
}

// RegisterHeight adds (or replaces) the height function for a type
func RegisterHeight(name string, fn HeightFn) {
	registryMu.Lock()
	defer registryMu.Unlock()
	defaultHeight[name] = fn
}

// RegisterDimensions adds (or replaces) the dimensions function for a type
func RegisterDimensions(name string, fn DimensionsFn) {
	registryMu.Lock()
	defer registryMu.Unlock()
	defaultDimensions[name] = fn
}

// lookupValidate resolves a validator: per-call override first, then
// the default table.
func lookupValidate(name string, opts *Options) (ValidateFn, bool) {
	if fn, ok := opts.ValidateOverrides[name]; ok {
		return fn, true
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := defaultValidate[name]
	return fn, ok
}

func lookupHeight(name string, opts *Options) (HeightFn, bool) {
	if fn, ok := opts.HeightOverrides[name]; ok {
		return fn, true
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := defaultHeight[name]
	return fn, ok
}

func lookupDimensions(name string, opts *Options) (DimensionsFn, bool) {
	if fn, ok := opts.DimensionsOverrides[name]; ok {
		return fn, true
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := defaultDimensions[name]
	return fn, ok
}
