package container

// Type is the declared element type of a dataset
type Type string

const (
	Int8    Type = "int8"
	Int16   Type = "int16"
	Int32   Type = "int32"
	Int64   Type = "int64"
	Uint8   Type = "uint8"
	Uint16  Type = "uint16"
	Uint32  Type = "uint32"
	Uint64  Type = "uint64"
	Float32 Type = "float32"
	Float64 Type = "float64"
	Bool    Type = "bool"
	String  Type = "string"
)

// IsInteger reports whether t is a fixed-width integer type
func (t Type) IsInteger() bool {
	switch t {
	case Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

// IsFloat reports whether t is a floating-point type
func (t Type) IsFloat() bool {
	return t == Float32 || t == Float64
}

// IsNumeric reports whether t is integer or floating-point
func (t Type) IsNumeric() bool {
	return t.IsInteger() || t.IsFloat()
}

// width returns the payload size in bytes of one element, or 0 for strings
func (t Type) width() int {
	switch t {
	case Int8, Uint8, Bool:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	}
	return 0
}

// signed reports whether an integer type carries a sign bit
func (t Type) signed() bool {
	switch t {
	case Int8, Int16, Int32, Int64:
		return true
	}
	return false
}

// bits returns the bit width of a fixed-width type
func (t Type) bits() int {
	return t.width() * 8
}

// ExceedsIntegerLimit reports whether values of type t can fall outside
// the representable range of a 'bits'-wide integer of the given
// signedness. Used by validators to enforce declared storage widths.
func ExceedsIntegerLimit(t Type, bits int, signed bool) bool {
	if !t.IsInteger() {
		return true
	}
	if t.signed() == signed {
		return t.bits() > bits
	}
	if signed {
		// unsigned storage checked against a signed limit loses one bit
		return t.bits() >= bits
	}
	// signed storage can hold negatives no unsigned limit accepts
	return true
}

// ExceedsFloatLimit reports whether values of type t can exceed the
// precision of a 'bits'-wide IEEE float.
func ExceedsFloatLimit(t Type, bits int) bool {
	if t.IsInteger() {
		// every int64 is not exactly representable in float64, but the
		// stored range still fits; only widths above the mantissa matter
		return t.bits() > 32 && bits <= 32
	}
	if !t.IsFloat() {
		return true
	}
	return t.bits() > bits
}

func knownType(t Type) bool {
	return t == String || t.width() > 0
}
