// Package rbxvalue implements the closed set of typed property values that
// instances in the tree can hold. The real domain schema supports a much
// larger type universe; this is the subset needed to exercise the value
// resolver and diff engine end to end.
package rbxvalue

import "fmt"

// Type names a property value kind. These match the "Type" tag used in
// project manifest $properties entries.
type Type string

const (
	TypeString    Type = "String"
	TypeBool      Type = "Bool"
	TypeInt       Type = "Int"
	TypeFloat     Type = "Float"
	TypeVector3   Type = "Vector3"
	TypeColor3    Type = "Color3"
	TypeEnumValue Type = "EnumValue"
	TypeRef       Type = "Ref"
)

// Value is a typed property value. The zero Value is not valid; use one of
// the constructors below.
type Value struct {
	typ     Type
	str     string
	boolean bool
	integer int64
	float   float64
	vec3    [3]float64
	ref     string
}

func String(s string) Value { return Value{typ: TypeString, str: s} }
func Bool(b bool) Value     { return Value{typ: TypeBool, boolean: b} }
func Int(i int64) Value     { return Value{typ: TypeInt, integer: i} }
func Float(f float64) Value { return Value{typ: TypeFloat, float: f} }
func Vector3(x, y, z float64) Value {
	return Value{typ: TypeVector3, vec3: [3]float64{x, y, z}}
}
func Color3(r, g, b float64) Value {
	return Value{typ: TypeColor3, vec3: [3]float64{r, g, b}}
}
func EnumValue(v int64) Value { return Value{typ: TypeEnumValue, integer: v} }

// Ref stores a dangling reference to another instance by its textual id.
// Cross-instance reference resolution is out of scope; the literal string
// survives diff/patch/round-trip untouched.
func Ref(id string) Value { return Value{typ: TypeRef, ref: id} }

func (v Value) Type() Type { return v.typ }

func (v Value) AsString() (string, bool) {
	if v.typ != TypeString {
		return "", false
	}
	return v.str, true
}

func (v Value) AsBool() (bool, bool) {
	if v.typ != TypeBool {
		return false, false
	}
	return v.boolean, true
}

func (v Value) AsInt() (int64, bool) {
	if v.typ != TypeInt && v.typ != TypeEnumValue {
		return 0, false
	}
	return v.integer, true
}

func (v Value) AsFloat() (float64, bool) {
	if v.typ != TypeFloat {
		return 0, false
	}
	return v.float, true
}

func (v Value) AsVector3() ([3]float64, bool) {
	if v.typ != TypeVector3 && v.typ != TypeColor3 {
		return [3]float64{}, false
	}
	return v.vec3, true
}

func (v Value) AsRef() (string, bool) {
	if v.typ != TypeRef {
		return "", false
	}
	return v.ref, true
}

// Equal compares two values by structural equality, as required by the diff
// engine's property comparison rule.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeString:
		return v.str == other.str
	case TypeBool:
		return v.boolean == other.boolean
	case TypeInt, TypeEnumValue:
		return v.integer == other.integer
	case TypeFloat:
		return v.float == other.float
	case TypeVector3, TypeColor3:
		return v.vec3 == other.vec3
	case TypeRef:
		return v.ref == other.ref
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.typ {
	case TypeString:
		return fmt.Sprintf("String(%q)", v.str)
	case TypeBool:
		return fmt.Sprintf("Bool(%v)", v.boolean)
	case TypeInt:
		return fmt.Sprintf("Int(%d)", v.integer)
	case TypeFloat:
		return fmt.Sprintf("Float(%g)", v.float)
	case TypeVector3:
		return fmt.Sprintf("Vector3(%g, %g, %g)", v.vec3[0], v.vec3[1], v.vec3[2])
	case TypeColor3:
		return fmt.Sprintf("Color3(%g, %g, %g)", v.vec3[0], v.vec3[1], v.vec3[2])
	case TypeEnumValue:
		return fmt.Sprintf("EnumValue(%d)", v.integer)
	case TypeRef:
		return fmt.Sprintf("Ref(%s)", v.ref)
	default:
		return "Value(invalid)"
	}
}
