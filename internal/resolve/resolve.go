// Package resolve implements the Value Resolver: coercion of loosely-typed
// manifest property values into typed rbxvalue.Values, using an injected
// reflection schema (class name -> property name -> type). The schema is
// external data, never compiled into this package, so new classes and
// properties don't require a code change here.
package resolve

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jra3/instancesync/internal/manifest"
	"github.com/jra3/instancesync/internal/rbxvalue"
)

// Schema maps class name -> property name -> declared type, used to resolve
// untagged $properties values.
type Schema map[string]map[string]rbxvalue.Type

// Resolver turns a manifest.RawValue into a typed rbxvalue.Value for a given
// class/property pair. Schema and CachedSchema both implement it, so the
// snapshot pipeline can be handed either without knowing which.
type Resolver interface {
	Resolve(className, propertyName string, raw manifest.RawValue) (rbxvalue.Value, error)
}

// LoadSchemaFile reads a reflection schema from a JSON file shaped
// { "ClassName": { "PropertyName": "TypeName" } }. The schema is external
// data injected at construction time: this package never compiles a class
// list in.
func LoadSchemaFile(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", path, err)
	}
	var raw map[string]map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("load schema %s: %w", path, err)
	}
	schema := make(Schema, len(raw))
	for className, props := range raw {
		typed := make(map[string]rbxvalue.Type, len(props))
		for propName, typeName := range props {
			typed[propName] = rbxvalue.Type(typeName)
		}
		schema[className] = typed
	}
	return schema, nil
}

// PropertyType looks up the declared type of className.propertyName, if
// any.
func (s Schema) PropertyType(className, propertyName string) (rbxvalue.Type, bool) {
	props, ok := s[className]
	if !ok {
		return "", false
	}
	t, ok := props[propertyName]
	return t, ok
}

// UnknownPropertyError is returned when an untagged value names a property
// the schema doesn't know about.
type UnknownPropertyError struct {
	ClassName, PropertyName string
}

func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("unknown property %s.%s", e.ClassName, e.PropertyName)
}

// TypeMismatchError is returned when a value's JSON shape doesn't match the
// type it was declared (or tagged) as.
type TypeMismatchError struct {
	Type rbxvalue.Type
	Err  error
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("value does not match type %s: %v", e.Type, e.Err)
}

func (e *TypeMismatchError) Unwrap() error { return e.Err }

// Resolve coerces a manifest.RawValue into a typed rbxvalue.Value. If raw is
// tagged, its Type wins outright. Otherwise, className.propertyName is
// looked up in the schema.
func (s Schema) Resolve(className, propertyName string, raw manifest.RawValue) (rbxvalue.Value, error) {
	typ := rbxvalue.Type(raw.TypeName)
	if !raw.Tagged {
		declared, ok := s.PropertyType(className, propertyName)
		if !ok {
			return rbxvalue.Value{}, &UnknownPropertyError{className, propertyName}
		}
		typ = declared
	}
	return construct(typ, raw.Raw)
}

func construct(typ rbxvalue.Type, raw json.RawMessage) (rbxvalue.Value, error) {
	switch typ {
	case rbxvalue.TypeString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return rbxvalue.Value{}, &TypeMismatchError{typ, err}
		}
		return rbxvalue.String(s), nil

	case rbxvalue.TypeBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return rbxvalue.Value{}, &TypeMismatchError{typ, err}
		}
		return rbxvalue.Bool(b), nil

	case rbxvalue.TypeInt:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return rbxvalue.Value{}, &TypeMismatchError{typ, err}
		}
		return rbxvalue.Int(int64(f)), nil

	case rbxvalue.TypeFloat:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return rbxvalue.Value{}, &TypeMismatchError{typ, err}
		}
		return rbxvalue.Float(f), nil

	case rbxvalue.TypeEnumValue:
		var i int64
		if err := json.Unmarshal(raw, &i); err != nil {
			return rbxvalue.Value{}, &TypeMismatchError{typ, err}
		}
		return rbxvalue.EnumValue(i), nil

	case rbxvalue.TypeRef:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return rbxvalue.Value{}, &TypeMismatchError{typ, err}
		}
		return rbxvalue.Ref(s), nil

	case rbxvalue.TypeVector3, rbxvalue.TypeColor3:
		v, err := constructVec3(raw)
		if err != nil {
			return rbxvalue.Value{}, &TypeMismatchError{typ, err}
		}
		if typ == rbxvalue.TypeColor3 {
			return rbxvalue.Color3(v[0], v[1], v[2]), nil
		}
		return rbxvalue.Vector3(v[0], v[1], v[2]), nil

	default:
		return rbxvalue.Value{}, fmt.Errorf("unsupported property type %q", typ)
	}
}

func constructVec3(raw json.RawMessage) ([3]float64, error) {
	var arr [3]float64
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr, nil
	}

	var obj struct{ X, Y, Z, R, G, B float64 }
	if err := json.Unmarshal(raw, &obj); err != nil {
		return arr, err
	}
	if obj.X != 0 || obj.Y != 0 || obj.Z != 0 {
		return [3]float64{obj.X, obj.Y, obj.Z}, nil
	}
	return [3]float64{obj.R, obj.G, obj.B}, nil
}
