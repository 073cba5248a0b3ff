package repoconfig

import (
	"fmt"
	"strconv"
)

// PropertyType enumerates the types a declared property's value may hold.
type PropertyType int

const (
	// TypeString is a property whose value is stored verbatim.
	TypeString PropertyType = iota
	// TypeInt is a property parsed with strconv.Atoi.
	TypeInt
	// TypeInt64 is a property parsed with strconv.ParseInt (base 10).
	TypeInt64
	// TypeBool is a property parsed with strconv.ParseBool.
	TypeBool
)

type propertyDef struct {
	typ     PropertyType
	builtin any
}

// PropertySet is an enumerated bag of named, typed configuration properties
// with defaults, matching spec §4.3: declaring a property fixes its type and
// default; assigning a value parses and validates against that type, with a
// ValueConvertError naming the offending property and text on failure.
type PropertySet struct {
	defs   map[string]propertyDef
	values map[string]any
}

// NewPropertySet returns an empty property set.
func NewPropertySet() *PropertySet {
	return &PropertySet{
		defs:   make(map[string]propertyDef),
		values: make(map[string]any),
	}
}

// Declare registers a property with its type and default value.
func (p *PropertySet) Declare(name string, typ PropertyType, def any) {
	p.defs[name] = propertyDef{typ: typ, builtin: def}
	p.values[name] = def
}

// Set parses text according to the declared type of name and stores the
// result. It returns a *ValueConvertError if name is undeclared or text
// cannot be converted.
func (p *PropertySet) Set(name, text string) error {
	def, ok := p.defs[name]
	if !ok {
		return &ValueConvertError{Property: name, Value: text, Reason: "unknown property"}
	}

	switch def.typ {
	case TypeString:
		p.values[name] = text
	case TypeInt:
		v, err := strconv.Atoi(text)
		if err != nil {
			return &ValueConvertError{Property: name, Value: text, Reason: "not a valid integer"}
		}
		p.values[name] = v
	case TypeInt64:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return &ValueConvertError{Property: name, Value: text, Reason: "not a valid 64-bit integer"}
		}
		p.values[name] = v
	case TypeBool:
		v, err := strconv.ParseBool(text)
		if err != nil {
			return &ValueConvertError{Property: name, Value: text, Reason: "not a valid boolean"}
		}
		p.values[name] = v
	default:
		return &ValueConvertError{Property: name, Value: text, Reason: "unsupported property type"}
	}
	return nil
}

// Get returns the current value of name (which may be its default), or
// false if name was never declared.
func (p *PropertySet) Get(name string) (any, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Int returns the int value of name, panicking if name is not a TypeInt
// property — a programmer error, not a data error.
func (p *PropertySet) Int(name string) int {
	v, ok := p.values[name]
	if !ok {
		panic(fmt.Sprintf("repoconfig: property %q not declared", name))
	}
	i, ok := v.(int)
	if !ok {
		panic(fmt.Sprintf("repoconfig: property %q is not an int", name))
	}
	return i
}

// Int64 returns the int64 value of name.
func (p *PropertySet) Int64(name string) int64 {
	v, ok := p.values[name]
	if !ok {
		panic(fmt.Sprintf("repoconfig: property %q not declared", name))
	}
	i, ok := v.(int64)
	if !ok {
		panic(fmt.Sprintf("repoconfig: property %q is not an int64", name))
	}
	return i
}

// String returns the string value of name.
func (p *PropertySet) String(name string) string {
	v, ok := p.values[name]
	if !ok {
		panic(fmt.Sprintf("repoconfig: property %q not declared", name))
	}
	s, ok := v.(string)
	if !ok {
		panic(fmt.Sprintf("repoconfig: property %q is not a string", name))
	}
	return s
}

// Bool returns the bool value of name.
func (p *PropertySet) Bool(name string) bool {
	v, ok := p.values[name]
	if !ok {
		panic(fmt.Sprintf("repoconfig: property %q not declared", name))
	}
	b, ok := v.(bool)
	if !ok {
		panic(fmt.Sprintf("repoconfig: property %q is not a bool", name))
	}
	return b
}
