package protocol

import (
	"fmt"
	"reflect"
	"sync"
)

// A Type describes the expected shape of one JSON value. The concrete
// implementations are Prim, Ref, List, Map and OneOf.
type Type interface {
	// goType reports the Go type this Type decodes into, resolving schema
	// references through reg. It is also used to validate struct fields at
	// registration time.
	goType(reg *Registry) (reflect.Type, error)
}

// Kind enumerates the primitive JSON value classes.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindAny
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindAny:
		return "any"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Prim matches a single JSON scalar.
type Prim struct{ Kind Kind }

// Ref matches an object described by another registered schema. Forward
// references are allowed; they resolve when the registry is sealed.
type Ref struct{ Name string }

// List matches a JSON array with homogeneous elements.
type List struct{ Elem Type }

// Map matches a JSON object used as a lookup table. Key must be KindString
// or KindInt; int keys arrive as decimal strings and are converted.
type Map struct {
	Key  Kind
	Elem Type
}

// OneOf matches the first alternative the value decodes as. The destination
// struct field must be of type any.
type OneOf struct{ Alts []Type }

var (
	typString = reflect.TypeOf("")
	typInt    = reflect.TypeOf(int(0))
	typFloat  = reflect.TypeOf(float64(0))
	typBool   = reflect.TypeOf(false)
	typAny    = reflect.TypeOf((*any)(nil)).Elem()
)

func (p Prim) goType(*Registry) (reflect.Type, error) {
	switch p.Kind {
	case KindString:
		return typString, nil
	case KindInt:
		return typInt, nil
	case KindFloat:
		return typFloat, nil
	case KindBool:
		return typBool, nil
	case KindAny:
		return typAny, nil
	}
	return nil, fmt.Errorf("invalid primitive kind %v", p.Kind)
}

func (r Ref) goType(reg *Registry) (reflect.Type, error) {
	s, ok := reg.schemas[r.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSchema, r.Name)
	}
	return reflect.PointerTo(s.proto), nil
}

func (l List) goType(reg *Registry) (reflect.Type, error) {
	elem, err := l.Elem.goType(reg)
	if err != nil {
		return nil, err
	}
	return reflect.SliceOf(elem), nil
}

func (m Map) goType(reg *Registry) (reflect.Type, error) {
	var key reflect.Type
	switch m.Key {
	case KindString:
		key = typString
	case KindInt:
		key = typInt
	default:
		return nil, fmt.Errorf("map key must be string or int, got %v", m.Key)
	}
	elem, err := m.Elem.goType(reg)
	if err != nil {
		return nil, err
	}
	return reflect.MapOf(key, elem), nil
}

func (o OneOf) goType(reg *Registry) (reflect.Type, error) {
	if len(o.Alts) < 2 {
		return nil, fmt.Errorf("oneof needs at least two alternatives")
	}
	for _, alt := range o.Alts {
		if _, nested := alt.(OneOf); nested {
			return nil, fmt.Errorf("oneof alternatives must not nest")
		}
		if _, err := alt.goType(reg); err != nil {
			return nil, err
		}
	}
	return typAny, nil
}

// Field binds one wire key to one struct field.
type Field struct {
	Wire     string
	Go       string
	Type     Type
	Required bool
	Nullable bool

	index []int // struct field index, filled when the registry seals
}

// req declares a required, non-nullable field.
func req(wire, goName string, t Type) Field {
	return Field{Wire: wire, Go: goName, Type: t, Required: true}
}

// reqn declares a required field whose value may be null.
func reqn(wire, goName string, t Type) Field {
	return Field{Wire: wire, Go: goName, Type: t, Required: true, Nullable: true}
}

// opt declares an optional, non-nullable field.
func opt(wire, goName string, t Type) Field {
	return Field{Wire: wire, Go: goName, Type: t, Required: false}
}

// optn declares an optional field whose value may be null.
func optn(wire, goName string, t Type) Field {
	return Field{Wire: wire, Go: goName, Type: t, Required: false, Nullable: true}
}

// Schema describes one object type on the wire and the struct it decodes
// into.
type Schema struct {
	Name   string
	Fields []Field

	proto reflect.Type
}

// Registry holds all schemas of one protocol dialect. Registrations happen
// at package init; the registry seals itself on first use, resolving forward
// references and binding fields to struct offsets.
type Registry struct {
	schemas map[string]*Schema

	sealOnce sync.Once
	sealErr  error
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register adds a schema decoding into the struct type of prototype.
// prototype must be a struct value or pointer to one. Register panics on
// re-registration or a non-struct prototype; deeper consistency checks run
// when the registry seals.
func (r *Registry) Register(name string, prototype any, fields ...Field) {
	t := reflect.TypeOf(prototype)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("protocol: schema %q prototype must be a struct, got %T", name, prototype))
	}
	if _, dup := r.schemas[name]; dup {
		panic(fmt.Sprintf("protocol: schema %q registered twice", name))
	}
	r.schemas[name] = &Schema{Name: name, Fields: fields, proto: t}
}

// Has reports whether a schema with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.schemas[name]
	return ok
}

// seal resolves references and verifies that every field exists on its
// prototype with a compatible Go type.
func (r *Registry) seal() error {
	r.sealOnce.Do(func() {
		for _, s := range r.schemas {
			for i := range s.Fields {
				f := &s.Fields[i]
				sf, ok := s.proto.FieldByName(f.Go)
				if !ok {
					r.sealErr = fmt.Errorf("schema %s: struct %s has no field %q", s.Name, s.proto.Name(), f.Go)
					return
				}
				f.index = sf.Index
				want, err := f.Type.goType(r)
				if err != nil {
					r.sealErr = fmt.Errorf("schema %s field %s: %w", s.Name, f.Wire, err)
					return
				}
				if !assignableField(want, sf.Type) {
					r.sealErr = fmt.Errorf("schema %s field %s: struct field %s is %v, schema wants %v",
						s.Name, f.Wire, f.Go, sf.Type, want)
					return
				}
			}
		}
	})
	return r.sealErr
}

// assignableField reports whether a decoded value of type want can land in a
// struct field of type have. Named integer types (enums) are allowed for int
// fields; everything else must match exactly.
func assignableField(want, have reflect.Type) bool {
	if want == have {
		return true
	}
	if want == typAny {
		return have == typAny
	}
	if want == typInt {
		switch have.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return true
		}
	}
	return false
}
