package protocol

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Decode parses a JSON-decoded value (as produced by encoding/json into
// any) against the named schema and returns a pointer to a freshly
// allocated struct of the schema's prototype type.
func (r *Registry) Decode(name string, data any) (any, error) {
	if err := r.seal(); err != nil {
		return nil, err
	}
	s, ok := r.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSchema, name)
	}
	dst := reflect.New(s.proto)
	if err := r.decodeStruct(s, data, dst.Elem()); err != nil {
		return nil, err
	}
	return dst.Interface(), nil
}

func (r *Registry) decodeStruct(s *Schema, data any, dst reflect.Value) error {
	obj, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("%s: %w: expected object, got %T", s.Name, ErrTypeMismatch, data)
	}
	for i := range s.Fields {
		f := &s.Fields[i]
		raw, present := obj[f.Wire]
		if !present {
			if f.Required {
				return fmt.Errorf("%s.%s: %w", s.Name, f.Wire, ErrMissingField)
			}
			continue
		}
		if raw == nil {
			if !f.Nullable {
				return fmt.Errorf("%s.%s: %w", s.Name, f.Wire, ErrUnexpectedNull)
			}
			continue
		}
		if err := r.decodeValue(f.Type, raw, dst.FieldByIndex(f.index)); err != nil {
			return fmt.Errorf("%s.%s: %w", s.Name, f.Wire, err)
		}
	}
	return nil
}

func (r *Registry) decodeValue(t Type, raw any, dst reflect.Value) error {
	switch tt := t.(type) {
	case Prim:
		return decodePrim(tt.Kind, raw, dst)
	case Ref:
		s := r.schemas[tt.Name]
		v := reflect.New(s.proto)
		if err := r.decodeStruct(s, raw, v.Elem()); err != nil {
			return err
		}
		dst.Set(v)
		return nil
	case List:
		items, ok := raw.([]any)
		if !ok {
			return fmt.Errorf("%w: expected array, got %T", ErrTypeMismatch, raw)
		}
		out := reflect.MakeSlice(dst.Type(), len(items), len(items))
		for i, item := range items {
			if item == nil {
				continue
			}
			if err := r.decodeValue(tt.Elem, item, out.Index(i)); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		dst.Set(out)
		return nil
	case Map:
		obj, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: expected object, got %T", ErrTypeMismatch, raw)
		}
		out := reflect.MakeMapWithSize(dst.Type(), len(obj))
		for k, item := range obj {
			// Null table entries mean the slot is vacant.
			if item == nil {
				continue
			}
			var key reflect.Value
			if tt.Key == KindInt {
				n, err := strconv.Atoi(k)
				if err != nil {
					return fmt.Errorf("%w: map key %q is not an int", ErrTypeMismatch, k)
				}
				key = reflect.ValueOf(n)
			} else {
				key = reflect.ValueOf(k)
			}
			val := reflect.New(dst.Type().Elem()).Elem()
			if err := r.decodeValue(tt.Elem, item, val); err != nil {
				return fmt.Errorf("[%s]: %w", k, err)
			}
			out.SetMapIndex(key, val)
		}
		dst.Set(out)
		return nil
	case OneOf:
		for _, alt := range tt.Alts {
			gt, err := alt.goType(r)
			if err != nil {
				return err
			}
			v := reflect.New(gt).Elem()
			if err := r.decodeValue(alt, raw, v); err == nil {
				dst.Set(v)
				return nil
			}
		}
		return fmt.Errorf("%w: value %v", ErrNoCandidate, raw)
	}
	return fmt.Errorf("invalid schema type %T", t)
}

// decodePrim assigns one JSON scalar. encoding/json hands all numbers over
// as float64, so ints are accepted only when the value is integral.
func decodePrim(k Kind, raw any, dst reflect.Value) error {
	switch k {
	case KindAny:
		dst.Set(reflect.ValueOf(raw))
		return nil
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("%w: expected string, got %T", ErrTypeMismatch, raw)
		}
		dst.SetString(s)
		return nil
	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("%w: expected bool, got %T", ErrTypeMismatch, raw)
		}
		dst.SetBool(b)
		return nil
	case KindFloat:
		f, ok := raw.(float64)
		if !ok {
			return fmt.Errorf("%w: expected number, got %T", ErrTypeMismatch, raw)
		}
		dst.SetFloat(f)
		return nil
	case KindInt:
		f, ok := raw.(float64)
		if !ok || f != math.Trunc(f) {
			return fmt.Errorf("%w: expected integer, got %v (%T)", ErrTypeMismatch, raw, raw)
		}
		dst.SetInt(int64(f))
		return nil
	}
	return fmt.Errorf("invalid primitive kind %v", k)
}
