package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// Field errors.
var (
	ErrNoField    = errors.New("no such field")
	ErrFieldValue = errors.New("invalid value for field")
)

// FieldMTime is the modification time field, excluded from Diff.
const FieldMTime = "mtime"

const tagName = "vantage"

// Field describes one tagged attribute of an object type.
type Field struct {
	// Name is the attribute name from the struct tag.
	Name string

	// State marks live state, excluded from configuration diffs.
	State bool

	index []int
	typ   reflect.Type
}

// Fields is the attribute table of one object type.
type Fields struct {
	typ    reflect.Type
	list   []Field
	byName map[string]Field
}

var fieldCache sync.Map // reflect.Type -> *Fields

// FieldsOf returns the attribute table for obj's type. obj must be a
// pointer to a struct.
func FieldsOf(obj Object) *Fields {
	t := reflect.TypeOf(obj).Elem()
	if f, ok := fieldCache.Load(t); ok {
		return f.(*Fields)
	}

	f := &Fields{typ: t, byName: make(map[string]Field)}
	for _, sf := range reflect.VisibleFields(t) {
		tag, ok := sf.Tag.Lookup(tagName)
		if !ok || sf.Anonymous {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		field := Field{
			Name:  name,
			State: opts == "state",
			index: sf.Index,
			typ:   sf.Type,
		}
		f.list = append(f.list, field)
		f.byName[name] = field
	}

	actual, _ := fieldCache.LoadOrStore(t, f)
	return actual.(*Fields)
}

// All returns every field in declaration order.
func (f *Fields) All() []Field {
	return f.list
}

// Names returns every field name in declaration order.
func (f *Fields) Names() []string {
	names := make([]string, len(f.list))
	for i, field := range f.list {
		names[i] = field.Name
	}
	return names
}

// Lookup returns the field called name.
func (f *Fields) Lookup(name string) (Field, bool) {
	field, ok := f.byName[name]
	return field, ok
}

// Get returns the value of the named field. Pointer fields are returned as
// is, so a nil pointer means unknown.
func (f *Fields) Get(obj Object, name string) (any, error) {
	field, ok := f.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoField, name)
	}
	return f.value(obj, field).Interface(), nil
}

// Set assigns v to the named field. For pointer fields v may be either the
// pointer type or the element type.
func (f *Fields) Set(obj Object, name string, v any) error {
	field, ok := f.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoField, name)
	}

	dst := f.value(obj, field)
	if v == nil {
		dst.SetZero()
		return nil
	}

	src := reflect.ValueOf(v)
	switch {
	case src.Type().AssignableTo(field.typ):
		dst.Set(src)
	case field.typ.Kind() == reflect.Pointer && src.Type().AssignableTo(field.typ.Elem()):
		p := reflect.New(field.typ.Elem())
		p.Elem().Set(src)
		dst.Set(p)
	default:
		return fmt.Errorf("%w: %s is %s, got %T", ErrFieldValue, name, field.typ, v)
	}
	return nil
}

// Equal reports whether the named field of obj holds v, under the same
// conversions as Set.
func (f *Fields) Equal(obj Object, name string, v any) (bool, error) {
	cur, err := f.Get(obj, name)
	if err != nil {
		return false, err
	}
	return Equal(cur, v), nil
}

func (f *Fields) value(obj Object, field Field) reflect.Value {
	return reflect.ValueOf(obj).Elem().FieldByIndex(field.index)
}

// Equal compares attribute values. Pointers compare by pointee, with nil
// equal only to nil; decimals compare numerically.
func Equal(a, b any) bool {
	a, aok := deref(a)
	b, bok := deref(b)
	if !aok || !bok {
		return aok == bok
	}

	if da, ok := a.(decimal.Decimal); ok {
		db, ok := b.(decimal.Decimal)
		return ok && da.Equal(db)
	}
	return reflect.DeepEqual(a, b)
}

// deref follows pointers. It reports false for nil.
func deref(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	return rv.Interface(), true
}

// Diff returns the names of the configuration fields that differ between
// two objects of the same type. State fields and mtime are never reported.
func Diff(old, cur Object) []string {
	f := FieldsOf(old)
	if reflect.TypeOf(cur).Elem() != f.typ {
		return f.configNames()
	}

	var changed []string
	for _, field := range f.list {
		if field.State || field.Name == FieldMTime {
			continue
		}
		if !Equal(f.value(old, field).Interface(), f.value(cur, field).Interface()) {
			changed = append(changed, field.Name)
		}
	}
	return changed
}

func (f *Fields) configNames() []string {
	var names []string
	for _, field := range f.list {
		if !field.State && field.Name != FieldMTime {
			names = append(names, field.Name)
		}
	}
	return names
}

// Clone returns a shallow copy of obj. Slice and pointer fields are shared
// with obj, so the copy must only be changed through Set or Copy, which
// replace field values instead of writing through them.
func Clone[T Object](obj T) T {
	v := reflect.ValueOf(obj)
	c := reflect.New(v.Type().Elem())
	c.Elem().Set(v.Elem())
	return c.Interface().(T)
}

// Copy assigns the named field of src to the same field of dst.
func Copy(dst, src Object, name string) error {
	v, err := FieldsOf(src).Get(src, name)
	if err != nil {
		return err
	}
	return FieldsOf(dst).Set(dst, name, v)
}
