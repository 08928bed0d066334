package table

import (
	"fmt"
	"strings"
)

type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "string"
	}
}

// Field describes one column of a record type. Value returns the primitive
// held by the record: a string, any Go integer or float, or a time.Time.
type Field[T any] struct {
	Name  string
	Kind  Kind
	Value func(T) any
}

// Schema is the statically declared shape of a collection. Search and sort
// only ever look at the fields listed here.
type Schema[T any] struct {
	Collection string
	IDField    string
	Fields     []Field[T]
}

func (s Schema[T]) Field(name string) (Field[T], bool) {
	name = strings.TrimSpace(name)
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return Field[T]{}, false
}

func (s Schema[T]) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}

	return names
}

// ID returns the string form of the record's identifier field.
func (s Schema[T]) ID(record T) string {
	f, ok := s.Field(s.IDField)
	if !ok {
		return ""
	}

	return formatValue(f.Value(record))
}

// Row renders every field of record in schema order, in the same string form
// search matches against.
func (s Schema[T]) Row(record T) []string {
	row := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		row = append(row, formatValue(f.Value(record)))
	}

	return row
}

func (s Schema[T]) Check() error {
	if strings.TrimSpace(s.Collection) == "" {
		return fmt.Errorf("schema collection cannot be empty")
	}

	if len(s.Fields) == 0 {
		return fmt.Errorf("schema %s has no fields", s.Collection)
	}

	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" || f.Value == nil {
			return fmt.Errorf("schema %s has an incomplete field", s.Collection)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("schema %s declares field %q twice", s.Collection, f.Name)
		}
		seen[f.Name] = struct{}{}
	}

	if _, ok := seen[s.IDField]; !ok {
		return fmt.Errorf("schema %s: id field %q is not declared", s.Collection, s.IDField)
	}

	return nil
}
