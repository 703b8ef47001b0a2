package models

import (
	"database/sql/driver"
	"fmt"
)

// enumSet maps a closed enumeration onto the strings stored in the database.
// Index 0 is the unset value.
type enumSet[T ~uint8] struct {
	kind  string
	names []string
	// nullable columns store the unset value as NULL.
	nullable bool
	// lenient enums read unknown stored text as unset instead of failing.
	lenient bool
}

func (s enumSet[T]) valid(v T) bool {
	return v > 0 && int(v) < len(s.names)
}

func (s enumSet[T]) name(v T) string {
	if int(v) < len(s.names) {
		return s.names[v]
	}
	return fmt.Sprintf("%s(%d)", s.kind, v)
}

func (s enumSet[T]) parse(str string) (T, error) {
	for i := 1; i < len(s.names); i++ {
		if s.names[i] == str {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("invalid %s %q", s.kind, str)
}

func (s enumSet[T]) value(v T) (driver.Value, error) {
	if v == 0 && s.nullable {
		return nil, nil
	}
	if !s.valid(v) {
		return nil, fmt.Errorf("invalid %s %d", s.kind, v)
	}
	return s.names[v], nil
}

func (s enumSet[T]) scan(src any) (T, error) {
	var str string
	switch x := src.(type) {
	case nil:
		return 0, nil
	case string:
		str = x
	case []byte:
		str = string(x)
	default:
		return 0, fmt.Errorf("cannot scan %T into %s", src, s.kind)
	}
	v, err := s.parse(str)
	if err != nil && s.lenient {
		return 0, nil
	}
	return v, err
}

func (s enumSet[T]) values() []string {
	return append([]string(nil), s.names[1:]...)
}
