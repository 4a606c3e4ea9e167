package collection

// Field binds a key of a loosely typed map to a field of T. Set reports
// whether the value had a usable type and was stored.
type Field[T any] struct {
	Name string
	Set  func(dst *T, v any) bool
}

// Shape describes how to build a fresh T and which fields it accepts.
type Shape[T any] struct {
	New    func() T
	Fields []Field[T]
}

// Rebuild returns a new T with every declared field that src carries copied
// over. Keys src has but the shape does not declare are ignored, as are
// values whose type does not fit the field.
func (s Shape[T]) Rebuild(src map[string]any) T {
	var out T
	if s.New != nil {
		out = s.New()
	}
	for _, f := range s.Fields {
		v, ok := src[f.Name]
		if !ok {
			continue
		}
		f.Set(&out, v)
	}
	return out
}

// Names lists the declared field names in order.
func (s Shape[T]) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// StringField maps a string value through set.
func StringField[T any](name string, set func(*T, string)) Field[T] {
	return Field[T]{Name: name, Set: func(dst *T, v any) bool {
		s, ok := v.(string)
		if ok {
			set(dst, s)
		}
		return ok
	}}
}

// FloatField maps any numeric value through set.
func FloatField[T any](name string, set func(*T, float64)) Field[T] {
	return Field[T]{Name: name, Set: func(dst *T, v any) bool {
		f, ok := toFloat(v)
		if ok {
			set(dst, f)
		}
		return ok
	}}
}

// IntField maps an integral value through set. Floats with a fractional
// part are rejected.
func IntField[T any](name string, set func(*T, int)) Field[T] {
	return Field[T]{Name: name, Set: func(dst *T, v any) bool {
		f, ok := toFloat(v)
		if !ok || f != float64(int(f)) {
			return false
		}
		set(dst, int(f))
		return true
	}}
}

// BoolField maps a bool value through set.
func BoolField[T any](name string, set func(*T, bool)) Field[T] {
	return Field[T]{Name: name, Set: func(dst *T, v any) bool {
		b, ok := v.(bool)
		if ok {
			set(dst, b)
		}
		return ok
	}}
}

// AnyField hands the raw value to set, which decides whether it fits.
func AnyField[T any](name string, set func(*T, any) bool) Field[T] {
	return Field[T]{Name: name, Set: set}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
