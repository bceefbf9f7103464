package mapengine

import "fmt"

// PropertyBag is the untyped key/value store attached to geo objects.
type PropertyBag map[string]any

// GetAll returns a copy of every property.
func (b PropertyBag) GetAll() map[string]any {
	out := make(map[string]any, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// String returns the value under key as text, or "" when it is missing or empty.
func (b PropertyBag) String(key string) string {
	v, ok := b[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}
