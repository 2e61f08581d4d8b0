package txn

// Effect is a typed value carried by a transaction.
type Effect struct {
	typ   any
	name  string
	value any
}

// Name returns the name of the effect's type.
func (e Effect) Name() string {
	return e.name
}

// Value returns the untyped payload.
func (e Effect) Value() any {
	return e.value
}

// EffectType declares a kind of effect with payload type T.
type EffectType[T any] struct {
	name string
}

// Define declares a new effect type.
func Define[T any](name string) *EffectType[T] {
	return &EffectType[T]{name: name}
}

// Name returns the effect type name.
func (t *EffectType[T]) Name() string {
	return t.name
}

// Of creates an effect of this type.
func (t *EffectType[T]) Of(v T) Effect {
	return Effect{typ: t, name: t.name, value: v}
}

// Match returns the payload if e is of this type.
func (t *EffectType[T]) Match(e Effect) (T, bool) {
	if e.typ != any(t) {
		var zero T
		return zero, false
	}
	v, ok := e.value.(T)
	return v, ok
}

// Has reports whether any effect in the list is of this type.
func (t *EffectType[T]) Has(effects []Effect) bool {
	for _, e := range effects {
		if e.typ == any(t) {
			return true
		}
	}
	return false
}

// All returns the payloads of every effect of this type, in order.
func (t *EffectType[T]) All(effects []Effect) []T {
	var out []T
	for _, e := range effects {
		if v, ok := t.Match(e); ok {
			out = append(out, v)
		}
	}
	return out
}
