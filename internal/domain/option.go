package domain

// Opt is a tri-state command argument: absent (leave the field untouched),
// explicit null (clear the field), or a value. The zero value means absent.
type Opt[T any] struct {
	set   bool
	value *T
}

// Some returns an Opt carrying a value.
func Some[T any](v T) Opt[T] {
	return Opt[T]{set: true, value: &v}
}

// Null returns an Opt that clears the field.
func Null[T any]() Opt[T] {
	return Opt[T]{set: true}
}

// IsSet reports whether the argument was provided at all.
func (o Opt[T]) IsSet() bool { return o.set }

// Ptr returns the value, or nil for an explicit null.
func (o Opt[T]) Ptr() *T { return o.value }
