package insts

import "fmt"

// Opt is an instruction field that may be absent from an encoding.
// The zero value is absent, so a present zero is never confused with a
// missing field.
type Opt[T any] struct {
	value   T
	present bool
}

// Some returns a present field holding v.
func Some[T any](v T) Opt[T] {
	return Opt[T]{value: v, present: true}
}

// None returns an absent field.
func None[T any]() Opt[T] {
	return Opt[T]{}
}

// Present reports whether the field is part of the encoding.
func (o Opt[T]) Present() bool {
	return o.present
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.present
}

// Or returns the value if present and def otherwise.
func (o Opt[T]) Or(def T) T {
	if o.present {
		return o.value
	}
	return def
}

func (o Opt[T]) String() string {
	if !o.present {
		return "none"
	}
	return fmt.Sprint(o.value)
}
