package bitpack

import "fmt"

// Option is an optional value packed as a presence bit followed by the payload.
type Option[T any] struct {
	value T
	ok    bool
}

// Some returns a present option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None returns an absent option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// MakeOption returns Some(v) if present, None otherwise.
func MakeOption[T any](present bool, v T) Option[T] {
	if !present {
		return Option[T]{}
	}
	return Option[T]{value: v, ok: true}
}

// Get returns the payload and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsSome reports whether the option holds a value.
func (o Option[T]) IsSome() bool {
	return o.ok
}

// OrElse returns the payload if present, def otherwise.
func (o Option[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

func (o Option[T]) String() string {
	if !o.ok {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", o.value)
}

// PackOption writes opt at offset. An absent option clears the presence bit
// and leaves the payload bits untouched. A present option sets the bit and
// hands the payload to fn, which must pack it at offset+1.
func PackOption[D Storage, T any](raw D, offset uint, opt Option[T], fn func(raw D, v T) D) D {
	v, ok := opt.Get()
	if !ok {
		return Insert(raw, offset, 1, 0)
	}
	return fn(Insert(raw, offset, 1, 1), v)
}

// PackOption128 is PackOption for 128-bit storage.
func PackOption128[T any](raw Uint128, offset uint, opt Option[T], fn func(raw Uint128, v T) Uint128) Uint128 {
	v, ok := opt.Get()
	if !ok {
		return Insert128(raw, offset, 1, Uint128{})
	}
	return fn(Insert128(raw, offset, 1, Uint128{Lo: 1}), v)
}
