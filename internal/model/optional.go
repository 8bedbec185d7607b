package model

// Optional is a patch field. The zero value is unset and leaves the stored
// column untouched; a set Optional overwrites it, which for pointer types
// includes setting it to nil (SQL NULL).
type Optional[T any] struct {
	value T
	set   bool
}

// Set returns an Optional holding v.
func Set[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Text returns a set nullable-text field holding s.
func Text(s string) Optional[*string] {
	return Set(&s)
}

// Null returns a set nullable field that clears the column.
func Null[T any]() Optional[*T] {
	return Optional[*T]{set: true}
}

// IsSet reports whether the field was supplied.
func (o Optional[T]) IsSet() bool { return o.set }

// Get returns the value and whether it was supplied.
func (o Optional[T]) Get() (T, bool) { return o.value, o.set }

// Value returns the supplied value, or the zero value when unset.
func (o Optional[T]) Value() T { return o.value }

// Ptr returns a pointer to v. Handy for building optional fields.
func Ptr[T any](v T) *T { return &v }
