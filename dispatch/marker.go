package dispatch

// Phantom ties a type parameter to a struct without storing a value of it.
type Phantom[T any] struct{}

// Never marks a variant that must never be constructed. Go cannot make a
// struct type uninhabited, so its zero value still exists; keeping it out of
// circulation is an invariant of the generated code, enforced at run time by
// the panicking methods of the variant that holds it.
type Never struct {
	_ never
}

type never interface{ uninhabited() }
