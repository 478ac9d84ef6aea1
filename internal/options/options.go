// Package options carries the generic plumbing behind the functional
// options accepted by Store construction and snapshot encoding.
package options

// Option configures a target of type T. Options are applied in order and
// may reject an invalid value.
type Option[T any] interface {
	apply(T) error
}

// Func adapts a plain configuration function into an Option.
type Func[T any] struct {
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.applyFunc(target)
}

// New wraps a validating configuration function as an Option.
func New[T any](fn func(T) error) *Func[T] {
	return &Func[T]{applyFunc: fn}
}

// Apply runs every option against target, stopping at the first error.
// A failed option leaves target partially configured; callers discard it.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}

// NoError wraps a configuration function that cannot fail.
func NoError[T any](fn func(T)) *Func[T] {
	return &Func[T]{
		applyFunc: func(target T) error {
			fn(target)

			return nil
		},
	}
}
