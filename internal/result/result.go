// Package result holds a value-or-errors outcome. Independent checks each
// return a Result and callers concatenate their errors instead of stopping
// at the first failure.
package result

// Result is either a value (success) or a non-empty list of error messages
// (failure), never both.
type Result[T any] struct {
	value  T
	errors []string
}

// Failure is satisfied by every Result regardless of its value type, so
// results of different types can be collected together.
type Failure interface {
	Errors() []string
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail builds a failed result. At least one message is required.
func Fail[T any](first string, rest ...string) Result[T] {
	errs := make([]string, 0, len(rest)+1)
	errs = append(errs, first)
	errs = append(errs, rest...)
	return Result[T]{errors: errs}
}

// FailAll builds a failed result from a collected error list. It panics on an
// empty list: a failure without messages cannot be told apart from success.
func FailAll[T any](errs []string) Result[T] {
	if len(errs) == 0 {
		panic("result: failure without errors")
	}
	return Result[T]{errors: append([]string(nil), errs...)}
}

func (r Result[T]) OK() bool {
	return len(r.errors) == 0
}

// Get returns the value and whether the result is successful.
func (r Result[T]) Get() (T, bool) {
	return r.value, r.OK()
}

// MustGet returns the value of a successful result and panics otherwise.
func (r Result[T]) MustGet() T {
	if !r.OK() {
		panic("result: MustGet on failed result")
	}
	return r.value
}

// Errors returns a copy of the error messages; nil on success.
func (r Result[T]) Errors() []string {
	if r.OK() {
		return nil
	}
	return append([]string(nil), r.errors...)
}

// Map transforms the value of a successful result and passes failures through.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if !r.OK() {
		return Result[U]{errors: r.errors}
	}
	return Ok(f(r.value))
}

// Collect concatenates the errors of every given result, in argument order.
func Collect(results ...Failure) []string {
	var errs []string
	for _, r := range results {
		errs = append(errs, r.Errors()...)
	}
	return errs
}

// Combine2 merges two independent results. Errors from both sides are kept.
func Combine2[A, B, C any](a Result[A], b Result[B], f func(A, B) C) Result[C] {
	if errs := Collect(a, b); len(errs) > 0 {
		return FailAll[C](errs)
	}
	return Ok(f(a.value, b.value))
}

// Traverse applies f to every item and gathers the values, or the errors of
// every failed item when at least one fails.
func Traverse[T, U any](items []T, f func(int, T) Result[U]) Result[[]U] {
	out := make([]U, 0, len(items))
	var errs []string
	for i, item := range items {
		r := f(i, item)
		if !r.OK() {
			errs = append(errs, r.errors...)
			continue
		}
		out = append(out, r.value)
	}
	if len(errs) > 0 {
		return FailAll[[]U](errs)
	}
	return Ok(out)
}
