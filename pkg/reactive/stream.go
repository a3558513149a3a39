package reactive

import "context"

// Item is one element of a stream. A non-nil Err is terminal: the producer
// closes the stream right after sending it.
type Item[T any] struct {
	Value T
	Err   error
}

// Watch runs query once immediately and again every time changes fires,
// sending each result on the returned channel. It stops after the first
// error, when changes is closed, or when ctx is done. release, if non-nil,
// runs when the producer exits.
func Watch[T any](ctx context.Context, changes <-chan struct{}, query func(context.Context) (T, error), release func()) <-chan Item[T] {
	out := make(chan Item[T])
	go func() {
		defer close(out)
		if release != nil {
			defer release()
		}
		for {
			v, err := query(ctx)
			if ctx.Err() != nil {
				return
			}
			select {
			case out <- Item[T]{Value: v, Err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
			select {
			case _, ok := <-changes:
				if !ok {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Map transforms every value of in with f. Errors pass through unchanged.
func Map[T, U any](ctx context.Context, in <-chan Item[T], f func(T) U) <-chan Item[U] {
	out := make(chan Item[U])
	go func() {
		defer close(out)
		for it := range in {
			var next Item[U]
			if it.Err != nil {
				next.Err = it.Err
			} else {
				next.Value = f(it.Value)
			}
			select {
			case out <- next:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
