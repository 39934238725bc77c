package async

// Outcome is the settled state of one task in a SettleAll batch.
type Outcome[T any] struct {
	Value T
	Err   error
}

// OK reports whether the task succeeded.
func (o Outcome[T]) OK() bool { return o.Err == nil }

// Reflect adapts f into a future that always resolves with f's outcome.
func Reflect[T any](f *Future[T]) *Future[Outcome[T]] {
	if f == nil {
		return Resolved(Outcome[T]{Err: ErrNilFuture})
	}
	return Go(func() (Outcome[T], error) {
		v, err := f.Wait()
		return Outcome[T]{Value: v, Err: err}, nil
	})
}

// SettleAll waits for every task and resolves with one outcome per input, in
// input order. It never rejects: failed tasks surface as outcomes with Err set.
func SettleAll[T any](tasks []*Future[T]) *Future[[]Outcome[T]] {
	reflected := make([]*Future[Outcome[T]], len(tasks))
	for i, task := range tasks {
		reflected[i] = Reflect(task)
	}
	return Go(func() ([]Outcome[T], error) {
		out := make([]Outcome[T], len(reflected))
		for i, r := range reflected {
			out[i], _ = r.Wait()
		}
		return out, nil
	})
}

// Values returns the values of successful outcomes, preserving order.
func Values[T any](outcomes []Outcome[T]) []T {
	out := make([]T, 0, len(outcomes))
	for _, o := range outcomes {
		if o.OK() {
			out = append(out, o.Value)
		}
	}
	return out
}
