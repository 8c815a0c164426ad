package model

// Result is the outcome of a fire-and-forget call. Callers inspect it and
// decide whether to carry on.
type Result struct {
	err error
}

func Ok() Result { return Result{} }

func Failed(err error) Result { return Result{err: err} }

func (r Result) OK() bool { return r.err == nil }

func (r Result) Err() error { return r.err }

func (r Result) Reason() string {
	if r.err == nil {
		return ""
	}
	return r.err.Error()
}
