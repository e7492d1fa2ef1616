package mutation

import (
	"context"
	"errors"
	"sync"
)

// ErrInFlight is returned when a mutation is submitted while a previous
// submission is still pending. Duplicate submissions are rejected, not
// queued.
var ErrInFlight = errors.New("mutation already in flight")

// CallFunc performs the single API call behind a mutation.
type CallFunc[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Mutation is a write operation. Each Do issues exactly one gateway
// call; success hooks (typically cache invalidation) run only after the
// server accepted the write. There is no retry and no queueing.
type Mutation[Req, Resp any] struct {
	name string
	call CallFunc[Req, Resp]

	onSuccess []func(req Req, resp Resp)
	onError   func(req Req, err error)

	pendingMutex sync.Mutex
	pending      bool
}

// New creates a mutation around one API call.
func New[Req, Resp any](name string, call CallFunc[Req, Resp]) *Mutation[Req, Resp] {
	return &Mutation[Req, Resp]{name: name, call: call}
}

// OnSuccess registers a hook invoked after the server accepted the
// write. Hooks run in registration order.
func (mutation *Mutation[Req, Resp]) OnSuccess(hook func(req Req, resp Resp)) *Mutation[Req, Resp] {
	mutation.onSuccess = append(mutation.onSuccess, hook)
	return mutation
}

// OnError registers a hook invoked when the call fails.
func (mutation *Mutation[Req, Resp]) OnError(hook func(req Req, err error)) *Mutation[Req, Resp] {
	mutation.onError = hook
	return mutation
}

// Name returns the mutation name, used in logs.
func (mutation *Mutation[Req, Resp]) Name() string {
	return mutation.name
}

// Pending reports whether a submission is in flight so callers can
// disable duplicate submission.
func (mutation *Mutation[Req, Resp]) Pending() bool {
	mutation.pendingMutex.Lock()
	defer mutation.pendingMutex.Unlock()
	return mutation.pending
}

// Do submits the mutation. A second concurrent Do fails fast with
// ErrInFlight instead of issuing another call.
func (mutation *Mutation[Req, Resp]) Do(ctx context.Context, req Req) (Resp, error) {
	var zero Resp

	mutation.pendingMutex.Lock()
	if mutation.pending {
		mutation.pendingMutex.Unlock()
		return zero, ErrInFlight
	}
	mutation.pending = true
	mutation.pendingMutex.Unlock()

	defer func() {
		mutation.pendingMutex.Lock()
		mutation.pending = false
		mutation.pendingMutex.Unlock()
	}()

	resp, err := mutation.call(ctx, req)
	if err != nil {
		if mutation.onError != nil {
			mutation.onError(req, err)
		}
		return zero, err
	}

	for _, hook := range mutation.onSuccess {
		hook(req, resp)
	}
	return resp, nil
}
