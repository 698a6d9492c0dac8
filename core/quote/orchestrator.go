package quote

import (
	"context"
	stderrors "errors"
	"sync"

	"catalog-cost/core/types"
	"catalog-cost/internal/errors"
)

// State is a snapshot of the orchestrator at one point in time.
// Quote and Err are mutually exclusive; both are empty while a
// request is pending.
type State struct {
	// Key identifies the parameter set the state belongs to
	Key string `json:"key"`

	// Pending indicates a request is in flight
	Pending bool `json:"pending"`

	// Quote is the latest resolved quote, nil until one arrives
	Quote *types.Quote `json:"quote,omitempty"`

	// Err is a display-ready failure message, empty on success
	Err string `json:"error,omitempty"`
}

// Orchestrator serializes quote requests for a changing parameter
// set. Every parameter change cancels the in-flight request, clears
// the previous quote and issues a new request; completions carrying
// a superseded generation are discarded so a slow response can never
// overwrite a newer one. Cancellations are not surfaced as failures.
type Orchestrator struct {
	model Model

	mu         sync.Mutex
	generation uint64
	key        string
	pending    bool
	quote      *types.Quote
	errMsg     string
	cancel     context.CancelFunc
	onChange   func(State)
}

// NewOrchestrator creates an orchestrator issuing requests against
// the given model.
func NewOrchestrator(model Model) *Orchestrator {
	return &Orchestrator{model: model}
}

// SetOnChange registers a hook invoked after every published state
// transition. The hook runs outside the orchestrator lock.
func (o *Orchestrator) SetOnChange(fn func(State)) {
	o.mu.Lock()
	o.onChange = fn
	o.mu.Unlock()
}

// Update applies a new parameter set. When the composite key matches
// the current one the call is a no-op. Otherwise the in-flight
// request is canceled, the previous quote is cleared immediately and
// a new request starts, unless the parameters carry a validation
// error, in which case the error is published without a request.
func (o *Orchestrator) Update(ctx context.Context, p Params) {
	key := CompositeKey(p)

	o.mu.Lock()
	if key == o.key {
		o.mu.Unlock()
		return
	}

	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.generation++
	o.key = key
	o.quote = nil
	o.errMsg = ""

	if p.ValidationErr != nil {
		o.pending = false
		o.errMsg = errorMessage(p.ValidationErr)
		st, fn := o.snapshot()
		o.mu.Unlock()
		if fn != nil {
			fn(st)
		}
		return
	}

	o.pending = true
	reqCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	gen := o.generation
	st, fn := o.snapshot()
	o.mu.Unlock()

	if fn != nil {
		fn(st)
	}
	go o.issue(reqCtx, gen, p.request())
}

// issue runs one request to completion and publishes the outcome,
// unless a newer generation superseded it in the meantime.
func (o *Orchestrator) issue(ctx context.Context, gen uint64, req Request) {
	quote, err := o.model.Quote(ctx, req)

	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return
	}
	o.pending = false
	o.cancel = nil

	if err != nil {
		if errors.IsCanceled(err) {
			o.mu.Unlock()
			return
		}
		o.errMsg = errorMessage(err)
	} else {
		o.quote = quote
	}
	st, fn := o.snapshot()
	o.mu.Unlock()

	if fn != nil {
		fn(st)
	}
}

// State returns the current snapshot.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	st, _ := o.snapshot()
	o.mu.Unlock()
	return st
}

// Close cancels any in-flight request and invalidates its
// generation so a late completion cannot publish.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.generation++
	o.pending = false
	o.mu.Unlock()
}

// snapshot copies the published fields. Callers must hold the lock.
func (o *Orchestrator) snapshot() (State, func(State)) {
	return State{
		Key:     o.key,
		Pending: o.pending,
		Quote:   o.quote,
		Err:     o.errMsg,
	}, o.onChange
}

// errorMessage extracts a display-ready message, unwrapping the
// internal error type so its category prefix stays out of the UI.
func errorMessage(err error) string {
	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
