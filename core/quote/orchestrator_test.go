package quote

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"catalog-cost/core/types"
	"catalog-cost/internal/errors"
)

type quoteResult struct {
	quote *types.Quote
	err   error
}

type modelCall struct {
	req     Request
	respond chan quoteResult
}

// stubModel hands every call to the test through a channel so the
// test decides which request completes, with what, and when.
type stubModel struct {
	calls chan modelCall
}

func newStubModel() *stubModel {
	return &stubModel{calls: make(chan modelCall, 8)}
}

func (m *stubModel) Quote(ctx context.Context, req Request) (*types.Quote, error) {
	respond := make(chan quoteResult, 1)
	m.calls <- modelCall{req: req, respond: respond}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-respond:
		return res.quote, res.err
	}
}

func awaitCall(t *testing.T, m *stubModel) modelCall {
	t.Helper()
	select {
	case call := <-m.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a model call")
		return modelCall{}
	}
}

func expectNoCall(t *testing.T, m *stubModel) {
	t.Helper()
	select {
	case call := <-m.calls:
		t.Fatalf("unexpected model call for plan %q", call.req.PlanID)
	case <-time.After(100 * time.Millisecond):
	}
}

func watchStates(o *Orchestrator) chan State {
	states := make(chan State, 16)
	o.SetOnChange(func(st State) { states <- st })
	return states
}

func awaitState(t *testing.T, states chan State, accept func(State) bool) State {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-states:
			if accept(st) {
				return st
			}
		case <-deadline:
			t.Fatal("timed out waiting for a state change")
			return State{}
		}
	}
}

func expectNoState(t *testing.T, states chan State) {
	t.Helper()
	select {
	case st := <-states:
		t.Fatalf("unexpected state change: %+v", st)
	case <-time.After(100 * time.Millisecond):
	}
}

func fixedQuote(total string) *types.Quote {
	amount := decimal.RequireFromString(total)
	return &types.Quote{
		Total:    &amount,
		Currency: types.CurrencyEUR,
		Region:   types.RegionGlobal,
		Interval: types.IntervalMonth,
	}
}

func TestOrchestratorResolvesQuote(t *testing.T) {
	model := newStubModel()
	o := NewOrchestrator(model)
	defer o.Close()
	states := watchStates(o)

	p := sampleParams()
	o.Update(context.Background(), p)

	pending := awaitState(t, states, func(st State) bool { return st.Pending })
	if pending.Quote != nil || pending.Err != "" {
		t.Error("expected a clean pending state")
	}
	if pending.Key != CompositeKey(p) {
		t.Errorf("key = %q, want the composite key of the parameters", pending.Key)
	}

	call := awaitCall(t, model)
	if call.req.RoleID != "web-app-files" || call.req.OfferingID != "cloud" || call.req.PlanID != "team" {
		t.Errorf("request = %+v, want the converted parameters", call.req)
	}
	if !call.req.IncludeSetupFee || call.req.Currency != types.CurrencyEUR {
		t.Errorf("request = %+v, want setup fee and currency carried over", call.req)
	}
	call.respond <- quoteResult{quote: fixedQuote("50")}

	resolved := awaitState(t, states, func(st State) bool { return !st.Pending })
	if resolved.Quote == nil || resolved.Quote.Total.String() != "50" {
		t.Fatalf("resolved state = %+v, want total 50", resolved)
	}
	if resolved.Err != "" {
		t.Errorf("err = %q, want empty on success", resolved.Err)
	}

	if st := o.State(); st.Quote == nil || st.Quote.Total.String() != "50" {
		t.Errorf("State() = %+v, want the resolved quote", st)
	}
}

func TestOrchestratorSameKeyNoOp(t *testing.T) {
	model := newStubModel()
	o := NewOrchestrator(model)
	defer o.Close()
	states := watchStates(o)

	o.Update(context.Background(), sampleParams())
	call := awaitCall(t, model)
	call.respond <- quoteResult{quote: fixedQuote("50")}
	awaitState(t, states, func(st State) bool { return !st.Pending })

	o.Update(context.Background(), sampleParams())

	expectNoCall(t, model)
	expectNoState(t, states)
	if st := o.State(); st.Quote == nil {
		t.Error("expected the resolved quote to survive an unchanged update")
	}
}

func TestOrchestratorStaleResponseDiscarded(t *testing.T) {
	model := newStubModel()
	o := NewOrchestrator(model)
	defer o.Close()
	states := watchStates(o)

	first := sampleParams()
	o.Update(context.Background(), first)
	firstCall := awaitCall(t, model)

	second := sampleParams()
	second.PlanID = "business"
	o.Update(context.Background(), second)
	secondCall := awaitCall(t, model)

	// The superseded response arrives late and must not publish.
	firstCall.respond <- quoteResult{quote: fixedQuote("111")}
	secondCall.respond <- quoteResult{quote: fixedQuote("80")}

	resolved := awaitState(t, states, func(st State) bool { return !st.Pending && st.Quote != nil })
	if resolved.Quote.Total.String() != "80" {
		t.Fatalf("total = %s, want 80 from the latest request", resolved.Quote.Total)
	}
	if resolved.Key != CompositeKey(second) {
		t.Errorf("key = %q, want the key of the latest parameters", resolved.Key)
	}

	if st := o.State(); st.Quote == nil || st.Quote.Total.String() != "80" {
		t.Errorf("State() = %+v, want the latest quote", st)
	}
}

func TestOrchestratorValidationShortCircuit(t *testing.T) {
	model := newStubModel()
	o := NewOrchestrator(model)
	defer o.Close()
	states := watchStates(o)

	p := sampleParams()
	p.ValidationErr = errors.Validation("Invalid number for Users.")
	o.Update(context.Background(), p)

	st := awaitState(t, states, func(st State) bool { return st.Err != "" })
	if st.Err != "Invalid number for Users." {
		t.Errorf("err = %q, want the bare validation message", st.Err)
	}
	if st.Pending || st.Quote != nil {
		t.Errorf("state = %+v, want a settled error state", st)
	}
	expectNoCall(t, model)
}

func TestOrchestratorErrorSurfacedAndCleared(t *testing.T) {
	model := newStubModel()
	o := NewOrchestrator(model)
	defer o.Close()
	states := watchStates(o)

	o.Update(context.Background(), sampleParams())
	call := awaitCall(t, model)
	call.respond <- quoteResult{err: errors.Transport("pricing service returned status 502", nil)}

	failed := awaitState(t, states, func(st State) bool { return !st.Pending })
	if failed.Err != "pricing service returned status 502" {
		t.Errorf("err = %q, want the transport message", failed.Err)
	}
	if failed.Quote != nil {
		t.Error("expected no quote alongside a failure")
	}

	second := sampleParams()
	second.PlanID = "business"
	o.Update(context.Background(), second)

	pending := awaitState(t, states, func(st State) bool { return st.Pending })
	if pending.Err != "" {
		t.Errorf("err = %q, want the failure cleared by the new update", pending.Err)
	}
	awaitCall(t, model)
}

func TestOrchestratorCloseCancelsInFlight(t *testing.T) {
	model := newStubModel()
	o := NewOrchestrator(model)
	states := watchStates(o)

	o.Update(context.Background(), sampleParams())
	awaitState(t, states, func(st State) bool { return st.Pending })
	awaitCall(t, model)

	o.Close()

	expectNoState(t, states)
	st := o.State()
	if st.Pending {
		t.Error("expected Close to settle the pending flag")
	}
	if st.Err != "" {
		t.Errorf("err = %q, cancellation must not surface as a failure", st.Err)
	}
}

func TestOrchestratorExternalCancelStaysSilent(t *testing.T) {
	model := newStubModel()
	o := NewOrchestrator(model)
	defer o.Close()
	states := watchStates(o)

	ctx, cancel := context.WithCancel(context.Background())
	o.Update(ctx, sampleParams())
	awaitState(t, states, func(st State) bool { return st.Pending })
	awaitCall(t, model)

	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for o.State().Pending {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the canceled request to settle")
		}
		time.Sleep(5 * time.Millisecond)
	}

	expectNoState(t, states)
	st := o.State()
	if st.Err != "" || st.Quote != nil {
		t.Errorf("state = %+v, want a silent reset after cancellation", st)
	}
}
