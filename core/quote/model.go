// Package quote resolves prices for catalog entries. An Orchestrator
// owns the in-flight request for one pricing control and guarantees
// the visible quote always matches the last-requested parameters,
// even when network responses arrive out of order. Two interchangeable
// models back it: a remote declarative quote computed by the pricing
// service and a local formula for entries without a pricing document.
package quote

import (
	"context"

	"catalog-cost/core/types"
)

// Request carries everything a model needs to price one entry.
// Units and Apps drive the local formula only; the remote transport
// does not send them.
type Request struct {
	RoleID          string                 `json:"role_id,omitempty"`
	OfferingID      string                 `json:"offering_id,omitempty"`
	PlanID          string                 `json:"plan_id,omitempty"`
	Inputs          map[string]interface{} `json:"inputs,omitempty"`
	Currency        types.Currency         `json:"currency,omitempty"`
	Region          types.Region           `json:"region,omitempty"`
	IncludeSetupFee bool                   `json:"include_setup_fee,omitempty"`

	Units int `json:"-"`
	Apps  int `json:"-"`
}

// Model produces a quote for a request
type Model interface {
	Quote(ctx context.Context, req Request) (*types.Quote, error)
}

// Transport executes quote requests against a pricing service.
// adapters/pricingapi provides the HTTP implementation.
type Transport interface {
	Quote(ctx context.Context, req Request) (*types.Quote, error)
}

// RemoteModel prices entries that carry a pricing document by
// delegating to a pricing service. Contact-sales plans, setup fees
// and minimum commits ride on the returned types.Quote.
type RemoteModel struct {
	transport Transport
}

// NewRemoteModel creates a remote model over the given transport
func NewRemoteModel(transport Transport) *RemoteModel {
	return &RemoteModel{transport: transport}
}

// Quote delegates to the transport
func (m *RemoteModel) Quote(ctx context.Context, req Request) (*types.Quote, error) {
	return m.transport.Quote(ctx, req)
}
