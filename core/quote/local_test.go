package quote

import (
	"context"
	stderrors "errors"
	"testing"

	"catalog-cost/core/types"
)

type staticRegistry struct {
	count int
	err   error
}

func (r staticRegistry) OperatorCount(ctx context.Context) (int, error) {
	return r.count, r.err
}

func TestLocalModelFormula(t *testing.T) {
	tests := []struct {
		name     string
		registry OperatorRegistry
		req      Request
		want     string
	}{
		{
			name:     "role enabled on two aliases",
			registry: staticRegistry{count: 4},
			req:      RoleParams("web-app-files", 2, types.CurrencyEUR),
			want:     "8",
		},
		{
			name:     "bundle with three members",
			registry: staticRegistry{count: 4},
			req:      BundleParams("server/collab-suite", 3, types.CurrencyEUR),
			want:     "12",
		},
		{
			name:     "zero operators floor to one",
			registry: staticRegistry{count: 0},
			req:      RoleParams("web-app-files", 5, types.CurrencyEUR),
			want:     "5",
		},
		{
			name:     "registry error floors to one",
			registry: staticRegistry{count: 9, err: stderrors.New("registry unreachable")},
			req:      RoleParams("web-app-files", 3, types.CurrencyEUR),
			want:     "3",
		},
		{
			name:     "nil registry floors to one",
			registry: nil,
			req:      BundleParams("server/collab-suite", 4, types.CurrencyEUR),
			want:     "4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := NewLocalModel(tt.registry)
			quote, err := model.Quote(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Quote() error = %v", err)
			}
			if quote.Total == nil {
				t.Fatal("expected a computable total")
			}
			if got := quote.Total.String(); got != tt.want {
				t.Errorf("total = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLocalModelQuoteShape(t *testing.T) {
	model := NewLocalModel(staticRegistry{count: 2})

	req := RoleParams("web-app-files", 1, "")
	quote, err := model.Quote(context.Background(), req)
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}

	if quote.Currency != types.CurrencyEUR {
		t.Errorf("currency = %s, want default EUR", quote.Currency)
	}
	if quote.Region != types.RegionGlobal {
		t.Errorf("region = %s, want global", quote.Region)
	}
	if quote.Interval != types.IntervalMonth {
		t.Errorf("interval = %s, want month", quote.Interval)
	}
	if quote.ContactSales {
		t.Error("expected a computable quote")
	}
	if !quote.Breakdown.Base.IsZero() || !quote.Breakdown.Usage.IsZero() {
		t.Error("expected an empty breakdown for the formula model")
	}
}

func TestRoleAndBundleParams(t *testing.T) {
	role := RoleParams("web-app-files", 3, types.CurrencyUSD)
	if role.Units != 3 || role.Apps != 1 {
		t.Errorf("role factors = %d x %d, want 3 x 1", role.Units, role.Apps)
	}
	if role.Currency != types.CurrencyUSD {
		t.Errorf("role currency = %s, want USD", role.Currency)
	}

	bundle := BundleParams("server/collab-suite", 5, types.CurrencyEUR)
	if bundle.Units != 1 || bundle.Apps != 5 {
		t.Errorf("bundle factors = %d x %d, want 1 x 5", bundle.Units, bundle.Apps)
	}
}
