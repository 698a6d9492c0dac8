package quote

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"catalog-cost/core/types"
)

// Params are the quote-affecting fields of one pricing control plus
// the outcome of input validation. Inputs must already be validated;
// a non-nil ValidationErr blocks any request for these params.
type Params struct {
	RoleID          string
	OfferingID      string
	PlanID          string
	Currency        types.Currency
	Region          types.Region
	IncludeSetupFee bool
	Inputs          map[string]interface{}
	ValidationErr   error
}

// CompositeKey hashes the quote-affecting fields into a request
// identity. Equal parameters always produce equal keys: the JSON
// encoder sorts map keys, so input order cannot leak into the hash.
func CompositeKey(p Params) string {
	hashData := struct {
		RoleID          string                 `json:"role_id"`
		OfferingID      string                 `json:"offering_id"`
		PlanID          string                 `json:"plan_id"`
		Currency        types.Currency         `json:"currency"`
		Region          types.Region           `json:"region"`
		IncludeSetupFee bool                   `json:"include_setup_fee"`
		Inputs          map[string]interface{} `json:"inputs"`
	}{
		RoleID:          p.RoleID,
		OfferingID:      p.OfferingID,
		PlanID:          p.PlanID,
		Currency:        p.Currency,
		Region:          p.Region,
		IncludeSetupFee: p.IncludeSetupFee,
		Inputs:          p.Inputs,
	}

	data, _ := json.Marshal(hashData)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// request converts params into the model request
func (p Params) request() Request {
	return Request{
		RoleID:          p.RoleID,
		OfferingID:      p.OfferingID,
		PlanID:          p.PlanID,
		Inputs:          p.Inputs,
		Currency:        p.Currency,
		Region:          p.Region,
		IncludeSetupFee: p.IncludeSetupFee,
	}
}
