// Package dto defines data transfer objects for the Twelve Data API responses.
package dto

import "encoding/json"

// PriceResponse is the single-symbol body of the /price endpoint.
type PriceResponse struct {
	Price   string `json:"price"`
	Status  string `json:"status,omitempty"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// BatchPriceResponse is the multi-symbol body of the /price endpoint, keyed by symbol.
// Each entry is either a PriceResponse or an error object.
type BatchPriceResponse map[string]json.RawMessage
