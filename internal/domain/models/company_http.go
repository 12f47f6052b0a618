package models

// Requests for the earnings HTTP endpoints. Defined in domain for consistency and reuse.

type SymbolRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type QuotesRequest struct {
	// Symbols is comma-separated in the query string.
	Symbols string `query:"symbols" json:"symbols" validate:"required"`
}
