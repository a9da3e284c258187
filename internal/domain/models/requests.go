package models

// Requests for forecast HTTP endpoints. Defined in domain for consistency and reuse.

// Days carries no range validation on purpose: out-of-range horizons are
// clamped to [1,30] downstream rather than rejected.
type ForecastRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required"`
	Days   int    `query:"days" json:"days" default:"10"`
}

type BatchForecastRequest struct {
	Symbols []string `json:"symbols" validate:"required,min=1,dive,required"`
	Days    int      `json:"days" default:"10"`
}

type ModelInfoRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required"`
}

type CandlesRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"365"`
}
