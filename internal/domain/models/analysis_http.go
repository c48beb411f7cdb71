package models

// Requests for the analysis HTTP endpoints. Defined in domain for consistency and reuse.

type AnalyzeRequest struct {
	Chain        string `query:"chain" json:"chain" default:"solana" validate:"oneof=solana ethereum base bsc"`
	TokenAddress string `query:"token_address" json:"token_address" validate:"required,min=6"`
	Refresh      bool   `query:"refresh" json:"refresh"`
}

type ReportRequest struct {
	Chain string `query:"chain" json:"chain" default:"solana" validate:"oneof=solana ethereum base bsc"`
}
