package types

// ErrorResponse is the JSON error payload returned by the HTTP surface.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// ModelStatus is one row of the catalog listing.
type ModelStatus struct {
	ModelSpec
	Available bool    `json:"available"`
	State     string  `json:"state"`
	Progress  float64 `json:"progress,omitempty"`
}

// ResidentStatus describes one resident model.
type ResidentStatus struct {
	ModelID      string  `json:"model_id"`
	FootprintMB  int     `json:"footprint_mb"`
	ResidentSecs float64 `json:"resident_secs"`
}

// StatusResponse is the /status payload.
type StatusResponse struct {
	BudgetMB  int              `json:"budget_mb"`
	UsedMB    int              `json:"used_mb"`
	Loading   string           `json:"loading,omitempty"`
	Progress  float64          `json:"progress,omitempty"`
	Residents []ResidentStatus `json:"residents"`
}

// LoadRequest asks the manager to make a model resident.
type LoadRequest struct {
	Model string `json:"model"`
}

// SummarizeRequest is the HTTP form of a summarize call.
type SummarizeRequest struct {
	Model       string  `json:"model"`
	Text        string  `json:"text"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
}

// BenchmarkRequest is the HTTP form of a benchmark run.
type BenchmarkRequest struct {
	Model   string          `json:"model"`
	Samples []DatasetSample `json:"samples,omitempty"`
	Limit   int             `json:"limit,omitempty"`
}
