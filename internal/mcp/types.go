package mcp

type BeginParams struct {
	Note string `json:"note,omitempty"`
}

type EndParams struct {
	FinishNote string `json:"finish_note,omitempty"`
}

type HistoryParams struct {
	Member string `json:"member,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

type SummaryParams struct {
	Member string `json:"member,omitempty"`
	Days   int    `json:"days,omitempty"`
}
