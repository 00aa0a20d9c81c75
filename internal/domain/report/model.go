package report

// HistoryEntry is one closed session as shown in a user's history.
type HistoryEntry struct {
	ID      int64   `json:"id"`
	StartTS int64   `json:"start_ts"`
	StopTS  int64   `json:"stop_ts"`
	Hours   float64 `json:"hours"`
	Note    string  `json:"note"`
}
