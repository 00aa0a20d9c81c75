package reclaim

import "github.com/google/uuid"

// Notification announces that an overdue session was force-closed.
type Notification struct {
	ID          uuid.UUID `json:"id"`
	SessionID   int64     `json:"session_id"`
	UserID      string    `json:"user_id"`
	MaxHours    int       `json:"max_hours"`
	HoursWorked float64   `json:"hours_worked"`
	StartTS     int64     `json:"start_ts"`
	StopTS      int64     `json:"stop_ts"`
}
