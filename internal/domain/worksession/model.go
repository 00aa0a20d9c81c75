package worksession

import "fmt"

const secondsPerHour = 3600.0

// WorkSession is a single tracked span of work for one user.
// A nil StopTS means the session is still active.
type WorkSession struct {
	ID      int64  `json:"id"`
	UserID  string `json:"user_id"`
	StartTS int64  `json:"start_ts"`
	StopTS  *int64 `json:"stop_ts,omitempty"`
	Note    string `json:"note"`
}

// Active reports whether the session has not been stopped yet.
func (s WorkSession) Active() bool {
	return s.StopTS == nil
}

// Hours returns the closed duration in hours, or 0 for an active session.
func (s WorkSession) Hours() float64 {
	if s.StopTS == nil {
		return 0
	}
	return HoursBetween(s.StartTS, *s.StopTS)
}

// HoursBetween converts a [start, stop] span of unix seconds to hours.
func HoursBetween(startTS, stopTS int64) float64 {
	return float64(stopTS-startTS) / secondsPerHour
}

// AppendFinishNote builds the note persisted when a session is stopped with a finish note.
// An empty finish note leaves the original untouched.
func AppendFinishNote(note, finish string) string {
	if finish == "" {
		return note
	}
	return fmt.Sprintf("%s [Finished: %s]", note, finish)
}

// StopResult describes a session that was just stopped.
type StopResult struct {
	Session WorkSession `json:"session"`
	Hours   float64     `json:"hours"`
}
