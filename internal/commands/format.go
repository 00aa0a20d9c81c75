package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/worklog/internal/domain/report"
)

const tsLayout = "2006-01-02 15:04"

// FormatHistory renders history rows as a fixed-width table in UTC.
func FormatHistory(entries []report.HistoryEntry) string {
	var b strings.Builder
	b.WriteString("ID | Started          | Stopped          | Hrs   | Note\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%d | %s | %s | %.1fh | %s\n",
			e.ID,
			time.Unix(e.StartTS, 0).UTC().Format(tsLayout),
			time.Unix(e.StopTS, 0).UTC().Format(tsLayout),
			e.Hours,
			e.Note,
		)
	}
	return strings.TrimRight(b.String(), "\n")
}
