package record

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// WriteTable prints one row per record.
func WriteTable(w io.Writer, records []CandidateRecord) error {
	table := tablewriter.NewTable(w)
	table.Header("Time", "Session", "Status", "Name", "Email", "Phone", "Years", "Position", "Tech stack", "Answers")
	for _, rec := range records {
		years := ""
		if rec.YearsExperience != nil {
			years = strconv.Itoa(*rec.YearsExperience)
		}
		answered := 0
		for _, byNumber := range rec.Answers {
			answered += len(byNumber)
		}
		if err := table.Append(
			rec.Timestamp.Format(time.DateTime),
			rec.SessionID,
			string(rec.Status),
			rec.FullName,
			rec.Email,
			rec.Phone,
			years,
			rec.DesiredPosition,
			strings.Join(rec.TechStack, ", "),
			strconv.Itoa(answered),
		); err != nil {
			return err
		}
	}
	return table.Render()
}
