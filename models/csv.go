package models

import (
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CaseCSVHeader is the fixed 15-column layout the mirror endpoint serves.
var CaseCSVHeader = []string{
	"Case Number",
	"Crime Type",
	"Incident Date",
	"Platform",
	"Description",
	"Status",
	"Priority",
	"Submitted At",
	"Updated At",
	"Resolved At",
	"Assigned To",
	"Reporter Name",
	"Reporter Email",
	"Reporter Phone",
	"Anonymous",
}

// CaseExportCSVHeader adds the client export's trailing Files column.
var CaseExportCSVHeader = append(append([]string{}, CaseCSVHeader...), "Files")

var newlineRuns = regexp.MustCompile(`[\r\n]+`)

// csvEscape wraps every field in double quotes, doubling embedded quotes.
func csvEscape(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func csvTime(dt primitive.DateTime) string {
	return dt.Time().UTC().Format(time.RFC3339)
}

// csvRow flattens a case to the 15 scalar columns. Nested messages and
// attachment payloads are dropped; the export is lossy on those by design.
func (c Case) csvRow() []string {
	resolvedAt := ""
	if c.ResolvedAt != nil {
		resolvedAt = csvTime(*c.ResolvedAt)
	}
	anonymous := "No"
	if c.Anonymous {
		anonymous = "Yes"
	}
	return []string{
		c.CaseNumber,
		c.CrimeType,
		c.IncidentDate,
		c.Platform,
		newlineRuns.ReplaceAllString(c.Description, " "),
		string(c.Status),
		string(c.Priority),
		csvTime(c.SubmittedAt),
		csvTime(c.UpdatedAt),
		resolvedAt,
		c.AssignedTo,
		c.ReporterName,
		c.ReporterEmail,
		c.ReporterPhone,
		anonymous,
	}
}

func joinCSV(header []string, rows [][]string) string {
	var b strings.Builder
	for i, h := range header {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(h)
	}
	for _, row := range rows {
		b.WriteByte('\n')
		for i, field := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(csvEscape(field))
		}
	}
	return b.String()
}

// CasesCSV renders the mirror's 15-column CSV document.
func CasesCSV(cases []Case) string {
	rows := make([][]string, len(cases))
	for i, c := range cases {
		rows[i] = c.csvRow()
	}
	return joinCSV(CaseCSVHeader, rows)
}

// CasesExportCSV renders the dashboard export: the mirror columns plus a
// semicolon-joined list of attachment file names.
func CasesExportCSV(cases []Case) string {
	rows := make([][]string, len(cases))
	for i, c := range cases {
		names := make([]string, len(c.Files))
		for j, f := range c.Files {
			names[j] = f.Name
		}
		rows[i] = append(c.csvRow(), strings.Join(names, "; "))
	}
	return joinCSV(CaseExportCSVHeader, rows)
}

// ExportFileName builds the download name for the client-side export.
func ExportFileName(now time.Time) string {
	return "onestopcentre_cases_" + now.UTC().Format("2006-01-02") + ".csv"
}
