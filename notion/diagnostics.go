package notion

// Severity ranks a diagnostic. Warnings report degraded output; errors
// report content that was replaced by a placeholder.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic records one non-fatal anomaly observed during a conversion run,
// tied to the Notion object it occurred on.
type Diagnostic struct {
	Severity Severity
	NotionID string
	Message  string
}

func (d Diagnostic) String() string {
	if d.NotionID == "" {
		return string(d.Severity) + ": " + d.Message
	}
	return string(d.Severity) + ": " + d.Message + " (" + d.NotionID + ")"
}
