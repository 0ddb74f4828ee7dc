package diagnostics

import "time"

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Time           time.Time      `json:"time"`
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

var summaries = map[string]string{
	"RECORDING.STARTED": "Recording started",
	"RECORDING.STOPPED": "Recording stopped",
	"PLAYBACK.STARTED":  "Playback started",
	"PLAYBACK.STOPPED":  "Playback stopped",
	"PLAYBACK.FINISHED": "Playback complete",
	"PLAYBACK.EMPTY":    "No recording to play",
	"SCHEME.CHANGED":    "Color scheme changed",
}

// FromEvent builds an info diagnostic for a studio lifecycle event.
func FromEvent(code string, evidence map[string]any) Diagnostic {
	d := Diagnostic{
		Time:     time.Now(),
		Severity: Info,
		Code:     code,
		Summary:  summaries[code],
		Evidence: evidence,
	}
	if d.Summary == "" {
		d.Summary = code
	}
	if code == "PLAYBACK.EMPTY" {
		d.Severity = Warn
		d.SuggestedFixes = []string{"Record a sequence before pressing play"}
	}
	return d
}

// Rejected reports a control message the studio refused.
func Rejected(code string, err error, evidence map[string]any) Diagnostic {
	return Diagnostic{
		Time:     time.Now(),
		Severity: Warn,
		Code:     code,
		Summary:  "Control rejected",
		Detail:   err.Error(),
		Evidence: evidence,
	}
}
