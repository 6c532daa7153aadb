package model

import "encoding/json"

type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is one generation session producing a collection of questions from a
// single blueprint.
type Run struct {
	BaseModel
	Code       string          `gorm:"size:36;uniqueIndex;not null" json:"code"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	Subject    string          `gorm:"size:100" json:"subject"`
	Topic      string          `gorm:"size:255" json:"topic"`
	SourceText string          `gorm:"type:text" json:"-"` // optional source context fed to the planner
	Blueprint  json.RawMessage `gorm:"type:json" json:"blueprint"`
	Status     RunStatus       `gorm:"size:20;default:'pending';index" json:"status"`

	// Summary counters, updated as the run progresses.
	Requested    int `gorm:"default:0" json:"requested"`
	Generated    int `gorm:"default:0" json:"generated"`
	Failed       int `gorm:"default:0" json:"failed"`
	Untranslated int `gorm:"default:0" json:"untranslated"`

	FailureLog json.RawMessage `gorm:"type:json" json:"failureLog,omitempty"`
	ExportURL  string          `gorm:"size:512" json:"exportUrl,omitempty"`
}

func (Run) TableName() string {
	return "runs"
}

// RunSummary is the user-visible completion report for a run.
type RunSummary struct {
	Requested    int `json:"requested"`
	Generated    int `json:"generated"`
	Failed       int `json:"failed"`
	Untranslated int `json:"untranslated"`
}

func (r *Run) Summary() RunSummary {
	return RunSummary{
		Requested:    r.Requested,
		Generated:    r.Generated,
		Failed:       r.Failed,
		Untranslated: r.Untranslated,
	}
}
