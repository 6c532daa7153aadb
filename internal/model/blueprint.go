package model

// Blueprint is the per-run specification of how many questions of each
// pattern to produce. Immutable once a run starts; the run keeps the raw JSON
// it was created from.
type Blueprint struct {
	Total   int            `json:"total"`
	Subject string         `json:"subject,omitempty"`
	Quotas  []PatternQuota `json:"quotas"`
}

// PatternQuota is one row of the blueprint. Count is an absolute quota when
// the quotas sum to Total, otherwise a proportional weight.
type PatternQuota struct {
	Pattern    Pattern `json:"pattern"`
	Count      int     `json:"count"`
	Topic      string  `json:"topic,omitempty"`
	Difficulty string  `json:"difficulty,omitempty"`
	Cognitive  string  `json:"cognitive,omitempty"`
}

// GenerationRequest is one planned question: the unit of work handed to the
// prompt crafter and generator. Requests are ordered; Number continues any
// existing numbering in the run.
type GenerationRequest struct {
	Number     int     `json:"number"`
	Pattern    Pattern `json:"pattern"`
	Subject    string  `json:"subject"`
	Topic      string  `json:"topic,omitempty"`
	Difficulty string  `json:"difficulty,omitempty"`
	Cognitive  string  `json:"cognitive,omitempty"`
	// BlueprintText is the rendered plan the crafter works from, optionally
	// carrying drafted focus notes and reference material.
	BlueprintText string `json:"blueprintText"`
}

// BlueprintTemplate is a stored, reusable blueprint. The default template is
// seeded at migration time and used when a run is created without one.
type BlueprintTemplate struct {
	BaseModel
	Name      string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Spec      string `gorm:"type:json;not null" json:"spec"`
	IsDefault bool   `gorm:"default:false" json:"isDefault"`
}

func (BlueprintTemplate) TableName() string {
	return "blueprint_templates"
}
