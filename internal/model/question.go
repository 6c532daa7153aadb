package model

import "encoding/json"

// Question is one finalized, validated question. English fields are filled by
// the generator; Hindi fields by the translator. A stored record has always
// passed validation; TranslationComplete is false when the Hindi pass
// soft-failed and its fields are empty.
type Question struct {
	BaseModel
	RunID     uint    `gorm:"index;not null" json:"runId"`
	Number    int     `gorm:"not null" json:"number"`
	Pattern   Pattern `gorm:"size:40;not null" json:"pattern"`
	Subject   string  `gorm:"size:100" json:"subject"`
	Topic     string  `gorm:"size:255" json:"topic"`
	Blueprint string  `gorm:"type:text" json:"blueprint"`

	Stem        string          `gorm:"type:text;not null" json:"stem"`
	Options     json.RawMessage `gorm:"type:json;not null" json:"options"` // JSON: []string
	Answer      string          `gorm:"size:1;not null" json:"answer"`    // A-D
	Explanation string          `gorm:"type:text" json:"explanation"`

	StemHindi           string          `gorm:"type:text" json:"stemHindi,omitempty"`
	OptionsHindi        json.RawMessage `gorm:"type:json" json:"optionsHindi,omitempty"`
	ExplanationHindi    string          `gorm:"type:text" json:"explanationHindi,omitempty"`
	TranslationComplete bool            `gorm:"default:false" json:"translationComplete"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionList decodes the English options column.
func (q *Question) OptionList() []string {
	var opts []string
	if len(q.Options) > 0 {
		json.Unmarshal(q.Options, &opts)
	}
	return opts
}

// HindiOptionList decodes the Hindi options column; empty when translation is
// incomplete.
func (q *Question) HindiOptionList() []string {
	var opts []string
	if len(q.OptionsHindi) > 0 {
		json.Unmarshal(q.OptionsHindi, &opts)
	}
	return opts
}

func (q *Question) SetOptions(opts []string) error {
	raw, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	q.Options = raw
	return nil
}

func (q *Question) SetHindiOptions(opts []string) error {
	raw, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	q.OptionsHindi = raw
	return nil
}
