package loam

// TranscriptMetadata is the frontmatter of a persisted transcript
// document. It uses "mapstructure" tags to match the YAML keys Loam
// writes.
type TranscriptMetadata struct {
	Session string          `json:"session" mapstructure:"session"`
	Entries []EntryMetadata `json:"entries" mapstructure:"entries"`
}

// EntryMetadata is one recorded teaching command. Time is RFC 3339 so
// the frontmatter stays diffable under version control.
type EntryMetadata struct {
	Seq     int    `json:"seq" mapstructure:"seq"`
	Time    string `json:"time" mapstructure:"time"`
	Text    string `json:"text" mapstructure:"text"`
	Comment bool   `json:"comment,omitempty" mapstructure:"comment"`
}
