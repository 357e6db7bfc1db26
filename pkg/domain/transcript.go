package domain

import "time"

// Entry is one line of the session transcript. The transcript is
// append-only for the lifetime of the session; entries are never
// truncated or edited.
type Entry struct {
	Seq     int       `json:"seq"`
	Time    time.Time `json:"time"`
	Text    string    `json:"text"`
	Comment bool      `json:"comment,omitempty"`
}

// Line renders the entry the way it appears in a replay script:
// comments carry the "## " prefix, calls are verbatim.
func (e Entry) Line() string {
	if e.Comment {
		return "## " + e.Text
	}
	return e.Text
}
