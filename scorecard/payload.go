package scorecard

import (
	"encoding/json"
	"fmt"
)

// Payload is the JSON document the scorecard binary emits with --format=json.
type Payload struct {
	Date      string     `json:"date"`
	Repo      RepoInfo   `json:"repo"`
	Scorecard MetaInfo   `json:"scorecard"`
	Score     *float64   `json:"score"`
	Checks    []RawCheck `json:"checks"`
}

// RepoInfo identifies the scanned repository inside the payload.
type RepoInfo struct {
	Name   string `json:"name"`
	Commit string `json:"commit"`
}

// MetaInfo identifies the analyzer build that produced the payload.
type MetaInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// RawCheck is one check entry in the payload. A score of -1 means the check
// was skipped.
type RawCheck struct {
	Name          string      `json:"name"`
	Score         int         `json:"score"`
	Reason        string      `json:"reason"`
	Details       []RawDetail `json:"details"`
	Documentation RawDoc      `json:"documentation"`
}

// RawDoc is the documentation block attached to a check.
type RawDoc struct {
	Short string `json:"short"`
	URL   string `json:"url"`
}

// RawDetail is one detail line of a check. Scorecard emits details either as
// plain strings or as structured objects depending on version, so decoding
// accepts both forms.
type RawDetail struct {
	Msg     string `json:"msg"`
	Type    string `json:"type"`
	Path    string `json:"path"`
	Line    *int   `json:"line"`
	Snippet string `json:"snippet"`
}

func (d *RawDetail) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = RawDetail{Msg: s}
		return nil
	}

	type alias RawDetail
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("detail is neither string nor object: %w", err)
	}
	*d = RawDetail(a)
	return nil
}

// String renders the detail the way scorecard prints it in text mode.
func (d RawDetail) String() string {
	if d.Type != "" {
		return fmt.Sprintf("%s: %s", d.Type, d.Msg)
	}
	return d.Msg
}
