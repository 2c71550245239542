// Package findings models the records emitted by the detection engine and
// turns raw engine output into persisted scan artifacts.
package findings

import (
	"encoding/json"
	"fmt"
)

// Finding is one record emitted by the detection engine. The original JSON is
// retained so artifacts round-trip the engine's own records untouched; the
// typed fields only drive filtering and alerting.
type Finding struct {
	DetectorName   string
	Verified       bool
	SourceMetadata json.RawMessage

	raw json.RawMessage
}

// Location is the source position of a finding inside the scanned target.
type Location struct {
	File string
	Link string
}

// UnmarshalJSON accepts only JSON objects; scalar or array lines are rejected
// so the processor can drop them. Unexpected field shapes inside the object
// are tolerated rather than fatal.
func (f *Finding) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("finding record is not a JSON object")
	}

	f.raw = append(json.RawMessage(nil), data...)
	if v, ok := fields["DetectorName"]; ok {
		_ = json.Unmarshal(v, &f.DetectorName)
	}
	if v, ok := fields["Verified"]; ok {
		_ = json.Unmarshal(v, &f.Verified)
	}
	f.SourceMetadata = fields["SourceMetadata"]
	return nil
}

// MarshalJSON emits the original engine record when available.
func (f Finding) MarshalJSON() ([]byte, error) {
	if len(f.raw) > 0 {
		return f.raw, nil
	}
	type plain struct {
		DetectorName   string          `json:"DetectorName"`
		Verified       bool            `json:"Verified"`
		SourceMetadata json.RawMessage `json:"SourceMetadata,omitempty"`
	}
	return json.Marshal(plain{f.DetectorName, f.Verified, f.SourceMetadata})
}

// GithubLocation digs the source-location descriptor out of the metadata.
// It reports false unless SourceMetadata.Data.Github is itself a JSON object;
// the engine occasionally emits scalars there and those records carry no
// usable location.
func (f *Finding) GithubLocation() (Location, bool) {
	if len(f.SourceMetadata) == 0 {
		return Location{}, false
	}

	var meta struct {
		Data struct {
			Github json.RawMessage `json:"Github"`
		} `json:"Data"`
	}
	if err := json.Unmarshal(f.SourceMetadata, &meta); err != nil {
		return Location{}, false
	}
	if len(meta.Data.Github) == 0 {
		return Location{}, false
	}

	var gh map[string]json.RawMessage
	if err := json.Unmarshal(meta.Data.Github, &gh); err != nil || gh == nil {
		return Location{}, false
	}

	var loc Location
	if v, ok := gh["file"]; ok {
		_ = json.Unmarshal(v, &loc.File)
	}
	if v, ok := gh["link"]; ok {
		_ = json.Unmarshal(v, &loc.Link)
	}
	return loc, true
}

// Alertable reports whether the finding is confirmed valid and carries a
// permalink an operator can act on.
func (f *Finding) Alertable() bool {
	if !f.Verified {
		return false
	}
	loc, ok := f.GithubLocation()
	return ok && loc.Link != ""
}
