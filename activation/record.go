package activation

import "encoding/json"

// Record is the atomic unit emitted per activation: one end-to-end copy
// attempt triggered by a single interaction (or programmatic call).
type Record struct {
	ID        string    `json:"id"`      // UUIDv7
	PageURL   string    `json:"page_url"`
	PageID    string    `json:"page_id"` // stable identifier provided by caller
	BindID    string    `json:"bind_id"` // bound button identity on the page
	Selector  string    `json:"selector,omitempty"` // resolved target selector
	Outcome   Outcome   `json:"outcome"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
	Error     string    `json:"error,omitempty"` // diagnostic message, opaque
	Chars     int       `json:"chars"`           // runes submitted to the clipboard
	Seq       uint64    `json:"seq"`             // monotonically increasing per button
	Timestamp int64     `json:"timestamp"`       // epoch milliseconds
}

// MarshalRecord serialises a Record to JSON.
func MarshalRecord(r *Record) ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalRecord parses a Record from JSON.
func UnmarshalRecord(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
