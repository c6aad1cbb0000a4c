package wallet

import "encoding/json"

// Penalty and absence notes are ordered free-text lists. At the storage
// boundary they travel as a JSON array in a text column; the encoding stays
// behind this pair.

func EncodeNotes(notes []string) string {
	if len(notes) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(notes)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

// DecodeNotes tolerates empty and malformed input, returning an empty list
// rather than failing: seed rows written by older tooling are not always
// well-formed JSON.
func DecodeNotes(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var notes []string
	if err := json.Unmarshal([]byte(raw), &notes); err != nil {
		return []string{}
	}
	if notes == nil {
		return []string{}
	}
	return notes
}
