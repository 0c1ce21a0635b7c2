package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// LogValue is the old/new value of an audit entry. Older clients stored
// numbers, strings or JSON-encoded strings here, so decoding accepts any JSON
// scalar and keeps its textual form.
type LogValue string

func IntValue(v int) LogValue {
	return LogValue(strconv.Itoa(v))
}

func (v LogValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(v))
}

func (v *LogValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = LogValue(s)
	default:
		*v = LogValue(data)
	}
	return nil
}
