package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Scalar holds the text of a JSON string, number or boolean. Null decodes
// to the empty string.
type Scalar string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = Scalar(v)
	case '{', '[':
		return fmt.Errorf("expected a scalar value, got %s", data[:1])
	default:
		*s = Scalar(data)
	}
	return nil
}

// String returns the raw text.
func (s Scalar) String() string { return string(s) }
