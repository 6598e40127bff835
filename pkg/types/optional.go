package types

import (
	"bytes"
	"encoding/json"
)

// Optional records whether a JSON field was present, so PATCH bodies can tell
// "leave alone" (Set=false) from "clear" (Set=true, Value=nil).
type Optional[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	o.Set = true
	if bytes.Equal(trimmed, []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
