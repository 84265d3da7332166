package dto

import "encoding/json"

// NullableString distinguishes a missing key, an explicit JSON null (clear
// the field), and a value. It must be a value field, not a pointer: for
// pointer fields encoding/json short-circuits null without calling
// UnmarshalJSON, collapsing null into absent.
type NullableString struct {
	set bool
	s   *string
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.set = true
	n.s = raw
	return nil
}

// IsSet reports whether the key was present in the request body.
func (n NullableString) IsSet() bool { return n.set }

// Ptr returns the value, or nil for an explicit null.
func (n NullableString) Ptr() *string { return n.s }
