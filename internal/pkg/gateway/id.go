package gateway

import "encoding/json"

// flexibleID accepts a JSON string or number. The gateway sends numeric ids
// for most payments but alphanumeric ones for some payment methods, and the
// same field must decode either form.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

func (f flexibleID) String() string {
	return string(f)
}
