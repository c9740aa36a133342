package repository

import "encoding/json"

// Licenses is a list of SPDX identifiers. Composer metadata writes it either
// as a list or as a single string; both decode.
type Licenses []string

// UnmarshalJSON accepts a string, a list of strings or null.
func (l *Licenses) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*l = list
		return nil
	}
	var single string
	if err := json.Unmarshal(b, &single); err != nil {
		return err
	}
	if single == "" {
		*l = nil
		return nil
	}
	*l = Licenses{single}
	return nil
}
