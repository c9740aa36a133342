package repository

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Config is the raw configuration of one repository, as read from the
// repositories table of the config file. The "type" key selects the class.
type Config map[string]any

// Type returns the lowercased "type" entry, or "" if unset.
func (c Config) Type() string {
	return strings.ToLower(c.String("type"))
}

// String returns the string value at key, or "" if absent or not a string.
func (c Config) String(key string) string {
	s, _ := c[key].(string)
	return s
}

// Decode copies the configuration into v, which should be a pointer to a
// struct with json tags.
func (c Config) Decode(v any) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode repository config: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode repository config: %w", err)
	}
	return nil
}
