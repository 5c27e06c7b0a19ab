package tool

import (
	"fmt"
	"strings"
)

// Args are the decoded JSON arguments of a tool call.
type Args map[string]any

// Required returns a string argument, failing when it is absent, not a string
// or blank.
func (a Args) Required(key string) (string, error) {
	raw, ok := a[key]
	if !ok || raw == nil {
		return "", fmt.Errorf("%s is required", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

// Optional returns a trimmed string argument or "" when unset. Non-string
// values are treated as unset.
func (a Args) Optional(key string) string {
	s, _ := a[key].(string)
	return strings.TrimSpace(s)
}
