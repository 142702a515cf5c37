package handler

import (
	"net/url"
	"strings"
)

func queryFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// splitNames splits a comma-joined list whose items may be URL-encoded on
// their own. Item decoding keeps a literal "+".
func splitNames(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name, err := url.PathUnescape(part)
		if err != nil {
			name = part
		}
		if strings.TrimSpace(name) == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}
