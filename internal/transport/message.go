package transport

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// extractMessage pulls a human-readable message out of the server's
// failure body. The backend is inconsistent: bodies may carry a
// `message` field, a `title`/`detail` pair, a validation `errors` map,
// or a plain string.
func extractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var envelope map[string]any
	if err := json.Unmarshal(body, &envelope); err == nil {
		if msg := stringField(envelope, "message"); msg != "" {
			return msg
		}
		title := stringField(envelope, "title")
		detail := stringField(envelope, "detail")
		switch {
		case title != "" && detail != "":
			return fmt.Sprintf("%s: %s", title, detail)
		case detail != "":
			return detail
		case title != "":
			return title
		}
		if fieldErrors, ok := envelope["errors"].(map[string]any); ok {
			if msg := flattenFieldErrors(fieldErrors); msg != "" {
				return msg
			}
		}
		return ""
	}

	var plain string
	if err := json.Unmarshal(body, &plain); err == nil {
		return strings.TrimSpace(plain)
	}
	return trimmed
}

func stringField(envelope map[string]any, key string) string {
	if value, ok := envelope[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func flattenFieldErrors(fields map[string]any) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		switch value := fields[name].(type) {
		case string:
			parts = append(parts, fmt.Sprintf("%s: %s", name, value))
		case []any:
			for _, item := range value {
				if msg, ok := item.(string); ok {
					parts = append(parts, fmt.Sprintf("%s: %s", name, msg))
					break
				}
			}
		}
	}
	return strings.Join(parts, "; ")
}

// indicatesAbsence reports whether a failure message describes an
// object that is already gone, which delete-style calls treat as done.
func indicatesAbsence(message string) bool {
	lowered := strings.ToLower(message)
	for _, marker := range []string{"not found", "does not exist", "no longer", "already removed", "already deleted"} {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// indicatesEmptyCollection reports whether a 4xx on a list endpoint is
// the backend's way of saying "no rows".
func indicatesEmptyCollection(message string) bool {
	lowered := strings.ToLower(message)
	if !strings.HasPrefix(lowered, "no ") {
		return false
	}
	return strings.Contains(lowered, "found") || strings.Contains(lowered, "exist") || strings.Contains(lowered, "available")
}
