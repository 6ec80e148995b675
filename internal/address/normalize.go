package address

import (
	"strconv"
	"strings"
	"time"
)

var (
	idKeys      = []string{"id", "addressId", "address_id"}
	uidKeys     = []string{"uid", "addressUid", "_id"}
	labelKeys   = []string{"kind", "label", "type", "addressType"}
	lineKeys    = []string{"line", "street", "address", "addressLine"}
	postalKeys  = []string{"postalCode", "pincode", "zip", "zipCode"}
	phoneKeys   = []string{"phone", "phoneNumber", "mobile"}
	defaultKeys = []string{"isShippingDefault", "isDefault"}
	updatedKeys = []string{"updatedAt", "modifiedAt", "updated_at"}
	createdKeys = []string{"createdAt", "created_at"}
)

// Normalize maps raw remote address payloads into the canonical shape.
func Normalize(raw []map[string]any) []Address {
	out := make([]Address, 0, len(raw))
	for _, entry := range raw {
		out = append(out, normalizeOne(entry))
	}
	return out
}

func normalizeOne(raw map[string]any) Address {
	addr := Address{
		Label:      firstString(raw, labelKeys),
		Line:       firstString(raw, lineKeys),
		PostalCode: firstString(raw, postalKeys),
		Phone:      firstString(raw, phoneKeys),
	}

	for _, key := range idKeys {
		if id, ok := numericValue(raw[key]); ok {
			addr.ID = id
			break
		}
	}
	addr.UID = firstString(raw, uidKeys)
	if addr.UID == "" {
		// A string-typed id doubles as the UI identifier.
		if value, ok := raw["id"].(string); ok {
			addr.UID = strings.TrimSpace(value)
		}
	}

	for _, key := range defaultKeys {
		if truthy(raw[key]) {
			addr.IsDefault = true
			break
		}
	}
	if !addr.IsDefault {
		addr.DefaultHint = hasOtherDefaultHint(raw)
	}

	addr.UpdatedAt = firstTime(raw, updatedKeys)
	addr.CreatedAt = firstTime(raw, createdKeys)
	return addr
}

func firstString(raw map[string]any, keys []string) string {
	for _, key := range keys {
		if value, ok := raw[key].(string); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func numericValue(value any) (int64, bool) {
	switch typed := value.(type) {
	case float64:
		if typed > 0 {
			return int64(typed), true
		}
	case int64:
		if typed > 0 {
			return typed, true
		}
	case int:
		if typed > 0 {
			return int64(typed), true
		}
	case string:
		if parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64); err == nil && parsed > 0 {
			return parsed, true
		}
	}
	return 0, false
}

// truthy accepts the default flag as a bool or its string form.
func truthy(value any) bool {
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		return strings.EqualFold(strings.TrimSpace(typed), "true")
	case float64:
		return typed != 0
	}
	return false
}

func hasOtherDefaultHint(raw map[string]any) bool {
	for key, value := range raw {
		if !strings.Contains(strings.ToLower(key), "default") {
			continue
		}
		if isRecognizedDefaultKey(key) {
			continue
		}
		if truthy(value) {
			return true
		}
	}
	return false
}

func isRecognizedDefaultKey(key string) bool {
	for _, known := range defaultKeys {
		if strings.EqualFold(key, known) {
			return true
		}
	}
	return false
}

func firstTime(raw map[string]any, keys []string) time.Time {
	for _, key := range keys {
		if parsed, ok := parseTime(raw[key]); ok {
			return parsed
		}
	}
	return time.Time{}
}

func parseTime(value any) (time.Time, bool) {
	switch typed := value.(type) {
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, strings.TrimSpace(typed)); err == nil {
				return parsed, true
			}
		}
	case float64:
		if typed > 0 {
			return time.Unix(int64(typed), 0).UTC(), true
		}
	}
	return time.Time{}, false
}
