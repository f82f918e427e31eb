package logging

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// RPC payloads carry whole document bodies. Logs only need enough of a
// value to identify the call, so long strings are clipped before logging.
const maxLoggedValueLen = 160

// Keys whose values are document content and always worth clipping.
var contentKeys = map[string]bool{
	"content":  true,
	"text":     true,
	"baseline": true,
	"current":  true,
	"html":     true,
}

func TruncateValue(value string) string {
	if utf8.RuneCountInString(value) <= maxLoggedValueLen {
		return value
	}
	runes := []rune(value)
	return fmt.Sprintf("%s…(+%d chars)", string(runes[:maxLoggedValueLen]), len(runes)-maxLoggedValueLen)
}

func TruncateAny(value any) any {
	switch typed := value.(type) {
	case string:
		return TruncateValue(typed)
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			if isContentKey(key) {
				out[key] = TruncateValue(fmt.Sprint(val))
				continue
			}
			out[key] = TruncateAny(val)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(typed))
		for key, val := range typed {
			out[key] = TruncateValue(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, val := range typed {
			out[i] = TruncateAny(val)
		}
		return out
	case []string:
		out := make([]string, len(typed))
		for i, val := range typed {
			out[i] = TruncateValue(val)
		}
		return out
	default:
		return value
	}
}

func TruncateJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return TruncateValue(strings.TrimSpace(string(raw)))
	}
	return TruncateAny(payload)
}

func isContentKey(key string) bool {
	return contentKeys[strings.ToLower(strings.TrimSpace(key))]
}
