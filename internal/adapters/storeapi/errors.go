package storeapi

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/genzzone/storefront/internal/domain"
)

// maxRawMessage bounds how much of a non-JSON body becomes the message.
const maxRawMessage = 300

// decodeError normalizes a non-2xx body. Precedence: a raw string, then
// detail, error and message, then a per-field validation map, then the JSON
// text itself.
func decodeError(status int, body []byte) *domain.ServerError {
	e := &domain.ServerError{Status: status, Kind: domain.KindGeneric}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return e
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		e.Message = truncate(string(body))
		return e
	}

	switch v := data.(type) {
	case string:
		e.Message = v
	case []any:
		e.Message = joinStrings(v)
		if e.Message == "" {
			e.Message = string(body)
		}
	case map[string]any:
		if len(v) == 0 {
			return e
		}
		for _, key := range []string{"detail", "error", "message"} {
			if msg, ok := text(v[key]); ok {
				e.Message = msg
				return e
			}
		}
		if field, msg, ok := firstFieldError(v); ok {
			e.Kind = domain.KindField
			e.Field = field
			e.Message = msg
			return e
		}
		e.Message = string(body)
	default:
		e.Message = string(body)
	}
	return e
}

// text reads a message value. Non-string values that are present are
// rendered as JSON.
func text(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case bool:
		return "", false
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(raw), true
	}
}

// firstFieldError picks the alphabetically first key whose value is a
// string or a list of strings, the shape of a serializer validation error.
func firstFieldError(m map[string]any) (field, msg string, ok bool) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return k, v, true
			}
		case []any:
			if s := joinStrings(v); s != "" {
				return k, s, true
			}
		}
	}
	return "", "", false
}

func joinStrings(list []any) string {
	parts := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxRawMessage {
		return s
	}
	return string(r[:maxRawMessage]) + "..."
}
