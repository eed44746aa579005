package patient

import (
	"encoding/json"
	"strings"
)

// CoerceList normalizes a list-valued intake field. Upstream records carry
// these either as real arrays or as JSON-encoded strings ("[\"fever\"]");
// a plain non-JSON string becomes a comma-separated list. Anything else
// yields nil.
func CoerceList(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case []string:
		return cleanList(val)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return cleanList(out)
	case json.RawMessage:
		return CoerceList(decodeRaw(val))
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil
		}
		if strings.HasPrefix(s, "[") {
			var list []any
			if err := json.Unmarshal([]byte(s), &list); err == nil {
				return CoerceList(list)
			}
		}
		return cleanList(strings.Split(s, ","))
	default:
		return nil
	}
}

func decodeRaw(raw json.RawMessage) any {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
