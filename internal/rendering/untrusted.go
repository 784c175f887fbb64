package rendering

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	untrustedPolicyOnce sync.Once
	untrustedPolicy     *bluemonday.Policy
)

// UntrustedPolicy strips every element and attribute and escapes what is left,
// so the result is inert when placed in HTML text or a quoted attribute.
func UntrustedPolicy() *bluemonday.Policy {
	untrustedPolicyOnce.Do(func() {
		untrustedPolicy = bluemonday.StrictPolicy()
	})
	return untrustedPolicy
}

// StripUntrusted returns a deep copy of ctx with every string passed through
// UntrustedPolicy. The renderer itself never escapes, so callers publishing
// documents they did not write run their context through this first.
func StripUntrusted(ctx map[string]any) map[string]any {
	out, _ := stripValue(ctx).(map[string]any)
	if out == nil {
		return map[string]any{}
	}
	return out
}

func stripValue(v any) any {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(UntrustedPolicy().Sanitize(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = stripValue(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = stripValue(val)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = stripValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = stripValue(val)
		}
		return out
	default:
		return v
	}
}
