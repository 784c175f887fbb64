// Package sanitize repairs known character-encoding corruption in resume text.
package sanitize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// replacements is the ordered repair table. Patterns that share a prefix with a
// shorter pattern must come first: "â€" alone is a damaged closing quote, but it
// is also the head of every other three-byte punctuation sequence below.
var replacements = []string{
	"â€“", "–",
	"--", "–",
	"â€”", "—",
	"â€™", "’",
	"â€˜", "‘",
	"â€œ", "“",
	"â€\u009d", "”",
	"â€¢", "•",
	"â€¦", "…",
	"â€", "”",
	"Â·", "·",
	"Â\u00a0", " ",
	"Â ", " ",
}

var replacer = strings.NewReplacer(replacements...)

// Table returns a copy of the repair table as (corrupted, repaired) pairs in
// the order they are tried.
func Table() [][2]string {
	pairs := make([][2]string, 0, len(replacements)/2)
	for i := 0; i+1 < len(replacements); i += 2 {
		pairs = append(pairs, [2]string{replacements[i], replacements[i+1]})
	}
	return pairs
}

// String repairs s. Every replacement shortens the text by at least one rune,
// so repeating until nothing changes terminates, and the result is a fixed
// point: String(String(s)) == String(s).
func String(s string) string {
	for {
		next := replacer.Replace(s)
		if next == s {
			return s
		}
		s = next
	}
}

// Value converts a scalar to text and repairs it. nil yields "".
func Value(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return String(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case fmt.Stringer:
		return String(t.String())
	default:
		return String(fmt.Sprint(t))
	}
}
