package decoder

import (
	"regexp"
	"strconv"
	"strings"
)

var contentPattern = regexp.MustCompile(`"content"\s*:\s*"([^"]*)"`)

// fallbackContent recovers every "content":"..." string from a record that
// is not valid JSON.
func fallbackContent(payload string) string {
	var out strings.Builder
	for _, m := range contentPattern.FindAllStringSubmatch(payload, -1) {
		if s, err := strconv.Unquote(`"` + m[1] + `"`); err == nil {
			out.WriteString(s)
			continue
		}
		out.WriteString(m[1])
	}
	return out.String()
}
