package parser

import "strings"

// ParseClusterName returns the value of the first "Name:" line of
// `isi cluster identity view`, or false when there is none.
func ParseClusterName(raw string) (string, bool) {
	for _, line := range strings.Split(raw, "\n") {
		key, value, found := strings.Cut(strings.TrimSpace(line), ":")
		if !found || strings.TrimSpace(key) != "Name" {
			continue
		}
		if name := strings.TrimSpace(value); name != "" {
			return name, true
		}
	}
	return "", false
}
