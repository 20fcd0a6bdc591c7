package stream

import "strings"

// TrimEcho strips a repeat of the previous turn's final text from the start
// of the first delta of a new turn.
func TrimEcho(previous, delta string) string {
	if previous == "" || !strings.HasPrefix(delta, previous) {
		return delta
	}
	return delta[len(previous):]
}
