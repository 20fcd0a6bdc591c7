package chat

import "github.com/killallgit/ada/pkg/events"

// eventMsg carries one bus event into Update.
type eventMsg struct {
	event events.Event
	ok    bool
}

// ModelsChangedMsg replaces the selector list after the settings file
// changed on disk.
type ModelsChangedMsg struct {
	Models []string
}
