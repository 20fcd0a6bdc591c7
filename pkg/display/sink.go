// Package display defines where chat messages are shown.
package display

import (
	"errors"

	"github.com/killallgit/ada/pkg/chat"
	"github.com/killallgit/ada/pkg/logger"
)

var log = logger.WithComponent("display")

// Sender labels a displayed message.
type Sender string

const (
	SenderUser      Sender = "You"
	SenderAssistant Sender = "AI"
	SenderSystem    Sender = "System"
)

var ErrUnknownHandle = errors.New("unknown message handle")

// SenderForRole maps a history role onto its display label.
func SenderForRole(role string) Sender {
	return Sender(chat.RoleLabel(role))
}

// Handle refers to one message previously created on a Sink.
type Handle interface {
	MessageID() int
}

// MessageRef is the Handle implementation used by the sinks in this module.
type MessageRef int

func (r MessageRef) MessageID() int {
	return int(r)
}

// Sink is the surface the turn controller writes to. UpdateMessage always
// receives the full text of the message, never a delta.
type Sink interface {
	CreateMessage(sender Sender, text string) Handle
	UpdateMessage(h Handle, text string) error
	RemoveMessage(h Handle) error
	ScrollToLatest()
	Clear()
}

// Replay shows stored history on sink, skipping empty messages.
func Replay(sink Sink, history []chat.Message) {
	for _, msg := range history {
		if msg.IsEmpty() {
			continue
		}
		sink.CreateMessage(SenderForRole(msg.Role), msg.Content)
	}
	sink.ScrollToLatest()
}
