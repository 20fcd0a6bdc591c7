package chat

import (
	"strings"
	"time"
)

type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

func NewUserMessage(content string) Message {
	return Message{
		Role:      RoleUser,
		Content:   strings.TrimSpace(content),
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage trims the streamed text before it is stored.
func NewAssistantMessage(content string) Message {
	return Message{
		Role:      RoleAssistant,
		Content:   strings.TrimSpace(content),
		Timestamp: time.Now(),
	}
}

func NewSystemMessage(content string) Message {
	return Message{
		Role:      RoleSystem,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

func (m Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

func (m Message) IsSystem() bool {
	return m.Role == RoleSystem
}

func (m Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == ""
}

// Label is the sender name shown next to a message.
func (m Message) Label() string {
	return RoleLabel(m.Role)
}

func RoleLabel(role string) string {
	switch role {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "AI"
	default:
		return "System"
	}
}

func (m Message) WithTimestamp(t time.Time) Message {
	return Message{
		Role:      m.Role,
		Content:   m.Content,
		Timestamp: t,
	}
}
