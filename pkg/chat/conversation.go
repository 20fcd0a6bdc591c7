package chat

// BuildContext returns the sequence sent to a provider: the system prompt
// first when set, then the last window messages of history. A window of zero
// or less sends the whole history.
func BuildContext(history []Message, systemPrompt string, window int) []Message {
	start := 0
	if window > 0 && len(history) > window {
		start = len(history) - window
	}

	result := make([]Message, 0, len(history)-start+1)
	if systemPrompt != "" {
		result = append(result, Message{Role: RoleSystem, Content: systemPrompt})
	}
	for _, msg := range history[start:] {
		if msg.IsSystem() {
			continue
		}
		result = append(result, Message{Role: msg.Role, Content: msg.Content})
	}
	return result
}

func GetLastMessage(messages []Message) (Message, bool) {
	if len(messages) == 0 {
		return Message{}, false
	}
	return messages[len(messages)-1], true
}

func GetLastAssistantMessage(messages []Message) (Message, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].IsAssistant() {
			return messages[i], true
		}
	}
	return Message{}, false
}

func GetMessagesByRole(messages []Message, role string) []Message {
	var result []Message
	for _, msg := range messages {
		if msg.Role == role {
			result = append(result, msg)
		}
	}
	return result
}
