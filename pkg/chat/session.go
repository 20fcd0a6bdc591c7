package chat

// Session owns the persisted chat history for one run of the client. It holds
// user and assistant turns only; the system prompt is added when the provider
// context is built.
type Session struct {
	messages     []Message
	systemPrompt string
	window       int
}

func NewSession(history []Message, systemPrompt string, window int) *Session {
	s := &Session{systemPrompt: systemPrompt, window: window}
	s.Replace(history)
	return s
}

func (s *Session) Append(msg Message) {
	s.messages = append(s.messages, msg)
}

// Replace swaps the whole history. System messages are not history and are
// dropped.
func (s *Session) Replace(history []Message) {
	s.messages = make([]Message, 0, len(history))
	for _, msg := range history {
		if msg.IsSystem() {
			continue
		}
		s.messages = append(s.messages, msg)
	}
}

func (s *Session) Clear() {
	s.messages = make([]Message, 0)
}

// Messages returns a copy of the history.
func (s *Session) Messages() []Message {
	result := make([]Message, len(s.messages))
	copy(result, s.messages)
	return result
}

func (s *Session) Len() int {
	return len(s.messages)
}

func (s *Session) Context() []Message {
	return BuildContext(s.messages, s.systemPrompt, s.window)
}

func (s *Session) SystemPrompt() string {
	return s.systemPrompt
}

func (s *Session) SetSystemPrompt(prompt string) {
	s.systemPrompt = prompt
}

func (s *Session) SetWindow(window int) {
	s.window = window
}
