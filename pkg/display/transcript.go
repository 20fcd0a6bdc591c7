package display

import "sync"

// Entry is one message held by a Transcript.
type Entry struct {
	ID     int
	Sender Sender
	Text   string
}

// Transcript is an ordered, handle-addressed list of messages. Sinks embed it
// and decide how its entries are drawn.
type Transcript struct {
	mu      sync.RWMutex
	entries []Entry
	nextID  int
}

func (t *Transcript) CreateMessage(sender Sender, text string) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	t.entries = append(t.entries, Entry{ID: t.nextID, Sender: sender, Text: text})
	return MessageRef(t.nextID)
}

func (t *Transcript) UpdateMessage(h Handle, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.index(h)
	if i < 0 {
		return ErrUnknownHandle
	}
	t.entries[i].Text = text
	return nil
}

func (t *Transcript) RemoveMessage(h Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.index(h)
	if i < 0 {
		return ErrUnknownHandle
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	return nil
}

func (t *Transcript) ScrollToLatest() {}

func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
}

// Entries returns a copy of the current messages in display order.
func (t *Transcript) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

func (t *Transcript) index(h Handle) int {
	if h == nil {
		return -1
	}
	id := h.MessageID()
	for i, e := range t.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
