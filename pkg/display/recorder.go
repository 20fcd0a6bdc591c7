package display

import "sync"

// Recorder is a Sink that keeps its transcript and counts every call. It is
// used by tests and by dry runs.
type Recorder struct {
	Transcript

	mu      sync.Mutex
	creates int
	updates int
	removes int
	scrolls int
	clears  int
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) CreateMessage(sender Sender, text string) Handle {
	r.count(&r.creates)
	return r.Transcript.CreateMessage(sender, text)
}

func (r *Recorder) UpdateMessage(h Handle, text string) error {
	r.count(&r.updates)
	return r.Transcript.UpdateMessage(h, text)
}

func (r *Recorder) RemoveMessage(h Handle) error {
	r.count(&r.removes)
	return r.Transcript.RemoveMessage(h)
}

func (r *Recorder) ScrollToLatest() {
	r.count(&r.scrolls)
}

func (r *Recorder) Clear() {
	r.count(&r.clears)
	r.Transcript.Clear()
}

// Calls reports how often each Sink method was invoked.
func (r *Recorder) Calls() (creates, updates, removes, scrolls, clears int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.creates, r.updates, r.removes, r.scrolls, r.clears
}

// Last returns the most recent entry sent by sender.
func (r *Recorder) Last(sender Sender) (Entry, bool) {
	entries := r.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Sender == sender {
			return entries[i], true
		}
	}
	return Entry{}, false
}

func (r *Recorder) count(n *int) {
	r.mu.Lock()
	*n++
	r.mu.Unlock()
}
