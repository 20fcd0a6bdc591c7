package stream

import (
	"fmt"

	"github.com/killallgit/ada/pkg/display"
)

// Reconciler pushes accumulated text to a sink whenever it has grown since
// the last render.
type Reconciler struct {
	sink display.Sink
}

func NewReconciler(sink display.Sink) *Reconciler {
	return &Reconciler{sink: sink}
}

// ReconcileIfGrown creates the assistant message on first growth and updates
// it with the full text afterwards. It reports whether the sink was touched.
func (r *Reconciler) ReconcileIfGrown(text string, st *State) (bool, error) {
	if len(text) <= st.LastRenderedLength {
		return false, nil
	}

	if st.Handle == nil {
		if err := st.Attach(r.sink.CreateMessage(display.SenderAssistant, text)); err != nil {
			return false, err
		}
	} else if err := r.sink.UpdateMessage(st.Handle, text); err != nil {
		return false, fmt.Errorf("failed to update assistant message: %w", err)
	}

	r.sink.ScrollToLatest()
	st.LastRenderedLength = len(text)
	return true, nil
}
