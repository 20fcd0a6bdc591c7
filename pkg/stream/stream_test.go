package stream_test

import (
	"errors"

	"github.com/killallgit/ada/pkg/display"
	"github.com/killallgit/ada/pkg/stream"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// failingSink rejects every update.
type failingSink struct {
	*display.Recorder
}

func (failingSink) UpdateMessage(display.Handle, string) error {
	return errors.New("gone")
}

var _ = Describe("Accumulator", func() {
	It("should concatenate deltas and report a growing length", func() {
		var acc stream.Accumulator

		Expect(acc.Append("Hel")).To(Equal(3))
		Expect(acc.Append("")).To(Equal(3))
		Expect(acc.Append("lo")).To(Equal(5))
		Expect(acc.Current()).To(Equal("Hello"))

		acc.Reset()
		Expect(acc.Len()).To(BeZero())
		Expect(acc.Current()).To(BeEmpty())
	})

	It("should keep the length monotonic", func() {
		var acc stream.Accumulator
		last := 0
		for _, delta := range []string{"a", "", "bc", "", "", "défg"} {
			n := acc.Append(delta)
			Expect(n).To(BeNumerically(">=", last))
			last = n
		}
	})
})

var _ = Describe("State", func() {
	It("should accept a single handle", func() {
		var st stream.State
		Expect(st.Attach(display.MessageRef(1))).To(Succeed())
		Expect(st.Attach(display.MessageRef(2))).To(MatchError(stream.ErrHandleExists))
		Expect(st.Handle).To(Equal(display.MessageRef(1)))
	})

	It("should track the first non-empty delta", func() {
		var st stream.State
		Expect(st.FirstDelta()).To(BeTrue())
		st.Append("")
		Expect(st.FirstDelta()).To(BeTrue())
		st.Append("x")
		Expect(st.FirstDelta()).To(BeFalse())
	})

	It("should clear everything on reset", func() {
		st := stream.State{LastRenderedLength: 4, Carry: "data: {", Finalized: true}
		st.Append("text")
		Expect(st.Attach(display.MessageRef(7))).To(Succeed())

		st.Reset()
		Expect(st.Text.Len()).To(BeZero())
		Expect(st.LastRenderedLength).To(BeZero())
		Expect(st.Handle).To(BeNil())
		Expect(st.Carry).To(BeEmpty())
		Expect(st.Finalized).To(BeFalse())
		Expect(st.FirstDelta()).To(BeTrue())
	})
})

var _ = Describe("Reconciler", func() {
	var (
		sink *display.Recorder
		rec  *stream.Reconciler
		st   stream.State
	)

	BeforeEach(func() {
		sink = display.NewRecorder()
		rec = stream.NewReconciler(sink)
		st = stream.State{}
	})

	It("should do nothing until the text grows", func() {
		changed, err := rec.ReconcileIfGrown("", &st)
		Expect(err).NotTo(HaveOccurred())
		Expect(changed).To(BeFalse())
		Expect(sink.Len()).To(BeZero())
	})

	It("should create once and then update with the full text", func() {
		_, err := rec.ReconcileIfGrown("Hel", &st)
		Expect(err).NotTo(HaveOccurred())
		_, err = rec.ReconcileIfGrown("Hello", &st)
		Expect(err).NotTo(HaveOccurred())

		creates, updates, _, scrolls, _ := sink.Calls()
		Expect(creates).To(Equal(1))
		Expect(updates).To(Equal(1))
		Expect(scrolls).To(Equal(2))

		entries := sink.Entries()
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Sender).To(Equal(display.SenderAssistant))
		Expect(entries[0].Text).To(Equal("Hello"))
		Expect(st.LastRenderedLength).To(Equal(5))
	})

	It("should skip repeats of the same length", func() {
		_, _ = rec.ReconcileIfGrown("same", &st)
		changed, err := rec.ReconcileIfGrown("same", &st)
		Expect(err).NotTo(HaveOccurred())
		Expect(changed).To(BeFalse())

		_, updates, _, _, _ := sink.Calls()
		Expect(updates).To(BeZero())
	})

	It("should never create a second message within a turn", func() {
		text := ""
		for _, delta := range []string{"a", "b", "", "c", "d"} {
			text += delta
			_, err := rec.ReconcileIfGrown(text, &st)
			Expect(err).NotTo(HaveOccurred())
		}
		creates, _, _, _, _ := sink.Calls()
		Expect(creates).To(Equal(1))
	})

	It("should report update failures", func() {
		failing := stream.NewReconciler(failingSink{display.NewRecorder()})
		_, err := failing.ReconcileIfGrown("a", &st)
		Expect(err).NotTo(HaveOccurred())
		_, err = failing.ReconcileIfGrown("ab", &st)
		Expect(err).To(MatchError(ContainSubstring("gone")))
		Expect(st.LastRenderedLength).To(Equal(1))
	})
})

var _ = Describe("TrimEcho", func() {
	DescribeTable("stripping the previous reply",
		func(previous, delta, want string) {
			Expect(stream.TrimEcho(previous, delta)).To(Equal(want))
		},
		Entry("no previous reply", "", "Hello", "Hello"),
		Entry("unrelated delta", "Hi there", "Sure", "Sure"),
		Entry("echo followed by new text", "Hi there", "Hi there Sure", " Sure"),
		Entry("pure echo", "Hi there", "Hi there", ""),
		Entry("delta shorter than previous", "Hi there", "Hi", "Hi"),
	)
})
