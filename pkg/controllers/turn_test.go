package controllers_test

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/killallgit/ada/pkg/chat"
	"github.com/killallgit/ada/pkg/config"
	"github.com/killallgit/ada/pkg/controllers"
	"github.com/killallgit/ada/pkg/decoder"
	"github.com/killallgit/ada/pkg/display"
	"github.com/killallgit/ada/pkg/events"
	"github.com/killallgit/ada/pkg/history"
	"github.com/killallgit/ada/pkg/provider"
	"github.com/killallgit/ada/pkg/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// scripted emits chunks in order and then returns err.
func scripted(err error, chunks ...string) transport.Dispatcher {
	return transport.DispatcherFunc(func(ctx context.Context, _ transport.Request, emit transport.Emitter) error {
		for _, c := range chunks {
			emit(c)
		}
		return err
	})
}

// blocking holds the dispatch open until its context ends.
func blocking() transport.Dispatcher {
	return transport.DispatcherFunc(func(ctx context.Context, _ transport.Request, _ transport.Emitter) error {
		<-ctx.Done()
		return ctx.Err()
	})
}

func openAIChunk(text string) string {
	return "data: {\"choices\":[{\"delta\":{\"content\":\"" + text + "\"}}]}\n"
}

var _ = Describe("TurnController", func() {
	var (
		ctx       context.Context
		cancel    context.CancelFunc
		sink      *display.Recorder
		store     *history.MemoryStore
		session   *chat.Session
		table     *transport.Table
		selection *controllers.StaticSelection
		ctrl      *controllers.TurnController
	)

	register := func(p provider.Provider, d transport.Dispatcher) {
		dec, err := decoder.New(p, decoder.Options{})
		Expect(err).NotTo(HaveOccurred())
		table.Register(p, transport.Entry{Dispatcher: d, Decoder: dec})
	}

	await := func() {
		waitCtx, done := context.WithTimeout(ctx, 5*time.Second)
		defer done()
		Expect(ctrl.Await(waitCtx)).To(Succeed())
	}

	systemMessages := func() []string {
		var out []string
		for _, e := range sink.Entries() {
			if e.Sender == display.SenderSystem {
				out = append(out, e.Text)
			}
		}
		return out
	}

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		sink = display.NewRecorder()
		store = history.NewMemoryStore()
		session = chat.NewSession(nil, "You are Ada.", 10)
		table = transport.NewEmptyTable()
		selection = &controllers.StaticSelection{Selector: "openai:gpt-4o"}
		ctrl = controllers.NewTurnController(ctx, controllers.Options{
			Sink:         sink,
			Store:        store,
			Session:      session,
			Table:        table,
			Bus:          events.NewBus(),
			Selection:    selection,
			SuppressEcho: true,
		})
	})

	AfterEach(func() {
		ctrl.Close()
		cancel()
	})

	Describe("Submit", func() {
		It("should ignore blank input", func() {
			Expect(ctrl.Submit("   \n")).To(Equal(controllers.OutcomeIgnored))
			Expect(session.Len()).To(BeZero())
			Expect(sink.Len()).To(BeZero())
		})

		DescribeTable("quit words",
			func(input string) {
				Expect(ctrl.Submit(input)).To(Equal(controllers.OutcomeQuit))
				Expect(session.Len()).To(BeZero())
			},
			Entry("exit", "exit"),
			Entry("quit with spaces", "  quit "),
			Entry("upper case", "EXIT"),
		)

		It("should stream a reply into one message and persist it", func() {
			register(provider.OpenAI, scripted(nil,
				openAIChunk("Hel"),
				openAIChunk("lo"),
				"data: [DONE]\n",
			))

			Expect(ctrl.Submit("Say hello")).To(Equal(controllers.OutcomeSent))
			Expect(ctrl.State()).To(Equal(controllers.StateSending))
			await()

			Expect(ctrl.State()).To(Equal(controllers.StateIdle))
			Expect(ctrl.Events()).To(BeNil())

			creates, updates, _, _, _ := sink.Calls()
			Expect(creates).To(Equal(2))
			Expect(updates).To(Equal(1))

			reply, ok := sink.Last(display.SenderAssistant)
			Expect(ok).To(BeTrue())
			Expect(reply.Text).To(Equal("Hello"))

			msgs := session.Messages()
			Expect(msgs).To(HaveLen(2))
			Expect(msgs[0].Role).To(Equal(chat.RoleUser))
			Expect(msgs[0].Content).To(Equal("Say hello"))
			Expect(msgs[1].Role).To(Equal(chat.RoleAssistant))
			Expect(msgs[1].Content).To(Equal("Hello"))

			stored, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(HaveLen(2))
			Expect(store.Saves()).To(Equal(2))
		})

		It("should send the system prompt and windowed history", func() {
			var got transport.Request
			register(provider.OpenAI, transport.DispatcherFunc(func(_ context.Context, req transport.Request, emit transport.Emitter) error {
				got = req
				emit("data: [DONE]\n")
				return nil
			}))

			Expect(ctrl.Submit("first")).To(Equal(controllers.OutcomeSent))
			await()

			Expect(got.Model).To(Equal("gpt-4o"))
			Expect(got.Messages).To(HaveLen(2))
			Expect(got.Messages[0].Role).To(Equal(chat.RoleSystem))
			Expect(got.Messages[0].Content).To(Equal("You are Ada."))
			Expect(got.Messages[1].Content).To(Equal("first"))
		})

		It("should split the selector on its first colon", func() {
			var got transport.Request
			register(provider.Local, transport.DispatcherFunc(func(_ context.Context, req transport.Request, emit transport.Emitter) error {
				got = req
				emit(`{"message":{"content":"ok"},"done":true}`)
				return nil
			}))
			Expect(selection.Select("local:llama3.2:1b")).To(Succeed())

			Expect(ctrl.Submit("hi")).To(Equal(controllers.OutcomeSent))
			await()
			Expect(got.Model).To(Equal("llama3.2:1b"))
		})

		It("should reject a second submit while streaming", func() {
			register(provider.OpenAI, blocking())

			Expect(ctrl.Submit("one")).To(Equal(controllers.OutcomeSent))
			Expect(ctrl.Submit("two")).To(Equal(controllers.OutcomeBusy))
			Expect(session.Len()).To(Equal(1))

			ctrl.Close()
			Expect(ctrl.State()).To(Equal(controllers.StateIdle))
			Expect(session.Len()).To(Equal(1))
		})

		It("should fail on an unknown provider", func() {
			selection.Selector = "mistral:large"

			Expect(ctrl.Submit("hi")).To(Equal(controllers.OutcomeFailed))
			Expect(ctrl.State()).To(Equal(controllers.StateIdle))
			Expect(systemMessages()).To(ConsistOf(ContainSubstring("unknown provider")))
			Expect(session.Len()).To(Equal(1))
		})

		It("should fail on a provider with no transport", func() {
			Expect(ctrl.Submit("hi")).To(Equal(controllers.OutcomeFailed))
			Expect(systemMessages()).To(ConsistOf(HavePrefix("Error: unknown provider")))
		})

		It("should fail on an empty model", func() {
			selection.Selector = "openai:"

			Expect(ctrl.Submit("hi")).To(Equal(controllers.OutcomeFailed))
			Expect(systemMessages()).To(ConsistOf(ContainSubstring("invalid model selector")))
		})
	})

	Describe("failures", func() {
		It("should remove the partial reply when the transport fails", func() {
			register(provider.OpenAI, scripted(errors.New("connection reset"), openAIChunk("part")))

			Expect(ctrl.Submit("hi")).To(Equal(controllers.OutcomeSent))
			await()

			_, ok := sink.Last(display.SenderAssistant)
			Expect(ok).To(BeFalse())
			Expect(systemMessages()).To(Equal([]string{"Error: connection reset"}))
			Expect(ctrl.Err()).To(MatchError("connection reset"))
			Expect(session.Messages()).To(HaveLen(1))
			Expect(ctrl.State()).To(Equal(controllers.StateIdle))
		})

		It("should surface a missing API key", func() {
			cfg := &config.Config{}
			live, err := transport.NewTable(cfg, transport.WithHTTPClient(http.DefaultClient))
			Expect(err).NotTo(HaveOccurred())
			entry, err := live.Lookup(provider.OpenAI)
			Expect(err).NotTo(HaveOccurred())
			table.Register(provider.OpenAI, entry)

			Expect(ctrl.Submit("hi")).To(Equal(controllers.OutcomeSent))
			await()
			Expect(systemMessages()).To(Equal([]string{"Error: OpenAI API key is not set."}))
		})

		It("should fail on an error inside the stream", func() {
			selection.Selector = "anthropic:claude-3-haiku-20240307"
			register(provider.Anthropic, scripted(nil,
				"data: {\"type\":\"content_block_delta\",\"delta\":{\"text\":\"Hi\"}}\n",
				"data: {\"type\":\"error\",\"error\":{\"message\":\"Overloaded\"}}\n",
			))

			Expect(ctrl.Submit("hi")).To(Equal(controllers.OutcomeSent))
			await()

			Expect(systemMessages()).To(Equal([]string{"Error: anthropic: Overloaded"}))
			_, ok := sink.Last(display.SenderAssistant)
			Expect(ok).To(BeFalse())
		})

		It("should surface persistence errors without rolling back", func() {
			store.FailWith(errors.New("disk full"))
			register(provider.OpenAI, scripted(nil, openAIChunk("ok"), "data: [DONE]\n"))

			Expect(ctrl.Submit("hi")).To(Equal(controllers.OutcomeSent))
			await()

			Expect(systemMessages()).To(Equal([]string{
				"Error: failed to save chat history: disk full",
				"Error: failed to save chat history: disk full",
			}))
			Expect(session.Messages()).To(HaveLen(2))
		})
	})

	Describe("HandleEvent", func() {
		It("should ignore events from another turn", func() {
			register(provider.OpenAI, blocking())
			Expect(ctrl.Submit("hi")).To(Equal(controllers.OutcomeSent))

			ctrl.HandleEvent(events.Event{Topic: "openai", TurnID: "someone-else", Kind: events.KindChunk, Raw: openAIChunk("stale")})
			ctrl.HandleEvent(events.Event{Topic: "openai", TurnID: "someone-else", Kind: events.KindSettled})

			Expect(ctrl.State()).To(Equal(controllers.StateSending))
			_, ok := sink.Last(display.SenderAssistant)
			Expect(ok).To(BeFalse())
		})

		It("should ignore events while idle", func() {
			ctrl.HandleEvent(events.Event{Topic: "openai", Kind: events.KindChunk, Raw: openAIChunk("x")})
			Expect(sink.Len()).To(BeZero())
		})

		It("should finalize on settle and decode the remaining carry", func() {
			selection.Selector = "local:llama3.2"
			register(provider.Local, scripted(nil,
				"{\"message\":{\"content\":\"Hi\"},\"done\":false}\n{\"message\":{\"content\":\" there\"},",
				"\"done\":false}",
			))

			Expect(ctrl.Submit("hi")).To(Equal(controllers.OutcomeSent))
			await()

			msgs := session.Messages()
			Expect(msgs).To(HaveLen(2))
			Expect(msgs[1].Content).To(Equal("Hi there"))
		})
	})

	Describe("Finalize", func() {
		It("should be idempotent", func() {
			register(provider.OpenAI, scripted(nil, openAIChunk("once"), "data: [DONE]\n"))
			Expect(ctrl.Submit("hi")).To(Equal(controllers.OutcomeSent))
			await()
			saves := store.Saves()

			ctrl.Finalize()
			ctrl.Finalize()

			Expect(store.Saves()).To(Equal(saves))
			Expect(session.Messages()).To(HaveLen(2))
		})

		It("should not store an empty reply", func() {
			register(provider.OpenAI, scripted(nil, openAIChunk("   "), "data: [DONE]\n"))
			Expect(ctrl.Submit("hi")).To(Equal(controllers.OutcomeSent))
			await()

			Expect(session.Messages()).To(HaveLen(1))
			_, ok := sink.Last(display.SenderAssistant)
			Expect(ok).To(BeFalse())
		})

		It("should strip an echo of the previous reply", func() {
			register(provider.OpenAI, scripted(nil, openAIChunk("Hi there"), "data: [DONE]\n"))
			Expect(ctrl.Submit("greet me")).To(Equal(controllers.OutcomeSent))
			await()

			register(provider.OpenAI, scripted(nil, openAIChunk("Hi there Sure"), openAIChunk("!"), "data: [DONE]\n"))
			Expect(ctrl.Submit("again")).To(Equal(controllers.OutcomeSent))
			await()

			msgs := session.Messages()
			Expect(msgs).To(HaveLen(4))
			Expect(msgs[3].Content).To(Equal("Sure!"))
		})

		It("should keep a reply that starts with the previous one when suppression is off", func() {
			ctrl.Close()
			ctrl = controllers.NewTurnController(ctx, controllers.Options{
				Sink:      sink,
				Store:     store,
				Session:   session,
				Table:     table,
				Bus:       events.NewBus(),
				Selection: selection,
			})

			register(provider.OpenAI, scripted(nil, openAIChunk("OK"), "data: [DONE]\n"))
			Expect(ctrl.Submit("ready?")).To(Equal(controllers.OutcomeSent))
			await()

			register(provider.OpenAI, scripted(nil, openAIChunk("OK, done"), "data: [DONE]\n"))
			Expect(ctrl.Submit("and now?")).To(Equal(controllers.OutcomeSent))
			await()

			msgs := session.Messages()
			Expect(msgs).To(HaveLen(4))
			Expect(msgs[3].Content).To(Equal("OK, done"))
		})
	})

	Describe("Clear", func() {
		It("should empty history and the display", func() {
			register(provider.OpenAI, scripted(nil, openAIChunk("x"), "data: [DONE]\n"))
			Expect(ctrl.Submit("hi")).To(Equal(controllers.OutcomeSent))
			await()

			Expect(ctrl.Clear()).To(Succeed())
			Expect(session.Len()).To(BeZero())
			Expect(sink.Len()).To(BeZero())

			stored, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(BeEmpty())
		})

		It("should refuse while a turn is active", func() {
			register(provider.OpenAI, blocking())
			Expect(ctrl.Submit("hi")).To(Equal(controllers.OutcomeSent))

			Expect(ctrl.Clear()).To(MatchError(controllers.ErrTurnActive))
			Expect(session.Len()).To(Equal(1))
		})
	})

	Describe("Replay", func() {
		It("should show stored history with labels", func() {
			session.Replace([]chat.Message{
				chat.NewUserMessage("old question"),
				chat.NewAssistantMessage("old answer"),
			})
			ctrl.Replay()

			entries := sink.Entries()
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].Sender).To(Equal(display.SenderUser))
			Expect(entries[1].Sender).To(Equal(display.SenderAssistant))
		})
	})

	It("should stop awaiting when the context ends", func() {
		register(provider.OpenAI, blocking())
		Expect(ctrl.Submit("hi")).To(Equal(controllers.OutcomeSent))

		short, done := context.WithTimeout(ctx, 20*time.Millisecond)
		defer done()
		Expect(ctrl.Await(short)).To(MatchError(context.DeadlineExceeded))
		Expect(ctrl.State()).To(Equal(controllers.StateIdle))
	})
})

var _ = Describe("StaticSelection", func() {
	It("should validate selectors", func() {
		s := &controllers.StaticSelection{Selector: "openai:gpt-4o"}
		Expect(s.Select("groq")).To(MatchError(provider.ErrInvalidSelector))
		Expect(s.Select("groq:mixtral-8x7b-32768")).To(Succeed())
		Expect(s.Selected()).To(Equal("groq:mixtral-8x7b-32768"))
	})
})

var _ = Describe("State", func() {
	It("should name every state", func() {
		Expect(controllers.StateIdle.String()).To(Equal("idle"))
		Expect(controllers.StateSending.String()).To(Equal("sending"))
		Expect(controllers.StateStreaming.String()).To(Equal("streaming"))
		Expect(controllers.StateFinalizing.String()).To(Equal("finalizing"))
		Expect(controllers.OutcomeBusy.String()).To(Equal("busy"))
	})
})
