package chat_test

import (
	"github.com/killallgit/ada/pkg/chat"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Conversation", func() {
	var history []chat.Message

	BeforeEach(func() {
		history = []chat.Message{
			chat.NewUserMessage("First"),
			chat.NewAssistantMessage("Second"),
			chat.NewUserMessage("Third"),
			chat.NewAssistantMessage("Fourth"),
		}
	})

	Describe("BuildContext", func() {
		It("should put the system prompt first", func() {
			ctx := chat.BuildContext(history, "Be brief.", 0)

			Expect(ctx).To(HaveLen(5))
			Expect(ctx[0].Role).To(Equal(chat.RoleSystem))
			Expect(ctx[0].Content).To(Equal("Be brief."))
			Expect(ctx[4].Content).To(Equal("Fourth"))
		})

		It("should keep only the last window messages", func() {
			ctx := chat.BuildContext(history, "", 2)

			Expect(ctx).To(HaveLen(2))
			Expect(ctx[0].Content).To(Equal("Third"))
			Expect(ctx[1].Content).To(Equal("Fourth"))
		})

		It("should drop system messages stored in history", func() {
			withSystem := append([]chat.Message{chat.NewSystemMessage("old prompt")}, history...)
			ctx := chat.BuildContext(withSystem, "new prompt", 0)

			Expect(chat.GetMessagesByRole(ctx, chat.RoleSystem)).To(HaveLen(1))
			Expect(ctx[0].Content).To(Equal("new prompt"))
		})

		It("should strip timestamps", func() {
			for _, msg := range chat.BuildContext(history, "", 0) {
				Expect(msg.Timestamp.IsZero()).To(BeTrue())
			}
		})
	})

	Describe("GetLastMessage", func() {
		It("should return false for an empty history", func() {
			_, found := chat.GetLastMessage(nil)
			Expect(found).To(BeFalse())
		})

		It("should return the last message", func() {
			msg, found := chat.GetLastMessage(history)
			Expect(found).To(BeTrue())
			Expect(msg.Content).To(Equal("Fourth"))
		})
	})

	Describe("GetLastAssistantMessage", func() {
		It("should skip trailing user messages", func() {
			msg, found := chat.GetLastAssistantMessage(append(history, chat.NewUserMessage("Fifth")))
			Expect(found).To(BeTrue())
			Expect(msg.Content).To(Equal("Fourth"))
		})

		It("should return false when there is no reply yet", func() {
			_, found := chat.GetLastAssistantMessage(history[:1])
			Expect(found).To(BeFalse())
		})
	})

	Describe("GetMessagesByRole", func() {
		It("should filter by role", func() {
			users := chat.GetMessagesByRole(history, chat.RoleUser)
			Expect(users).To(HaveLen(2))
			Expect(users[1].Content).To(Equal("Third"))
		})
	})
})
