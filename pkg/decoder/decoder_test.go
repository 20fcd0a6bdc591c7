package decoder_test

import (
	"strings"

	"github.com/killallgit/ada/pkg/decoder"
	"github.com/killallgit/ada/pkg/provider"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func mustDecoder(p provider.Provider, opts decoder.Options) decoder.Decoder {
	d, err := decoder.New(p, opts)
	Expect(err).NotTo(HaveOccurred())
	return d
}

// feed runs chunks through d the way the controller does and returns every
// text piece, the final done flag and the first stream error.
func feed(d decoder.Decoder, chunks []string) ([]string, bool, error) {
	var pieces []string
	carry := ""
	for _, chunk := range chunks {
		res := d.Decode(chunk, carry)
		pieces = append(pieces, res.Text)
		if res.Err != nil {
			return pieces, false, res.Err
		}
		if res.Done {
			return pieces, true, nil
		}
		carry = res.Carry
	}
	res := d.Flush(carry)
	pieces = append(pieces, res.Text)
	return pieces, res.Done, res.Err
}

var _ = Describe("Decoder", func() {
	Describe("openai", func() {
		var d decoder.Decoder

		BeforeEach(func() {
			d = mustDecoder(provider.OpenAI, decoder.Options{})
		})

		It("should decode deltas and stop on [DONE]", func() {
			chunks := []string{
				"data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n",
				"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n",
				"data: [DONE]\n",
			}

			first := d.Decode(chunks[0], "")
			Expect(first.Text).To(Equal("Hel"))
			Expect(first.Done).To(BeFalse())

			second := d.Decode(chunks[1], first.Carry)
			Expect(second.Text).To(Equal("lo"))
			Expect(second.Done).To(BeFalse())

			third := d.Decode(chunks[2], second.Carry)
			Expect(third.Text).To(BeEmpty())
			Expect(third.Done).To(BeTrue())

			Expect(first.Text + second.Text + third.Text).To(Equal("Hello"))
		})

		It("should treat finish_reason stop as completion", func() {
			res := d.Decode("data: {\"choices\":[{\"delta\":{\"content\":\"!\"},\"finish_reason\":\"stop\"}]}\n", "")
			Expect(res.Text).To(Equal("!"))
			Expect(res.Done).To(BeTrue())
		})

		It("should ignore other finish reasons", func() {
			res := d.Decode("data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"length\"}]}\n", "")
			Expect(res.Done).To(BeFalse())
		})

		It("should handle several records in one chunk", func() {
			raw := "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n\n" +
				"data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\r\n"
			res := d.Decode(raw, "")
			Expect(res.Text).To(Equal("ab"))
			Expect(res.Carry).To(BeEmpty())
		})

		It("should skip the role-only first delta", func() {
			res := d.Decode("data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n", "")
			Expect(res.Text).To(BeEmpty())
			Expect(res.Done).To(BeFalse())
		})

		It("should skip a malformed record without failing", func() {
			res := d.Decode("data: {\"choices\":[{\"delta\":\n", "")
			Expect(res.Text).To(BeEmpty())
			Expect(res.Done).To(BeFalse())
			Expect(res.Err).NotTo(HaveOccurred())
		})

		It("should keep decoding after a malformed record", func() {
			raw := "data: {broken\n" + "data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n"
			res := d.Decode(raw, "")
			Expect(res.Text).To(Equal("ok"))
		})

		It("should report error envelopes", func() {
			res := d.Decode("data: {\"error\":{\"message\":\"Rate limit reached\",\"type\":\"requests\"}}\n", "")
			Expect(res.Err).To(MatchError("openai: Rate limit reached"))
		})

		It("should flush a final unterminated line", func() {
			res := d.Decode("data: {\"choices\":[{\"delta\":{\"content\":\"end\"}}]}", "")
			Expect(res.Text).To(BeEmpty())

			flushed := d.Flush(res.Carry)
			Expect(flushed.Text).To(Equal("end"))
		})
	})

	Describe("groq", func() {
		It("should share the openai framing", func() {
			d := mustDecoder(provider.Groq, decoder.Options{})
			pieces, done, err := feed(d, []string{
				"data: {\"choices\":[{\"delta\":{\"content\":\"fast\"}}]}\n",
				"data: [DONE]\n",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeTrue())
			Expect(strings.Join(pieces, "")).To(Equal("fast"))
		})
	})

	Describe("anthropic", func() {
		var d decoder.Decoder

		BeforeEach(func() {
			d = mustDecoder(provider.Anthropic, decoder.Options{})
		})

		It("should carry a record split across chunks", func() {
			first := d.Decode(`data: {"type":"content_block_delta","del`, "")
			Expect(first.Text).To(BeEmpty())
			Expect(first.Done).To(BeFalse())
			Expect(first.Carry).To(Equal(`data: {"type":"content_block_delta","del`))

			second := d.Decode("ta\":{\"text\":\"Hi\"}}\n", first.Carry)
			Expect(second.Text).To(Equal("Hi"))
			Expect(second.Carry).To(BeEmpty())
		})

		It("should ignore events other than deltas", func() {
			raw := "event: message_start\n" +
				"data: {\"type\":\"message_start\",\"message\":{\"id\":\"msg_1\"}}\n\n" +
				"event: ping\n" +
				"data: {\"type\":\"ping\"}\n\n" +
				": keep-alive\n"
			res := d.Decode(raw, "")
			Expect(res.Text).To(BeEmpty())
			Expect(res.Done).To(BeFalse())
		})

		It("should complete on message_stop", func() {
			raw := "event: content_block_delta\n" +
				"data: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":\"Bye\"}}\n\n" +
				"event: message_stop\n" +
				"data: {\"type\":\"message_stop\"}\n\n"
			res := d.Decode(raw, "")
			Expect(res.Text).To(Equal("Bye"))
			Expect(res.Done).To(BeTrue())
		})

		It("should report stream errors", func() {
			res := d.Decode("data: {\"type\":\"error\",\"error\":{\"type\":\"overloaded_error\",\"message\":\"Overloaded\"}}\n", "")
			Expect(res.Err).To(MatchError("anthropic: Overloaded"))
		})
	})

	Describe("google", func() {
		It("should pass fragments through and stop on the sentinel", func() {
			d := mustDecoder(provider.Google, decoder.Options{})

			res := d.Decode("Hello from **Gemini**", "")
			Expect(res.Text).To(Equal("Hello from **Gemini**"))
			Expect(res.Done).To(BeFalse())

			res = d.Decode("[DONE]", "")
			Expect(res.Text).To(BeEmpty())
			Expect(res.Done).To(BeTrue())
		})
	})

	Describe("local", func() {
		var d decoder.Decoder

		BeforeEach(func() {
			d = mustDecoder(provider.Local, decoder.Options{})
		})

		It("should decode one object per chunk", func() {
			first := d.Decode(`{"message":{"content":"Hi"},"done":false}`, "")
			Expect(first.Text).To(Equal("Hi"))
			Expect(first.Done).To(BeFalse())

			second := d.Decode(`{"message":{"content":" there"},"done":true}`, first.Carry)
			Expect(second.Text).To(Equal(" there"))
			Expect(second.Done).To(BeTrue())

			Expect(first.Text + second.Text).To(Equal("Hi there"))
		})

		It("should decode newline delimited records", func() {
			raw := "{\"message\":{\"content\":\"a\"},\"done\":false}\n{\"message\":{\"content\":\"b\"},\"done\":false}\n"
			res := d.Decode(raw, "")
			Expect(res.Text).To(Equal("ab"))
			Expect(res.Done).To(BeFalse())
		})

		It("should carry an incomplete object", func() {
			first := d.Decode(`{"message":{"content":"x"`, "")
			Expect(first.Text).To(BeEmpty())

			second := d.Decode(`},"done":false}`, first.Carry)
			Expect(second.Text).To(Equal("x"))
		})

		It("should treat non JSON as literal content", func() {
			pieces, done, err := feed(d, []string{"plain text reply"})
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeFalse())
			Expect(strings.Join(pieces, "")).To(Equal("plain text reply"))
		})

		It("should report error records", func() {
			res := d.Decode(`{"error":"model 'nope' not found"}`, "")
			Expect(res.Err).To(MatchError("local: model 'nope' not found"))
		})

		It("should drop a malformed record and keep decoding", func() {
			pieces, done, err := feed(d, []string{
				`{"message":{"content":"A"},"done":fals}`,
				`{"message":{"content":"B"},"done":false}`,
				`{"message":{"content":"C"},"done":true}`,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeTrue())
			Expect(pieces).To(Equal([]string{"", "B", "C"}))
		})

		It("should drop an unbalanced record once a whole record follows", func() {
			first := d.Decode(`{"message":{"content":"A"},"done":`, "")
			Expect(first.Text).To(BeEmpty())

			second := d.Decode(`{"message":{"content":"B"},"done":true}`, first.Carry)
			Expect(second.Text).To(Equal("B"))
			Expect(second.Done).To(BeTrue())
		})

		It("should decode a record that follows a literal chunk", func() {
			pieces, done, err := feed(d, []string{"oops", `{"message":{"content":"X"},"done":true}`})
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeTrue())
			Expect(pieces).To(Equal([]string{"oops", "X"}))
		})

		It("should drop an unterminated record at flush", func() {
			res := d.Decode(`{"message":`, "")
			Expect(res.Text).To(BeEmpty())
			Expect(d.Flush(res.Carry).Text).To(BeEmpty())
		})

		It("should flush unterminated text in braces as literal", func() {
			res := d.Decode("{not done", "")
			Expect(res.Text).To(BeEmpty())
			Expect(d.Flush(res.Carry).Text).To(Equal("{not done"))
		})
	})

	Describe("regex fallback", func() {
		It("should recover content from a malformed record when enabled", func() {
			d := mustDecoder(provider.OpenAI, decoder.Options{RegexFallback: true})
			res := d.Decode("data: {\"choices\":[{\"delta\":{\"content\":\"sav\\ned\"}}\n", "")
			Expect(res.Text).To(Equal("sav\ned"))
		})

		It("should stay silent when disabled", func() {
			d := mustDecoder(provider.OpenAI, decoder.Options{})
			res := d.Decode("data: {\"choices\":[{\"delta\":{\"content\":\"lost\"}}\n", "")
			Expect(res.Text).To(BeEmpty())
		})
	})

	It("should reject unknown providers", func() {
		_, err := decoder.New(provider.Provider("mistral"), decoder.Options{})
		Expect(err).To(MatchError(provider.ErrUnknownProvider))
	})
})
