package history

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/killallgit/ada/pkg/chat"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type exportedMessage struct {
	Role      string    `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp,omitempty"`
}

// Export writes messages to w in the given format.
func Export(w io.Writer, messages []chat.Message, format string) error {
	out := make([]exportedMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, exportedMessage{Role: msg.Role, Content: msg.Content, Timestamp: msg.Timestamp})
	}

	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to encode history: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to encode history: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
	return nil
}
