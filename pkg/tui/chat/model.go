package chat

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/killallgit/ada/pkg/controllers"
	"github.com/killallgit/ada/pkg/render"
	"github.com/killallgit/ada/pkg/tokens"
	"github.com/killallgit/ada/pkg/tui/chat/status"
	"github.com/killallgit/ada/pkg/tui/theme"
)

type chatModel struct {
	viewport    viewport.Model
	textarea    textarea.Model
	statusBar   status.StatusModel
	ctrl        *controllers.TurnController
	sink        *Sink
	renderer    render.Renderer
	counter     *tokens.TokenCounter
	cache       map[int]renderedEntry
	models      []string
	width       int
	height      int
	numEscPress int
	styles      *theme.Styles
}

// renderedEntry caches the rendered body of one transcript entry.
type renderedEntry struct {
	source string
	output string
}

// NewChatModel builds the chat view around ctrl. sink must be the sink ctrl
// was created with.
func NewChatModel(ctrl *controllers.TurnController, sink *Sink, models []string, renderer render.Renderer) chatModel {
	ta := textarea.New()
	ta.Focus()
	ta.Prompt = "> "
	ta.Placeholder = "Type a message..."
	ta.CharLimit = 0
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.KeyMap.InsertNewline = keys.Newline

	vp := viewport.New(80, 20)

	selected := ctrl.Selected()
	return chatModel{
		textarea:  ta,
		viewport:  vp,
		statusBar: status.NewStatusModel(selected),
		ctrl:      ctrl,
		sink:      sink,
		renderer:  renderer,
		counter:   tokens.ForSelector(selected),
		cache:     make(map[int]renderedEntry),
		models:    models,
		styles:    theme.DefaultStyles(),
	}
}
