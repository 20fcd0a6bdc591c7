package chat

import "fmt"

func (m chatModel) View() string {
	input := m.styles.InputBorder.Render(m.textarea.View())
	return fmt.Sprintf(
		"%s\n%s\n%s",
		m.viewport.View(),
		input,
		m.statusBar.View(),
	)
}
