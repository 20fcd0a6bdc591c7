package status

import (
	"fmt"
	"strings"
)

const separator = " | "

func (m StatusModel) View() string {
	if m.width == 0 {
		return ""
	}

	var components []string
	components = append(components, m.styles.StatusModel.Render(m.selector))

	if m.isActive {
		state := m.spinner.View() + " " + m.processState.DisplayName()
		if icon := m.processState.Icon(); icon != "" {
			state += " " + icon
		}
		components = append(components, m.styles.StatusState.Render(state))

		if m.timer > 0 {
			minutes := int(m.timer.Minutes())
			seconds := int(m.timer.Seconds()) % 60
			components = append(components, m.styles.StatusMuted.Render(fmt.Sprintf("%02d:%02d", minutes, seconds)))
		}
	}

	if total := m.tokensCtx + m.tokensReply; total > 0 {
		components = append(components, m.styles.StatusMuted.Render(fmt.Sprintf("%d tokens", total)))
	}

	if m.notice != "" {
		components = append(components, m.styles.ErrorMessage.Render(m.notice))
	} else if !m.isActive {
		components = append(components, m.styles.StatusMuted.Render("ctrl+n/ctrl+p model · ctrl+l clear · ctrl+c quit"))
	}

	return m.styles.StatusBar.Width(m.width).Render(strings.Join(components, separator))
}
