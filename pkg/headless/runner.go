// Package headless runs chat turns without the full-screen interface.
package headless

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/killallgit/ada/pkg/controllers"
	"github.com/killallgit/ada/pkg/display"
	"github.com/killallgit/ada/pkg/logger"
)

var log = logger.WithComponent("headless")

var ErrEmptyPrompt = errors.New("prompt cannot be empty in headless mode")

// RunOnce sends prompt as a single turn and streams the reply to console.
// The returned error is the one that ended the turn.
func RunOnce(ctx context.Context, ctrl *controllers.TurnController, console *display.Console, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	defer console.Finish()

	switch outcome := ctrl.Submit(prompt); outcome {
	case controllers.OutcomeSent:
		if err := ctrl.Await(ctx); err != nil {
			return fmt.Errorf("failed to execute prompt: %w", err)
		}
	case controllers.OutcomeFailed:
	default:
		log.Debug("prompt not sent", "outcome", outcome)
		return nil
	}

	if err := ctrl.Err(); err != nil {
		return fmt.Errorf("failed to execute prompt: %w", err)
	}
	return nil
}
