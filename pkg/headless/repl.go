package headless

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/killallgit/ada/pkg/controllers"
	"github.com/killallgit/ada/pkg/display"
	"github.com/peterh/liner"
)

const prompt = "ada> "

// LineReader is the part of liner.State the REPL needs.
type LineReader interface {
	Prompt(p string) (string, error)
	AppendHistory(item string)
	Close() error
}

// REPL reads one line per turn and prints replies as they stream.
type REPL struct {
	ctrl        *controllers.TurnController
	console     *display.Console
	out         io.Writer
	line        LineReader
	models      []string
	historyFile string
}

type REPLOption func(*REPL)

// WithModels sets the selectors listed by /model.
func WithModels(models []string) REPLOption {
	return func(r *REPL) { r.models = models }
}

// WithLineReader replaces the liner terminal.
func WithLineReader(l LineReader) REPLOption {
	return func(r *REPL) { r.line = l }
}

// WithHistoryFile keeps input history across sessions.
func WithHistoryFile(path string) REPLOption {
	return func(r *REPL) { r.historyFile = path }
}

// NewREPL builds a REPL around ctrl. console must be the sink ctrl writes to.
func NewREPL(ctrl *controllers.TurnController, console *display.Console, out io.Writer, opts ...REPLOption) *REPL {
	r := &REPL{ctrl: ctrl, console: console, out: out}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run loops until exit, EOF or ctrl+c.
func (r *REPL) Run(ctx context.Context) error {
	if r.line == nil {
		state := liner.NewLiner()
		state.SetCtrlCAborts(true)
		r.loadHistory(state)
		defer r.saveHistory(state)
		r.line = state
	}
	defer r.line.Close()

	r.ctrl.Replay()
	r.console.Finish()

	for {
		input, err := r.line.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		r.line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := r.command(input); quit {
				return nil
			}
			continue
		}

		switch r.ctrl.Submit(input) {
		case controllers.OutcomeQuit:
			return nil
		case controllers.OutcomeSent:
			if err := r.ctrl.Await(ctx); err != nil {
				r.console.Finish()
				return err
			}
		}
		r.console.Finish()
	}
}

// command runs a slash command and reports whether the REPL should stop.
func (r *REPL) command(input string) bool {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit":
		return true
	case "/clear":
		if err := r.ctrl.Clear(); err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
		}
	case "/model":
		if arg == "" {
			r.listModels()
			return false
		}
		if err := r.ctrl.Select(arg); err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
			return false
		}
		fmt.Fprintf(r.out, "Using %s\n", arg)
	case "/help":
		fmt.Fprintln(r.out, "/model [provider:model]  show or change the model")
		fmt.Fprintln(r.out, "/clear                   clear the conversation")
		fmt.Fprintln(r.out, "/quit                    leave")
	default:
		fmt.Fprintf(r.out, "Unknown command %s, try /help\n", name)
	}
	return false
}

func (r *REPL) listModels() {
	selected := r.ctrl.Selected()
	for _, m := range r.models {
		marker := " "
		if m == selected {
			marker = "*"
		}
		fmt.Fprintf(r.out, "%s %s\n", marker, m)
	}
	if len(r.models) == 0 {
		fmt.Fprintf(r.out, "* %s\n", selected)
	}
}

func (r *REPL) loadHistory(state *liner.State) {
	if r.historyFile == "" {
		return
	}
	if f, err := os.Open(r.historyFile); err == nil {
		if _, err := state.ReadHistory(f); err != nil {
			log.Warn("failed to read input history", "error", err)
		}
		f.Close()
	}
}

func (r *REPL) saveHistory(state *liner.State) {
	if r.historyFile == "" {
		return
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		log.Warn("failed to save input history", "error", err)
		return
	}
	defer f.Close()
	if _, err := state.WriteHistory(f); err != nil {
		log.Warn("failed to save input history", "error", err)
	}
}
