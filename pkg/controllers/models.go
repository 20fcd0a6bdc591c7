package controllers

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/killallgit/ada/pkg/provider"
)

// ModelsController lists the configured selectors and marks the one in use.
type ModelsController struct {
	models    []string
	selection Selection
}

func NewModelsController(models []string, selection Selection) *ModelsController {
	return &ModelsController{models: models, selection: selection}
}

func (mc *ModelsController) ListModels(writer io.Writer) error {
	if len(mc.models) == 0 {
		fmt.Fprintln(writer, "No models configured")
		return nil
	}

	selected := mc.selection.Selected()
	w := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, " \tPROVIDER\tMODEL\tSELECTOR")

	for _, s := range mc.models {
		sel, err := provider.ParseSelector(s)
		if err != nil {
			log.Warn("skipping invalid selector", "selector", s, "error", err)
			continue
		}
		marker := " "
		if s == selected {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, sel.Provider.Title(), sel.Model, s)
	}

	return w.Flush()
}
