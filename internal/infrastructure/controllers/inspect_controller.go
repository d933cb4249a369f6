package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/lockbump/internal/domain/commands"
	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

const maxViaWidth = 40

// InspectController handles the "inspect" subcommand.
type InspectController struct {
	command commands.Inspect
}

// NewInspectController creates a new InspectController.
func NewInspectController(command commands.Inspect) *InspectController {
	return &InspectController{command: command}
}

// GetBind returns the Cobra command metadata for the inspect controller.
func (it *InspectController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "inspect <file>",
		Short: "List the pins of a compiled requirements file",
		Long: `Parse a compiled requirements file and list every pinned package
with its version, the packages requiring it and its number of hashes.`,
	}
}

// Execute prints the pins of the file given as argument.
func (it *InspectController) Execute(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	if len(args) == 0 {
		logger.Error("a compiled file to inspect is required")
		return
	}
	format, _ := cmd.Flags().GetString("output")

	content, err := os.ReadFile(args[0])
	if err != nil {
		logger.Errorf("failed to read %s: %v", args[0], err)
		return
	}

	report, err := it.command.Execute(ctx, entities.NewManagedFile(args[0], string(content)))
	if err != nil {
		logger.Errorf("Inspect failed: %v", err)
		return
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		err = printJSON(out, report)
	case "markdown":
		printMarkdown(out, report)
	case "table", "":
		printTable(out, report)
	default:
		logger.Errorf("unknown output format %q (use table, json or markdown)", format)
	}
	if err != nil {
		logger.Errorf("failed to print report: %v", err)
	}
}

// AddFlags adds the inspect-specific flags to the given Cobra command.
func (it *InspectController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "table", "Output format: table, json, or markdown")
}

func printTable(out io.Writer, report *commands.InspectReport) {
	nameW := len("Package")
	versionW := len("Version")
	viaW := len("Via")
	for _, entry := range report.Entries {
		nameW = max(nameW, len(entry.Name))
		versionW = max(versionW, len(entry.Version))
		viaW = max(viaW, len(strings.Join(entry.Via, ", ")))
	}
	viaW = min(viaW, maxViaWidth)

	_, _ = fmt.Fprintf(out, "%-*s  %-*s  %-*s  %s\n", nameW, "Package", versionW, "Version", viaW, "Via", "Hashes")
	_, _ = fmt.Fprintln(out, strings.Repeat("-", nameW+versionW+viaW+len("Hashes")+6))
	for _, entry := range report.Entries {
		_, _ = fmt.Fprintf(out, "%-*s  %-*s  %-*s  %d\n",
			nameW, entry.Name,
			versionW, entry.Version,
			viaW, truncate(strings.Join(entry.Via, ", "), viaW),
			len(entry.Hashes))
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintf(out, "Total: %d pinned packages (hashed: %t, annotated: %t)\n",
		len(report.Entries), report.Hashed, report.Annotated)
}

func printMarkdown(out io.Writer, report *commands.InspectReport) {
	_, _ = fmt.Fprintln(out, "| Package | Version | Via | Hashes |")
	_, _ = fmt.Fprintln(out, "|---------|---------|-----|--------|")
	for _, entry := range report.Entries {
		_, _ = fmt.Fprintf(out, "| %s | %s | %s | %d |\n",
			entry.Name, entry.Version, strings.Join(entry.Via, ", "), len(entry.Hashes))
	}
}

type entryJSON struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Via     []string `json:"via,omitempty"`
	Hashes  []string `json:"hashes,omitempty"`
}

func printJSON(out io.Writer, report *commands.InspectReport) error {
	entries := make([]entryJSON, 0, len(report.Entries))
	for _, entry := range report.Entries {
		entries = append(entries, entryJSON{
			Name:    entry.Name,
			Version: entry.Version,
			Via:     entry.Via,
			Hashes:  entry.Hashes,
		})
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
