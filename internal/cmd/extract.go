package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/clipcal/clipcal/internal/ailink"
	"github.com/clipcal/clipcal/internal/config"
	"github.com/clipcal/clipcal/internal/doctext"
	errwrap "github.com/clipcal/clipcal/internal/errors"
	"github.com/clipcal/clipcal/internal/extract"
	"github.com/clipcal/clipcal/internal/ics"
	"github.com/clipcal/clipcal/internal/observability"
)

var (
	extractFile   string
	extractFormat string
	extractNoAI   bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [text]",
	Short: "Extract a calendar event from text",
	Long: `Extract a calendar event from pasted text, a file, or stdin.

The text is processed the same way the server processes it: the AI path
when an API key is configured, the deterministic pattern path otherwise,
with defaults applied to missing fields. Output formats: table (default),
json, ics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "config load failed")
		}

		observability.InitCLILogger("clipcal", verbose)

		text, err := readExtractInput(cmd.Context(), args)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return errwrap.NewInvalidInputError("no input text: pass text as an argument, via --file, or on stdin")
		}

		var ai extract.AIClient
		if !extractNoAI && cfg.AILink.APIKey != "" {
			ai = ailink.NewExtractor(cfg.AILink)
		}
		orchestrator := extract.NewOrchestrator(ai)

		event, err := orchestrator.Process(cmd.Context(), text)
		if err != nil {
			return err
		}

		return renderEvent(cmd.OutOrStdout(), event, extractFormat)
	},
}

// readExtractInput resolves the input text: argument, file, or stdin.
func readExtractInput(ctx context.Context, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	provider := doctext.PlainText{}
	if extractFile != "" {
		f, err := os.Open(extractFile)
		if err != nil {
			return "", errwrap.NewInvalidInputError("cannot open input file: " + err.Error())
		}
		defer func() {
			_ = f.Close()
		}()
		return provider.ExtractText(ctx, "text/plain", f)
	}

	return provider.ExtractText(ctx, "text/plain", os.Stdin)
}

func renderEvent(w io.Writer, event extract.Event, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(event)
	case "ics":
		rendered, err := ics.Render(event)
		if err != nil {
			return errwrap.NewInvalidInputError("event could not be rendered as ICS: " + err.Error())
		}
		_, err = fmt.Fprint(w, rendered)
		return err
	case "table", "":
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Field", "Value"})
		t.AppendRow(table.Row{"Title", event.Title})
		t.AppendRow(table.Row{"Date", event.Date})
		t.AppendRow(table.Row{"Start", event.StartTime})
		t.AppendRow(table.Row{"End", event.EndTime})
		t.AppendRow(table.Row{"Location", event.Location})
		t.AppendRow(table.Row{"Description", event.Description})
		t.AppendRow(table.Row{"Timezone", event.Timezone})
		t.Render()
		return nil
	default:
		return errwrap.NewInvalidInputError("unknown output format: " + format)
	}
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractFile, "file", "f", "", "read input text from file")
	extractCmd.Flags().StringVarP(&extractFormat, "output", "o", "table", "output format: table, json, ics")
	extractCmd.Flags().BoolVar(&extractNoAI, "no-ai", false, "skip the AI path and use pattern extraction only")
}
