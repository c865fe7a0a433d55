package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tsawler/pdfoutline/format"
	"github.com/tsawler/pdfoutline/model"
)

// Output formats of the process command
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

func newProcessCommand(a *app) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "process <file>",
		Short: "Extract the outline and tables of one PDF",
		Long: `Process reads one PDF and prints its record to stdout.

When no backend can read the document the minimal record (no sections, no
tables, confidence 0) is still printed and the command exits with an error.

Example:
  pdfoutline process report.pdf
  pdfoutline process report.pdf --format markdown
  pdfoutline process report.pdf --backends pdfcpu,plaintext`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.process(cmd.Context(), cmd.OutOrStdout(), args[0], outputFormat)
		},
	}
	cmd.Flags().StringVarP(&outputFormat, "format", "f", FormatJSON, "output format (json, markdown)")
	return cmd
}

func (a *app) process(ctx context.Context, out io.Writer, path, outputFormat string) error {
	if outputFormat != FormatJSON && outputFormat != FormatMarkdown {
		return fmt.Errorf("unknown format %q (json, markdown)", outputFormat)
	}
	if kind, mime, err := format.DetectFile(path); err == nil && kind != format.PDF {
		a.log.Warn("input does not look like a PDF", "file", path, "mime", mime)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.DocumentTimeout)
	defer cancel()

	proc := a.cfg.Processor(a.log).Input(path)
	if outputFormat == FormatMarkdown {
		md, err := proc.Markdown(ctx)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, md)
		return err
	}

	res, err := proc.Process(ctx)
	if res != nil {
		if werr := writeJSON(out, res); werr != nil {
			return werr
		}
	}
	return err
}

// writeJSON writes res indented with two spaces
func writeJSON(out io.Writer, res *model.Result) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
