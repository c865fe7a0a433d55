package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tsawler/pdfoutline/internal/batch"
	"github.com/tsawler/pdfoutline/internal/config"
	"github.com/tsawler/pdfoutline/internal/metrics"
)

func newBatchCommand(a *app) *cobra.Command {
	var (
		input    string
		includes []string
		excludes []string
	)
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Process every PDF below a directory",
		Long: `Batch discovers PDF documents, processes them in parallel and writes one
<name>.json per document into the output directory.

Inputs are matched with doublestar patterns relative to --input and sniffed
by content, so files that are not PDFs are skipped. A document that cannot
be read still gets its minimal record; only write failures are reported as
errors.

Example:
  pdfoutline batch --input ./reports --output ./out
  pdfoutline batch -i ./archive --include "2024/**/*.pdf" --exclude "**/drafts/**"
  pdfoutline batch -i ./reports --workers 4 --metrics-file ./pdfoutline.prom`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBatch(cmd, input, includes, excludes)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&input, "input", "i", ".", "input directory or file")
	flags.StringSliceVar(&includes, "include", []string{batch.DefaultPattern}, "doublestar patterns selecting inputs")
	flags.StringSliceVar(&excludes, "exclude", nil, "doublestar patterns excluding inputs")
	flags.StringP("output", "o", defaults.Output, "output directory")
	flags.IntP("workers", "w", defaults.Workers, "documents processed concurrently")
	flags.Duration("document-timeout", defaults.DocumentTimeout, "time limit for one document")
	flags.String("metrics-file", defaults.MetricsFile, "write prometheus metrics to this file")

	_ = a.v.BindPFlag("output", flags.Lookup("output"))
	_ = a.v.BindPFlag("workers", flags.Lookup("workers"))
	_ = a.v.BindPFlag("document_timeout", flags.Lookup("document-timeout"))
	_ = a.v.BindPFlag("metrics_file", flags.Lookup("metrics-file"))
	return cmd
}

func (a *app) runBatch(cmd *cobra.Command, input string, includes, excludes []string) error {
	in, err := batch.Discover(input, includes, excludes)
	if err != nil {
		return err
	}
	for _, s := range in.Skipped {
		a.log.Warn("skipping non-PDF file", "file", s.Path, "mime", s.MIME)
	}
	if len(in.Files) == 0 {
		return fmt.Errorf("no PDF documents found in %s", input)
	}

	stderr := cmd.ErrOrStderr()
	printBatchHeader(stderr, input, len(in.Files), a.cfg.Workers, a.cfg.Output)

	m := metrics.New()
	runner := batch.NewRunner(a.cfg.BatchConfig(), a.cfg.Processor(a.log), a.log, m)
	summary, runErr := runner.Run(cmd.Context(), in.Files)

	if summary != nil {
		printBatchSummary(stderr, summary)
	}
	if a.cfg.MetricsFile != "" {
		if err := m.WriteTextfile(a.cfg.MetricsFile); err != nil {
			a.log.Error("metrics not written", "path", a.cfg.MetricsFile, "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	if summary.WriteErrors > 0 {
		return fmt.Errorf("%d of %d records could not be written", summary.WriteErrors, summary.Total)
	}
	return nil
}

func printBatchHeader(w io.Writer, input string, files, workers int, output string) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Input:        %s\n", input)
	fmt.Fprintf(w, "  Documents:    %d\n", files)
	fmt.Fprintf(w, "  Workers:      %d\n", workers)
	fmt.Fprintf(w, "  Output dir:   %s\n", output)
	fmt.Fprintf(w, "\n")
}

func printBatchSummary(w io.Writer, s *batch.Summary) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Succeeded:    %d\n", s.Succeeded)
	fmt.Fprintf(w, "  Degraded:     %d\n", s.Degraded)
	fmt.Fprintf(w, "  Failed:       %d\n", s.Failed)
	if s.WriteErrors > 0 {
		fmt.Fprintf(w, "  Not written:  %d\n", s.WriteErrors)
	}
	fmt.Fprintf(w, "  Elapsed:      %s\n", s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "\n")
	for _, r := range s.Results {
		switch {
		case r.WriteErr != nil:
			fmt.Fprintf(w, "  x %s: %v\n", r.Input, r.WriteErr)
		case r.ProcessErr != nil:
			fmt.Fprintf(w, "  ! %s: %v\n", r.Input, r.ProcessErr)
		}
	}
}
