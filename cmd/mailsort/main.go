package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"mailsort/internal/bootstrap"
	sessiondto "mailsort/internal/modules/session/dto"
	"mailsort/internal/platform/config"
	apperrors "mailsort/internal/platform/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var workspace string

	root := &cobra.Command{
		Use:           "mailsort",
		Short:         "Label email datasets from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&workspace, "workspace", ".", "workspace directory holding .mailsort state and exports")

	root.AddCommand(newTUICmd(&workspace))
	root.AddCommand(newLoadCmd(&workspace))
	root.AddCommand(newLoadDirCmd(&workspace))
	root.AddCommand(newPreviewCmd(&workspace))
	root.AddCommand(newCurrentCmd(&workspace))
	root.AddCommand(newClassifyCmd(&workspace))
	root.AddCommand(newLabeledCmd(&workspace))
	root.AddCommand(newStatusCmd(&workspace))
	root.AddCommand(newExportCmd(&workspace))
	root.AddCommand(newResetCmd(&workspace))
	root.AddCommand(newCleanCmd(&workspace))
	return root
}

func loadApp(workspace string) (*bootstrap.App, error) {
	cfg, err := config.New(workspace)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

// withApp runs fn against a freshly wired app and closes it afterwards.
func withApp(workspace string, fn func(app *bootstrap.App) error) error {
	app, err := loadApp(workspace)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func newTUICmd(workspace *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the labeling terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(*workspace, bootstrap.RunTUI)
		},
	}
}

func newLoadCmd(workspace *string) *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "load <path>...",
		Short: "Load email files (csv, xlsx, json; optionally gz/bz2/xz) into the session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*workspace, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.LoadFiles(context.Background(), tag, args)
				if err != nil {
					return err
				}
				return printLoad(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "source tag: spam|promotional|legitimate")
	_ = cmd.MarkFlagRequired("tag")
	return cmd
}

func newLoadDirCmd(workspace *string) *cobra.Command {
	var tag, pattern string
	cmd := &cobra.Command{
		Use:   "load-dir [dir]",
		Short: "Load every file under dir matching a glob pattern",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return withApp(*workspace, func(app *bootstrap.App) error {
				ctx := context.Background()
				files, err := app.IngestCLI.Discover(ctx, root, pattern)
				if err != nil {
					return err
				}
				if len(files) == 0 {
					return fmt.Errorf("no files under %s match %s", root, pattern)
				}
				out, err := app.SessionCLI.LoadFiles(ctx, tag, files)
				if err != nil {
					return err
				}
				return printLoad(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "source tag: spam|promotional|legitimate")
	cmd.Flags().StringVar(&pattern, "pattern", "**/*.csv", "glob pattern relative to dir, ** matches nested directories")
	_ = cmd.MarkFlagRequired("tag")
	return cmd
}

func newPreviewCmd(workspace *string) *cobra.Command {
	var tag string
	var limit int
	cmd := &cobra.Command{
		Use:   "preview <path>",
		Short: "Parse a file and show what would be loaded, without changing the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*workspace, func(app *bootstrap.App) error {
				out, err := app.IngestCLI.Preview(context.Background(), args[0], tag)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "%s format=%s compression=%s records=%d\n", out.Path, out.Format, out.Compression, len(out.Records))
				for i, rec := range out.Records {
					if i >= limit {
						_, _ = fmt.Fprintf(w, "... %d more\n", len(out.Records)-limit)
						break
					}
					_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, rec.Sender, rec.Subject, rec.Date)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "legitimate", "source tag attached to the parsed records")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of records to print")
	return cmd
}

func newCurrentCmd(workspace *string) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the next email to classify",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*workspace, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Current(context.Background())
				if errors.Is(err, apperrors.ErrExhausted) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "no more emails (%d/%d classified)\n", out.Position, out.Total)
					return nil
				}
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "email %d of %d (source: %s)\n", out.Position+1, out.Total, out.Record.OriginalCategory)
				_, _ = fmt.Fprintf(w, "From:    %s\nDate:    %s\nSubject: %s\n\n%s\n", out.Record.Sender, out.Record.Date, out.Record.Subject, out.Record.Body)
				return nil
			})
		},
	}
}

func newClassifyCmd(workspace *string) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <label>",
		Short: "Label the current email: spam|promotional|legitimate|notification|receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*workspace, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Classify(context.Background(), args[0])
				if errors.Is(err, apperrors.ErrExhausted) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no more emails to classify")
					return nil
				}
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "classified %q as %s (was %s) %d/%d\n", out.Labeled.Subject, out.Labeled.UserClassification, out.Labeled.OriginalCategory, out.Cursor, out.Total)
				if out.Warning != "" {
					_, _ = fmt.Fprintf(w, "warning: %s\n", out.Warning)
				}
				if out.Exhausted {
					_, _ = fmt.Fprintln(w, "all emails classified")
				}
				return nil
			})
		},
	}
}

func newLabeledCmd(workspace *string) *cobra.Command {
	return &cobra.Command{
		Use:   "labeled",
		Short: "List labeled emails in classification order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*workspace, func(app *bootstrap.App) error {
				labeled, err := app.SessionCLI.Labeled(context.Background())
				if err != nil {
					return err
				}
				if len(labeled) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no labeled emails")
					return nil
				}
				for i, l := range labeled {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%s\n", i+1, l.UserClassification, l.OriginalCategory, l.Sender, l.Subject)
				}
				return nil
			})
		},
	}
}

func newStatusCmd(workspace *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show labeling progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*workspace, func(app *bootstrap.App) error {
				st, err := app.SessionCLI.Status(context.Background())
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}
}

func newExportCmd(workspace *string) *cobra.Command {
	var format string
	var stdout bool
	export := &cobra.Command{
		Use:   "export",
		Short: "Export labeled emails as email_classifications_<date>.csv",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*workspace, func(app *bootstrap.App) error {
				ctx := context.Background()
				if stdout {
					text, err := app.SessionCLI.ExportText(ctx)
					if err != nil {
						return err
					}
					_, _ = io.WriteString(cmd.OutOrStdout(), text)
					return nil
				}
				if format == "" {
					format = app.Config.ExportFormat
				}
				out, err := app.SessionCLI.Export(ctx, format)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", out.Rows, out.Path)
				return nil
			})
		},
	}
	export.Flags().StringVar(&format, "format", "", "csv|xlsx (defaults to export_format from config)")
	export.Flags().BoolVar(&stdout, "stdout", false, "write CSV to stdout instead of a file")

	export.AddCommand(&cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize an existing export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*workspace, func(app *bootstrap.App) error {
				out, err := app.ExportCLI.Inspect(context.Background(), args[0])
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "%s: %d rows, %d agree with source tag\n", out.Path, out.Total, out.Agreements)
				printCounts(w, "by label", out.ByLabel)
				printCounts(w, "by source", out.BySource)
				return nil
			})
		},
	})
	return export
}

func newResetCmd(workspace *string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear all loaded emails, labels and saved state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("reset discards all progress; re-run with --yes to confirm")
			}
			return withApp(*workspace, func(app *bootstrap.App) error {
				if err := app.SessionCLI.Reset(context.Background()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "session reset")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func newCleanCmd(workspace *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clean <in.csv> [out.csv]",
		Short: "Clean raw email text (HTML, links, footers) before labeling",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := ""
			if len(args) == 2 {
				out = args[1]
			}
			return withApp(*workspace, func(app *bootstrap.App) error {
				res, err := app.CleanerCLI.Clean(context.Background(), args[0], out)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "cleaned %d emails to %s\n", res.Processed, res.Out)
				if res.Skipped > 0 {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "skipped %d malformed rows\n", res.Skipped)
				}
				return nil
			})
		},
	}
}

func printLoad(w io.Writer, out sessiondto.LoadFilesOutput) error {
	for _, f := range out.Files {
		if f.Err != nil {
			_, _ = fmt.Fprintf(w, "failed  %s: %v\n", f.Path, f.Err)
			continue
		}
		_, _ = fmt.Fprintf(w, "loaded  %s [%s] %d emails\n", f.Path, f.Tag, f.Records)
	}
	_, _ = fmt.Fprintf(w, "%d emails added, %d in session\n", out.Added, out.Total)
	if out.Warning != "" {
		_, _ = fmt.Fprintf(w, "warning: %s\n", out.Warning)
	}
	if out.Loaded == 0 {
		return fmt.Errorf("no files loaded")
	}
	return nil
}

func printStatus(w io.Writer, st sessiondto.StatusOutput) {
	_, _ = fmt.Fprintf(w, "progress  %d/%d (%.1f%%)\n", st.Cursor, st.Total, st.Percent)
	_, _ = fmt.Fprintf(w, "labeled   %d\nremaining %d\n", st.Labeled, st.Remaining)
	if st.Labeled > 0 {
		_, _ = fmt.Fprintf(w, "agreement %d/%d with source tag\n", st.Agreements, st.Labeled)
	}
	printCounts(w, "by label", st.ByLabel)
	printCounts(w, "by source", st.BySource)
}

func printCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	_, _ = fmt.Fprintf(w, "%-9s %s\n", title, strings.Join(parts, " "))
}
