package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cbudget/internal/report"
	"github.com/theirongolddev/cbudget/internal/session"
)

var (
	flagExportFormat    string
	flagExportTimeframe string
	flagExportOut       string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a CSV, PDF, SVG, JSON or YAML report for a period",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "csv", "csv, pdf, svg, json or yaml")
	exportCmd.Flags().StringVarP(&flagExportTimeframe, "timeframe", "t", "monthly", "monthly, quarterly or yearly")
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", ".", "Output directory, or - for stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	format, err := report.ParseFormat(flagExportFormat)
	if err != nil {
		return err
	}
	tf, err := report.ParseTimeframe(flagExportTimeframe)
	if err != nil {
		return err
	}

	return withSession(func(sess *session.Session) error {
		now := sess.Now()
		r := report.Build(sess.State(), tf, now)

		if flagExportOut == "-" {
			return report.Write(os.Stdout, format, r)
		}

		if err := os.MkdirAll(flagExportOut, 0o750); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		path := filepath.Join(flagExportOut, report.FileName(format, tf, now))
		f, err := os.Create(path) //nolint:gosec // path is chosen by the local user
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := report.Write(f, format, r); err != nil {
			_ = f.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		info("Wrote %s (%d expenses, %s to %s)", path, len(r.Expenses), r.From, r.To)
		return nil
	})
}
