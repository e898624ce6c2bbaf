package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/app"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/config"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/export"
)

type globals struct {
	email    string
	password string
}

// session builds the services and signs in. The caller must close the app.
func (g *globals) session(ctx context.Context) (*app.App, *domain.Session, error) {
	if err := config.Load(); err != nil {
		return nil, nil, err
	}
	a, err := app.Build(ctx)
	if err != nil {
		return nil, nil, err
	}
	email, password := g.email, g.password
	if email == "" {
		email = config.IngestEmail()
	}
	if password == "" {
		password = config.IngestPassword()
	}
	sess, err := a.Services.Sessions.Login(ctx, email, password)
	if err != nil {
		a.Close()
		return nil, nil, err
	}
	return a, sess, nil
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:          "growthctl",
		Short:        "Command-line access to the growth dashboard records",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.email, "email", "", "account email (default INGEST_EMAIL)")
	root.PersistentFlags().StringVar(&g.password, "password", "", "account password (default INGEST_PASSWORD)")

	root.AddCommand(newExportCmd(g), newCompareCmd(g), newWeeklyCmd(g))
	return root
}

func newExportCmd(g *globals) *cobra.Command {
	var format, out string
	var upload bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every record as CSV or XLSX",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, sess, err := g.session(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if upload {
				url, err := a.Services.Growth.UploadExport(ctx, sess)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			}

			var data []byte
			switch format {
			case "csv":
				data, err = a.Services.Growth.ExportCSV(ctx, sess)
				if out == "" {
					out = export.CSVFileName
				}
			case "xlsx":
				data, err = a.Services.Growth.ExportXLSX(ctx, sess)
				if out == "" {
					out = export.XLSXFileName
				}
			default:
				return fmt.Errorf("unknown format %q (csv or xlsx)", format)
			}
			if err != nil {
				return err
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(data), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout")
	cmd.Flags().BoolVar(&upload, "upload", false, "upload the CSV to S3 and print the download link")
	return cmd
}

func newCompareCmd(g *globals) *cobra.Command {
	var standard, granularity string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare age-bucketed means against a growth standard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, sess, err := g.session(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.Services.Growth.Compare(ctx, sess, standard, granularity)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			return writeComparison(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().StringVar(&standard, "standard", "who", "who or national")
	cmd.Flags().StringVar(&granularity, "granularity", "month", "month or day")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func writeComparison(w io.Writer, rows []domain.ComparisonRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BUCKET\tHEIGHT\tREF HEIGHT\tWEIGHT\tREF WEIGHT")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%.1f\t%.1f\t%.2f\t%.2f\n",
			r.Bucket, r.PersonalHeightMean, r.ReferenceHeight, r.PersonalWeightMean, r.ReferenceWeight)
	}
	return tw.Flush()
}

func newWeeklyCmd(g *globals) *cobra.Command {
	var end string
	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Generate the weekly summary, publishing it when SNS is configured",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var day time.Time
			if end != "" {
				d, err := domain.ParseDay(end)
				if err != nil {
					return &domain.ValidationError{Field: "end", Value: end}
				}
				day = d
			}
			a, sess, err := g.session(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Services.Growth.WeeklyReport(ctx, sess, day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s to %s (%d entries, published=%t)\n\n%s\n",
				report.From.Format(domain.DateLayout), report.To.Format(domain.DateLayout),
				report.Count, report.Published, report.Summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&end, "end", "", "last day of the week, YYYY-MM-DD (default today)")
	return cmd
}
