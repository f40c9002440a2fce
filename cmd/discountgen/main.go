// Command discountgen runs one segmentation and pricing pass without the
// dashboard: it reads a CSV/xlsx export or a SQL query, prints the campaign
// summary and writes the results workbook.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ignite/discount-generator/internal/config"
	"github.com/ignite/discount-generator/internal/datanorm"
	"github.com/ignite/discount-generator/internal/domain"
	"github.com/ignite/discount-generator/internal/export"
	"github.com/ignite/discount-generator/internal/offers"
	"github.com/ignite/discount-generator/internal/pkg/logger"
	"github.com/ignite/discount-generator/internal/segmentation"
	"github.com/ignite/discount-generator/internal/service/campaign"
	"github.com/ignite/discount-generator/internal/storage"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	in := flag.String("in", "", "customer export to process (.csv or .xlsx)")
	query := flag.String("source-query", "", "SQL query against the configured source instead of -in")
	out := flag.String("out", "", "workbook path (default: discount_recommendations_<timestamp>.xlsx)")
	publish := flag.Bool("publish", false, "also upload the workbook to the configured export store")
	flag.Parse()

	if err := run(*configPath, *in, *query, *out, *publish, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, in, query, out string, publish bool, w io.Writer) error {
	if (in == "") == (query == "") {
		return fmt.Errorf("exactly one of -in or -source-query is required")
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.RedactEnabled())

	ingestOpts, err := datanorm.OptionsFromConfig(cfg.Ingest)
	if err != nil {
		return err
	}
	importer := datanorm.NewImporter(ingestOpts)

	ctx := context.Background()
	table, res, err := load(ctx, cfg, importer, in, query)
	if err != nil {
		return err
	}

	generator, err := offers.NewGeneratorFromConfig(cfg.Offers)
	if err != nil {
		return err
	}
	pipeline := campaign.NewPipeline(segmentation.NewClassifier(), generator, nil)
	result, err := pipeline.Run(*table)
	if err != nil {
		return err
	}

	printSummary(w, cfg.Offers.CurrencySymbol, res, result)

	var buf bytes.Buffer
	if err := export.Write(&buf, result.Offers, result.Summary, result.Segments); err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	name := export.FileName(result.ProcessedAt)
	if out == "" {
		out = name
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	fmt.Fprintf(w, "\nWorkbook written to %s\n", out)

	if publish {
		store, err := storage.New(ctx, cfg.Export)
		if err != nil {
			return fmt.Errorf("export store: %w", err)
		}
		obj, err := store.Save(ctx, "cli/"+filepath.Base(out), buf.Bytes(), export.ContentType)
		if err != nil {
			return fmt.Errorf("publish workbook: %w", err)
		}
		fmt.Fprintf(w, "Published to %s\n", obj.URL)
	}
	return nil
}

func load(ctx context.Context, cfg *config.Config, importer *datanorm.Importer, in, query string) (*domain.Table, *datanorm.ImportResult, error) {
	if in != "" {
		f, err := os.Open(in)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		return importer.ImportReader(ctx, f, filepath.Base(in))
	}

	db, err := datanorm.OpenSQL(cfg.Source.Driver, cfg.Source.DSN)
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, cfg.Source.Timeout())
	defer cancel()
	return datanorm.NewSQLSource(db, importer).Load(ctx, query)
}

func printSummary(w io.Writer, currency string, res *datanorm.ImportResult, run *campaign.Run) {
	p := message.NewPrinter(language.English)

	fmt.Fprintln(w, "=========================================================")
	fmt.Fprintln(w, " Discount Campaign Summary")
	fmt.Fprintln(w, "=========================================================")
	if res != nil {
		p.Fprintf(w, "Source:            %s (%s)\n", res.SourceFile, res.Format)
		p.Fprintf(w, "Rows imported:     %d of %d (%d summary, %d blank skipped)\n",
			res.ImportedRows, res.TotalRows, res.SkippedSummaryRows, res.SkippedBlankRows)
		if n := len(res.ParseErrors); n > 0 {
			p.Fprintf(w, "Cells defaulted:   %d\n", n)
		}
	}
	p.Fprintf(w, "Total customers:   %d\n", run.Summary.TotalCustomers)
	p.Fprintf(w, "Average discount:  %.1f%%\n", run.Summary.AvgDiscount)
	p.Fprintf(w, "Estimated cost:    %s%.2f\n", currency, run.Summary.EstimatedCost)
	if run.Summary.MostCommonSegment != "" {
		p.Fprintf(w, "Most common:       %s\n", run.Summary.MostCommonSegment)
	}
	fmt.Fprintln(w, "---------------------------------------------------------")
	for _, s := range run.Segments {
		p.Fprintf(w, "%-11s %6d customers  avg spend %s%.2f  avg discount %.1f%%\n",
			s.Segment, s.Count, currency, s.AvgSpend, s.AvgDiscount)
	}
	p.Fprintf(w, "Processed in %v\n", run.Duration.Round(time.Millisecond))
}
