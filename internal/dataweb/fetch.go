package dataweb

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/trade-cli/internal/canonical"
)

// Fetcher downloads the full per-country import dataset into one CSV.
type Fetcher struct {
	client      *Client
	checkpoint  *Checkpoint
	outputFile  string
	from, to    canonical.YearMonth
	recordLimit int
}

// NewFetcher wires a fetch run.
func NewFetcher(client *Client, cp *Checkpoint, outputFile string, from, to canonical.YearMonth) *Fetcher {
	return &Fetcher{
		client:      client,
		checkpoint:  cp,
		outputFile:  outputFile,
		from:        from,
		to:          to,
		recordLimit: client.recordLimit,
	}
}

// Run downloads every country not yet in the checkpoint. A country that
// fails stays out of the checkpoint so the next run retries it; the run
// itself continues with the remaining countries.
func (f *Fetcher) Run(ctx context.Context) error {
	countries, err := f.client.Countries(ctx)
	if err != nil {
		return err
	}
	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID))
	log.Info("starting dataweb fetch",
		zap.Int("countries", len(countries)),
		zap.String("period", f.from.String()+".."+f.to.String()),
		zap.String("output", f.outputFile),
	)

	out, err := newCSVAppender(f.outputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	var done, skipped, failed int
	for i, country := range countries {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "dataweb: fetch canceled")
		}

		has, err := f.checkpoint.Has(ctx, country.Name)
		if err != nil {
			return err
		}
		if has {
			skipped++
			continue
		}

		clog := log.With(
			zap.String("country", country.Name),
			zap.String("progress", fmt.Sprintf("%d/%d", i+1, len(countries))),
		)
		columns, rows, err := f.fetchCountry(ctx, country)
		if err != nil {
			failed++
			clog.Warn("country fetch failed, will retry next run", zap.Error(err))
			continue
		}

		if len(rows) > 0 {
			if err := out.Append(columns, country.Name, rows); err != nil {
				return err
			}
		}
		if err := f.checkpoint.MarkDone(ctx, country.Name, runID, len(rows)); err != nil {
			return err
		}
		done++
		clog.Info("country complete", zap.Int("rows", len(rows)))
	}

	log.Info("dataweb fetch finished",
		zap.Int("done", done),
		zap.Int("already_processed", skipped),
		zap.Int("failed", failed),
	)
	if failed > 0 {
		return eris.Errorf("dataweb: %d countries failed, rerun to retry", failed)
	}
	return nil
}

// fetchCountry tries the fast all-commodities query first, and falls back to
// one query per HTS chapter when the fast query hits the record limit.
func (f *Fetcher) fetchCountry(ctx context.Context, country Country) ([]string, [][]string, error) {
	table, err := f.client.RunReport(ctx, reportQuery(country, "", f.from, f.to, f.recordLimit))
	if err != nil {
		return nil, nil, err
	}
	if table == nil {
		return nil, nil, nil
	}

	rows := table.Rows()
	if len(rows) < f.recordLimit {
		return table.Columns(), rows, nil
	}

	zap.L().Info("fast query hit record limit, switching to per-chapter queries",
		zap.String("country", country.Name),
	)
	var columns []string
	var all [][]string
	for chapter := 1; chapter <= 99; chapter++ {
		table, err := f.client.RunReport(ctx,
			reportQuery(country, fmt.Sprintf("%02d", chapter), f.from, f.to, f.recordLimit))
		if err != nil {
			return nil, nil, err
		}
		if table == nil {
			continue
		}
		if columns == nil {
			columns = table.Columns()
		}
		all = append(all, table.Rows()...)
	}
	return columns, all, nil
}

// csvAppender appends report rows to the output CSV, writing the header once
// when the file starts empty.
type csvAppender struct {
	file        *os.File
	w           *csv.Writer
	needsHeader bool
}

func newCSVAppender(path string) (*csvAppender, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, eris.Wrapf(err, "dataweb: open %s", path)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, eris.Wrapf(err, "dataweb: stat %s", path)
	}
	return &csvAppender{
		file:        file,
		w:           csv.NewWriter(file),
		needsHeader: info.Size() == 0,
	}, nil
}

func (a *csvAppender) Append(columns []string, country string, rows [][]string) error {
	if a.needsHeader {
		if err := a.w.Write(append([]string{"Country"}, columns...)); err != nil {
			return eris.Wrap(err, "dataweb: write csv header")
		}
		a.needsHeader = false
	}
	for _, row := range rows {
		if err := a.w.Write(append([]string{country}, row...)); err != nil {
			return eris.Wrap(err, "dataweb: write csv row")
		}
	}
	a.w.Flush()
	return eris.Wrap(a.w.Error(), "dataweb: flush csv")
}

func (a *csvAppender) Close() error {
	a.w.Flush()
	return a.file.Close()
}
