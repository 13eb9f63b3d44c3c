package canonical

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/zap"
)

// WriteCache persists canonical records to a Parquet file. A failure to
// persist the cache is the caller's call to make: the records themselves are
// still good.
func WriteCache(path string, recs []Record) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return eris.Wrapf(err, "canonical: create cache %s", path)
	}
	pw, err := writer.NewParquetWriter(fw, new(Record), 2)
	if err != nil {
		_ = fw.Close()
		return eris.Wrap(err, "canonical: create parquet writer")
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, rec := range recs {
		if err := pw.Write(rec); err != nil {
			_ = fw.Close()
			return eris.Wrap(err, "canonical: write cache record")
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return eris.Wrap(err, "canonical: finalize cache")
	}
	if err := fw.Close(); err != nil {
		return eris.Wrapf(err, "canonical: close cache %s", path)
	}

	zap.L().Info("wrote canonical cache", zap.String("path", path), zap.Int("records", len(recs)))
	return nil
}

// ReadCache loads canonical records from a Parquet cache file.
//
// The cache is only ever invalidated by an explicit rebuild; there is no
// staleness detection. The file age is logged so the operator can judge.
func ReadCache(path string) ([]Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, eris.Wrapf(err, "canonical: stat cache %s", path)
	}

	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, eris.Wrapf(err, "canonical: open cache %s", path)
	}
	defer fr.Close() //nolint:errcheck

	pr, err := reader.NewParquetReader(fr, new(Record), 2)
	if err != nil {
		return nil, eris.Wrap(err, "canonical: create parquet reader")
	}
	defer pr.ReadStop()

	recs := make([]Record, pr.GetNumRows())
	if err := pr.Read(&recs); err != nil {
		return nil, eris.Wrap(err, "canonical: read cache records")
	}

	zap.L().Info("loaded canonical cache",
		zap.String("path", path),
		zap.Int("records", len(recs)),
		zap.Duration("age", time.Since(info.ModTime()).Round(time.Second)),
	)
	return recs, nil
}
