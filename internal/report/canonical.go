package report

import (
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/trade-cli/internal/canonical"
)

// WriteCanonicalCSV writes canonical records as CSV with the Record struct's
// column set. Used for the processed official table and other review
// artifacts.
func WriteCanonicalCSV(path string, recs []canonical.Record) error {
	data, err := csvutil.Marshal(recs)
	if err != nil {
		return eris.Wrap(err, "report: marshal canonical records")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "report: write %s", path)
	}
	zap.L().Info("wrote canonical csv",
		zap.String("path", path),
		zap.Int("records", len(recs)),
	)
	return nil
}
