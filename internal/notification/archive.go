package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/common/mongo"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/common/repository"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/config"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/report"
)

// archivedRow is the stored document for one report row
type archivedRow struct {
	report.Row `bson:",inline"`
	RunID      string    `bson:"run_id"`
	ArchivedAt time.Time `bson:"archived_at"`
}

// ArchiveSink inserts every report row into a MongoDB collection
type ArchiveSink struct {
	cfg config.ArchiveConfig
}

// NewArchiveSink creates the archive sink; an empty URI disables it
func NewArchiveSink(cfg config.ArchiveConfig) *ArchiveSink {
	return &ArchiveSink{cfg: cfg}
}

func (s *ArchiveSink) Name() string  { return "archive" }
func (s *ArchiveSink) Enabled() bool { return s.cfg.MongoURI != "" }

// Send inserts the rows. Rows of a run already archived are skipped
// by the unique (run_time, ou_name) index.
func (s *ArchiveSink) Send(ctx context.Context, summary *Summary) error {
	if len(summary.Rows) == 0 {
		return nil
	}

	client, err := mongo.Connect(ctx, s.cfg)
	if err != nil {
		return fmt.Errorf("archive connect: %w", err)
	}
	defer client.Disconnect(context.Background())

	client.EnsureIndexes(ctx, mongo.ArchiveIndexes(s.cfg.Collection))

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(summary.Rows))
	for _, row := range summary.Rows {
		docs = append(docs, archivedRow{Row: row, RunID: summary.RunID, ArchivedAt: now})
	}

	inserted, err := repository.Instrument(ctx, "archive", "insert_rows", func() (int, error) {
		res, err := client.Collection(s.cfg.Collection).InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
		n := 0
		if res != nil {
			n = len(res.InsertedIDs)
		}
		if err != nil && !onlyDuplicates(err) {
			return n, err
		}
		return n, nil
	})
	if err != nil {
		return fmt.Errorf("archive insert: %w", err)
	}

	slog.Info("Report archived",
		"collection", s.cfg.Collection,
		"inserted", inserted,
		"rows", len(summary.Rows))
	return nil
}

// onlyDuplicates reports whether every write error is a duplicate key
func onlyDuplicates(err error) bool {
	var bwe mongodriver.BulkWriteException
	if !errors.As(err, &bwe) || bwe.WriteConcernError != nil {
		return false
	}
	for _, we := range bwe.WriteErrors {
		if we.Code != 11000 {
			return false
		}
	}
	return true
}
