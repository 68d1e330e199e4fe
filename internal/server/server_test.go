package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/startpacket/constants"
	"github.com/joseph-ayodele/startpacket/internal/export"
	"github.com/joseph-ayodele/startpacket/internal/pdftext"
	"github.com/joseph-ayodele/startpacket/internal/pipeline"
	"github.com/joseph-ayodele/startpacket/internal/quote"
	"github.com/joseph-ayodele/startpacket/internal/repository"
	"github.com/joseph-ayodele/startpacket/internal/territory"
)

const globexQuote = `TAILORED FOR: Globex LLC Hank Scorpio
500 Main Street Houston, TX 77010
Equipment
Rodent Bait Station  6
Total Cost of Equipment $180.00
Investment Summary
One-Time Cost Initial Svc Cost Avg Monthly Cost
Total investment $180.00 $95.00 $150.00
`

var dbSeq atomic.Int64

type testEnv struct {
	logger      *slog.Logger
	drafts      repository.DraftRepository
	territories *territory.Service
	processor   *pipeline.Processor
	exporter    *export.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repository.Open(ctx, repository.Config{
		Driver: repository.DriverSQLite,
		DSN:    fmt.Sprintf("file:server_%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1)),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))

	terr, err := territory.NewService(ctx, repository.NewTerritoryRepository(db, logger), constants.EnvironmentTest, logger)
	require.NoError(t, err)

	parser, err := quote.New(quote.WithClock(func() time.Time {
		return time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)

	drafts := repository.NewDraftRepository(db, logger)
	proc := pipeline.NewProcessor(logger,
		pdftext.NewExtractor(pdftext.Config{}, logger),
		parser,
		repository.NewParseJobRepository(db, logger),
		drafts,
		pipeline.WithBranchResolver(terr),
	)
	return &testEnv{
		logger:      logger,
		drafts:      drafts,
		territories: terr,
		processor:   proc,
		exporter:    export.NewService(drafts, logger),
	}
}
