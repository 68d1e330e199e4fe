package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/startpacket/constants"
	"github.com/joseph-ayodele/startpacket/internal/common"
	"github.com/joseph-ayodele/startpacket/internal/entity"
	"github.com/joseph-ayodele/startpacket/internal/pdftext"
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

type fakeExtractor struct {
	res pdftext.Result
	err error
}

func (f fakeExtractor) Extract(context.Context, string) (pdftext.Result, error) {
	return f.res, f.err
}

type env struct {
	jobs       repository.ParseJobRepository
	drafts     repository.DraftRepository
	territory  *territory.Service
	parser     *quote.Parser
	logger     *slog.Logger
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repository.Open(ctx, repository.Config{
		Driver: repository.DriverSQLite,
		DSN:    "file:pipeline_" + name + "?mode=memory&cache=shared",
	}, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))

	svc, err := territory.NewService(ctx, repository.NewTerritoryRepository(db, logger), constants.EnvironmentTest, logger)
	require.NoError(t, err)
	_, err = svc.LoadSamples(ctx)
	require.NoError(t, err)

	parser, err := quote.New(quote.WithClock(func() time.Time {
		return time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)

	return &env{
		jobs:      repository.NewParseJobRepository(db, logger),
		drafts:    repository.NewDraftRepository(db, logger),
		territory: svc,
		parser:    parser,
		logger:    logger,
	}
}

func (e *env) processor(text TextExtractor, opts ...Option) *Processor {
	return NewProcessor(e.logger, text, e.parser, e.jobs, e.drafts, append([]Option{WithBranchResolver(e.territory)}, opts...)...)
}

func TestProcessFile_TextQuote(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "globex.txt")
	require.NoError(t, os.WriteFile(path, []byte(globexQuote), 0o644))

	p := e.processor(pdftext.NewExtractor(pdftext.Config{}, e.logger))
	out, err := p.ProcessFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, pdftext.MethodPlain, out.Method)

	d := out.Draft.Draft
	require.NotNil(t, d.ServiceZip)
	assert.Equal(t, "77010", *d.ServiceZip)
	assert.Equal(t, "BRN-002", d.BranchID)
	require.NotNil(t, d.AEEmail)
	assert.Equal(t, "southeast.ae@test.branch360.com", *d.AEEmail)
	assert.Equal(t, "Monthly GPC & Monthly Exterior Rodent Monitoring", d.MaintenanceScopeDescription)

	job, err := e.jobs.Get(ctx, out.JobID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusParsed), job.Status)
	assert.Equal(t, string(constants.FormatTXT), job.Format)
	require.NotNil(t, job.DraftID)
	assert.Equal(t, out.Draft.ID, *job.DraftID)

	stored, err := e.drafts.Get(ctx, out.Draft.ID)
	require.NoError(t, err)
	assert.Equal(t, path, stored.SourcePath)
	assert.Equal(t, out.JobID, *stored.JobID)
}

func TestProcessFile_KeepsQuotedAEEmail(t *testing.T) {
	e := newEnv(t)
	text := globexQuote + "PREPARED BY: Jane Doe\njane.doe@presto-x.com\n"
	p := e.processor(fakeExtractor{res: pdftext.Result{Text: text, Method: pdftext.MethodPDFText, Pages: 2}})

	out, err := p.ProcessFile(context.Background(), "/inbox/globex.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, out.Pages)
	assert.Equal(t, "BRN-002", out.Draft.Draft.BranchID)
	assert.Equal(t, "jane.doe@presto-x.com", *out.Draft.Draft.AEEmail)

	job, err := e.jobs.Get(context.Background(), out.JobID)
	require.NoError(t, err)
	assert.Equal(t, 2, *job.Pages)
	assert.Equal(t, pdftext.MethodPDFText, *job.TextMethod)
}

func TestProcessFile_Unsupported(t *testing.T) {
	e := newEnv(t)
	p := e.processor(fakeExtractor{})
	_, err := p.ProcessFile(context.Background(), "/inbox/quote.docx")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	jobs, err := e.jobs.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestProcessFile_ExtractFailureFailsJob(t *testing.T) {
	e := newEnv(t)
	p := e.processor(fakeExtractor{err: pdftext.ErrNoText})

	out, err := p.ProcessFile(context.Background(), "/inbox/scan.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, pdftext.ErrNoText)

	job, err := e.jobs.Get(context.Background(), out.JobID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusFailed), job.Status)
	assert.Contains(t, *job.ErrorMessage, "NO_TEXT")
}

func TestProcessText(t *testing.T) {
	e := newEnv(t)
	p := e.processor(fakeExtractor{})

	out, err := p.ProcessText(context.Background(), "", globexQuote)
	require.NoError(t, err)
	assert.Equal(t, "inline", out.Draft.SourcePath)
	assert.Equal(t, pdftext.MethodPlain, out.Method)

	out, err = p.ProcessText(context.Background(), "paste", "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, quote.ErrEmptyInput)
	job, err := e.jobs.Get(context.Background(), out.JobID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusFailed), job.Status)
}

func TestProcessText_ValidationFailureFailsJob(t *testing.T) {
	e := newEnv(t)
	reject := errors.New("contract says no")
	p := e.processor(fakeExtractor{}, WithValidator(func(*entity.Draft) error { return reject }))

	out, err := p.ProcessText(context.Background(), "paste", globexQuote)
	assert.ErrorIs(t, err, reject)

	job, err := e.jobs.Get(context.Background(), out.JobID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusFailed), job.Status)
	assert.Nil(t, job.DraftID)

	drafts, err := e.drafts.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestProcessText_WithoutResolverKeepsDefaultBranch(t *testing.T) {
	e := newEnv(t)
	p := NewProcessor(e.logger, fakeExtractor{}, e.parser, e.jobs, e.drafts)

	out, err := p.ProcessText(context.Background(), "paste", globexQuote)
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultBranchID, out.Draft.Draft.BranchID)
	assert.Nil(t, out.Draft.Draft.AEEmail)
}
