package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/startpacket/constants"
	"github.com/joseph-ayodele/startpacket/internal/common"
	"github.com/joseph-ayodele/startpacket/internal/entity"
	"github.com/joseph-ayodele/startpacket/internal/pdftext"
	"github.com/joseph-ayodele/startpacket/internal/repository"
	"github.com/joseph-ayodele/startpacket/internal/schema"
)

// TextExtractor recovers document text from a quote file.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (pdftext.Result, error)
}

type QuoteParser interface {
	Parse(ctx context.Context, text string) (*entity.Draft, error)
}

// BranchResolver maps a service zip onto its territory assignment.
type BranchResolver interface {
	ResolveBranch(ctx context.Context, zip string) (*entity.Territory, bool, error)
}

// Outcome is what one processed document produced.
type Outcome struct {
	JobID  uuid.UUID
	Draft  *entity.StoredDraft
	Method string
	Pages  int
}

// Processor coordinates text extraction, parsing, territory enrichment,
// contract validation and storage, tracking each run as a parse job.
type Processor struct {
	logger      *slog.Logger
	text        TextExtractor
	parser      QuoteParser
	territories BranchResolver
	jobs        repository.ParseJobRepository
	drafts      repository.DraftRepository
	validate    func(*entity.Draft) error
}

type Option func(*Processor)

// WithBranchResolver enables territory enrichment of parsed drafts.
func WithBranchResolver(r BranchResolver) Option {
	return func(p *Processor) { p.territories = r }
}

// WithValidator replaces the output contract check run before saving.
func WithValidator(fn func(*entity.Draft) error) Option {
	return func(p *Processor) {
		if fn != nil {
			p.validate = fn
		}
	}
}

func NewProcessor(
	logger *slog.Logger,
	text TextExtractor,
	parser QuoteParser,
	jobs repository.ParseJobRepository,
	drafts repository.DraftRepository,
	opts ...Option,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		logger:   logger,
		text:     text,
		parser:   parser,
		jobs:     jobs,
		drafts:   drafts,
		validate: schema.ValidateDraft,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ProcessFile turns one .pdf or .txt quote into a stored draft.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*Outcome, error) {
	format, ok := constants.MapExtToFormat(filepath.Ext(path))
	if !ok {
		return nil, fmt.Errorf("%w: %s", pdftext.ErrUnsupportedFormat, path)
	}
	ctx = common.WithSource(ctx, path)
	log := common.LoggerWith(ctx, p.logger)

	job, err := p.jobs.Start(ctx, path, string(format))
	if err != nil {
		return nil, fmt.Errorf("start job: %w", err)
	}

	res, err := p.text.Extract(ctx, path)
	if err != nil {
		log.Error("processor.text.failed", "job_id", job.ID, "err", err)
		return p.fail(ctx, job.ID, fmt.Errorf("extract text: %w", err))
	}
	if err := p.jobs.MarkTextOK(ctx, job.ID, res.Method, res.Pages); err != nil {
		return p.fail(ctx, job.ID, err)
	}
	log.Info("processor.text.ok",
		"job_id", job.ID,
		"method", res.Method,
		"pages", res.Pages,
		"warnings", len(res.Warnings),
	)

	out, err := p.parseAndStore(ctx, job.ID, path, res.Text)
	if err != nil {
		return out, err
	}
	out.Method, out.Pages = res.Method, res.Pages
	return out, nil
}

// ProcessText parses text that arrived without a file, such as a pasted
// quote. source names it on the job and draft.
func (p *Processor) ProcessText(ctx context.Context, source, text string) (*Outcome, error) {
	if source == "" {
		source = "inline"
	}
	ctx = common.WithSource(ctx, source)

	job, err := p.jobs.Start(ctx, source, string(constants.FormatTXT))
	if err != nil {
		return nil, fmt.Errorf("start job: %w", err)
	}
	out, err := p.parseAndStore(ctx, job.ID, source, text)
	if err != nil {
		return out, err
	}
	out.Method = pdftext.MethodPlain
	return out, nil
}

func (p *Processor) parseAndStore(ctx context.Context, jobID uuid.UUID, source, text string) (*Outcome, error) {
	log := common.LoggerWith(ctx, p.logger)

	draft, err := p.parser.Parse(ctx, text)
	if err != nil {
		log.Error("processor.parse.failed", "job_id", jobID, "err", err)
		return p.fail(ctx, jobID, fmt.Errorf("parse quote: %w", err))
	}
	p.enrich(ctx, draft)

	if err := p.validate(draft); err != nil {
		log.Error("processor.validate.failed", "job_id", jobID, "err", err)
		return p.fail(ctx, jobID, err)
	}

	stored, err := p.drafts.Save(ctx, &jobID, source, draft)
	if err != nil {
		return p.fail(ctx, jobID, fmt.Errorf("save draft: %w", err))
	}
	if err := p.jobs.FinishSuccess(ctx, jobID, stored.ID); err != nil {
		return &Outcome{JobID: jobID, Draft: stored}, err
	}
	log.Info("processor.parse.ok",
		"job_id", jobID,
		"draft_id", stored.ID,
		"services", len(draft.Services),
		"branch_id", draft.BranchID,
	)
	return &Outcome{JobID: jobID, Draft: stored}, nil
}

// enrich stamps the branch of the territory owning the service zip and
// fills a missing AE email from it. Lookup failures leave the draft as is.
func (p *Processor) enrich(ctx context.Context, d *entity.Draft) {
	if p.territories == nil || d.ServiceZip == nil {
		return
	}
	t, ok, err := p.territories.ResolveBranch(ctx, *d.ServiceZip)
	if err != nil {
		p.logger.Warn("processor.territory.lookup_failed", "zip", *d.ServiceZip, "err", err)
		return
	}
	if !ok {
		return
	}
	d.BranchID = t.BranchID
	if d.AEEmail == nil {
		email := t.AEEmail
		d.AEEmail = &email
	}
}

func (p *Processor) fail(ctx context.Context, jobID uuid.UUID, cause error) (*Outcome, error) {
	// the job row is still closed out when the caller gave up
	if err := p.jobs.FinishFailure(context.WithoutCancel(ctx), jobID, cause.Error()); err != nil {
		p.logger.Error("processor.job.finish_failed", "job_id", jobID, "err", err)
	}
	return &Outcome{JobID: jobID}, cause
}
