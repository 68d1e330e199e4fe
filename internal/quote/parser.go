package quote

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/startpacket/constants"
	"github.com/joseph-ayodele/startpacket/internal/common"
	"github.com/joseph-ayodele/startpacket/internal/entity"
)

// ErrEmptyInput is returned when there is no document text to parse.
var ErrEmptyInput = common.NewAppError("EMPTY_INPUT", "no document text provided", common.ErrInvalidInput)

// Parser turns quote text into a Draft. A Parser is immutable after New and
// safe for concurrent use.
type Parser struct {
	vocab      Vocabulary
	m          *matchers
	logger     *slog.Logger
	now        func() time.Time
	pricing    []PricingStrategy
	overrides  []ServiceOverride
	concurrent bool
	branchID   string
	leadType   constants.LeadType
}

type Option func(*Parser)

// WithVocabulary replaces the built-in phrase lists and rule tables.
func WithVocabulary(v Vocabulary) Option {
	return func(p *Parser) { p.vocab = v }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock sets the clock used to default the year of "Month D" dates.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// WithPricingStrategies replaces the pricing tiers. They run in order.
func WithPricingStrategies(s ...PricingStrategy) Option {
	return func(p *Parser) { p.pricing = s }
}

// WithServiceOverrides replaces the post-collection service overrides.
func WithServiceOverrides(o ...ServiceOverride) Option {
	return func(p *Parser) { p.overrides = o }
}

// WithConcurrentExtractors runs the field extractors in parallel. Output is
// identical either way.
func WithConcurrentExtractors(on bool) Option {
	return func(p *Parser) { p.concurrent = on }
}

func WithBranchID(id string) Option {
	return func(p *Parser) {
		if id = strings.TrimSpace(id); id != "" {
			p.branchID = id
		}
	}
}

func WithLeadType(t constants.LeadType) Option {
	return func(p *Parser) {
		if constants.IsLeadType(string(t)) {
			p.leadType = t
		}
	}
}

// New builds a Parser, validating and compiling its vocabulary.
func New(opts ...Option) (*Parser, error) {
	p := &Parser{
		vocab:     DefaultVocabulary(),
		logger:    slog.Default(),
		now:       time.Now,
		pricing:   DefaultPricingStrategies(),
		overrides: DefaultServiceOverrides(),
		branchID:  constants.DefaultBranchID,
		leadType:  constants.LeadInbound,
	}
	for _, opt := range opts {
		opt(p)
	}
	m, err := p.vocab.validate()
	if err != nil {
		return nil, common.NewAppError("CONFIG_ERROR", "invalid vocabulary", err)
	}
	p.m = m
	return p, nil
}

// Lines exposes the normalized lines for a text, mainly for diagnostics.
func (p *Parser) Lines(text string) []string {
	return p.m.NormalizeLines(text)
}

// Parse builds a Draft from raw document text. Only empty input fails; missing
// sections leave their fields nil.
func (p *Parser) Parse(ctx context.Context, text string) (*entity.Draft, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	return p.ParseLines(ctx, p.m.NormalizeLines(text))
}

// ParseLines builds a Draft from already normalized lines.
func (p *Parser) ParseLines(ctx context.Context, lines []string) (*entity.Draft, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.logger.Debug("quote.parse.start", "lines", len(lines), "concurrent", p.concurrent)

	x, err := p.extract(lines)
	if err != nil {
		return nil, err
	}
	draft := p.reconcile(x)

	p.logger.Debug("quote.parse.ok",
		"account", draft.AccountName != nil,
		"services", len(draft.Services),
		"pests", len(draft.CoveredPests),
		"monthly", draft.MonthlyCost != nil,
	)
	return draft, nil
}

func (p *Parser) extract(lines []string) (extraction, error) {
	var x extraction
	steps := []func(){
		func() { x.header = p.m.ExtractHeader(lines) },
		func() { x.preparer = p.m.ExtractPreparer(lines) },
		func() { x.equipment = p.m.ExtractEquipment(lines) },
		func() { x.pricing = p.resolvePricing(lines) },
		func() { x.schedule = p.m.ExtractSchedule(lines, p.now()) },
		func() { x.services = p.m.ExtractServices(lines, p.overrides) },
		func() { x.pests = p.m.ExtractCoveredPests(lines) },
	}

	if !p.concurrent {
		for _, step := range steps {
			step()
		}
		return x, nil
	}

	// each step writes a distinct field of x
	var g errgroup.Group
	for _, step := range steps {
		g.Go(func() error {
			step()
			return nil
		})
	}
	return x, g.Wait()
}

// resolvePricing runs the pricing tiers in order until every figure is known.
func (p *Parser) resolvePricing(lines []string) PricingSummary {
	section := p.m.pricingSection(lines)
	var ps PricingSummary
	for _, s := range p.pricing {
		if ps.Complete() {
			break
		}
		s.Resolve(section, &ps)
		p.logger.Debug("quote.pricing.tier",
			"strategy", s.Name(),
			"bounded", section.Bounded,
			"complete", ps.Complete(),
		)
	}
	return ps
}
