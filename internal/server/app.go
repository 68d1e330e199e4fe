package server

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/startpacket/constants"
	"github.com/joseph-ayodele/startpacket/internal/common"
	"github.com/joseph-ayodele/startpacket/internal/export"
	"github.com/joseph-ayodele/startpacket/internal/pdftext"
	"github.com/joseph-ayodele/startpacket/internal/pipeline"
	"github.com/joseph-ayodele/startpacket/internal/quote"
	repo "github.com/joseph-ayodele/startpacket/internal/repository"
	"github.com/joseph-ayodele/startpacket/internal/territory"
)

// App holds the components every command wires the same way.
type App struct {
	DB          *repo.DB
	Drafts      repo.DraftRepository
	Jobs        repo.ParseJobRepository
	Territories *territory.Service
	Parser      *quote.Parser
	Processor   *pipeline.Processor
	Exporter    *export.Service
}

// NewApp opens storage and builds the parsing pipeline from cfg. The caller
// owns App.DB and must Close it.
func NewApp(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	vocab := quote.DefaultVocabulary()
	if cfg.Parser.VocabularyFile != "" {
		v, err := quote.LoadVocabulary(cfg.Parser.VocabularyFile)
		if err != nil {
			logger.Error("failed to load vocabulary", "path", cfg.Parser.VocabularyFile, "error", err)
			return nil, err
		}
		vocab = v
		logger.Info("vocabulary loaded", "path", cfg.Parser.VocabularyFile)
	}
	parser, err := quote.New(
		quote.WithVocabulary(vocab),
		quote.WithLogger(logger),
		quote.WithConcurrentExtractors(cfg.Parser.Concurrent),
		quote.WithBranchID(cfg.Parser.DefaultBranchID),
		quote.WithLeadType(constants.LeadType(cfg.Parser.LeadType)),
	)
	if err != nil {
		return nil, err
	}

	db, err := ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	drafts := repo.NewDraftRepository(db, logger)
	jobs := repo.NewParseJobRepository(db, logger)
	territories, err := territory.NewService(ctx, repo.NewTerritoryRepository(db, logger), cfg.Territory.Environment, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	extractor := pdftext.NewExtractor(pdftext.Config{
		PDFToText: cfg.Parser.PDFToText,
		MaxPages:  cfg.Parser.MaxPages,
	}, logger)
	processor := pipeline.NewProcessor(logger, extractor, parser, jobs, drafts,
		pipeline.WithBranchResolver(territories),
	)

	return &App{
		DB:          db,
		Drafts:      drafts,
		Jobs:        jobs,
		Territories: territories,
		Parser:      parser,
		Processor:   processor,
		Exporter:    export.NewService(drafts, logger),
	}, nil
}
