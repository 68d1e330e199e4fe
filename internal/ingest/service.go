package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/startpacket/internal/async"
	"github.com/joseph-ayodele/startpacket/internal/common"
)

// Service feeds quote files into the processing queue.
type Service struct {
	queue  async.Queue
	exts   []string
	logger *slog.Logger
}

func NewService(q async.Queue, exts []string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{queue: q, exts: exts, logger: logger}
}

// EnqueueFile queues a single quote file.
func (s *Service) EnqueueFile(ctx context.Context, path string, force bool) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return common.NewAppError("INVALID_PATH", "path is required", common.ErrInvalidInput)
	}
	if !AllowedExt(path, extSet(s.exts)) {
		return common.NewAppError("UNSUPPORTED_FORMAT", "unsupported quote file: "+filepath.Base(path), common.ErrInvalidInput)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("abs path: %w", err)
	}
	ctx, traceID := common.EnsureRequestID(ctx)
	return s.queue.Enqueue(ctx, async.Job{Path: abs, Force: force, TraceID: traceID})
}

// DirectoryRequest describes a one-off directory ingest.
type DirectoryRequest struct {
	RootPath   string
	SkipHidden bool
	Force      bool
}

// EnqueueDirectory walks RootPath and queues every quote file found.
func (s *Service) EnqueueDirectory(ctx context.Context, req DirectoryRequest) (*DirectoryResult, error) {
	root := strings.TrimSpace(req.RootPath)
	if root == "" {
		return nil, common.NewAppError("INVALID_PATH", "root_path is required", common.ErrInvalidInput)
	}

	s.logger.Info("starting directory ingest", "root", root, "skip_hidden", req.SkipHidden)
	paths, stats, failures, err := WalkDirectory(root, s.exts, req.SkipHidden)
	if err != nil {
		return nil, err
	}

	res := &DirectoryResult{Errors: failures}
	for _, p := range paths {
		if err := s.EnqueueFile(ctx, p, req.Force); err != nil {
			if errors.Is(err, async.ErrQueueClosed) || ctx.Err() != nil {
				res.Stats = stats
				return res, err
			}
			stats.Failed++
			res.Errors = append(res.Errors, FileError{Path: p, Err: err.Error()})
			continue
		}
		stats.Queued++
		res.Paths = append(res.Paths, p)
	}
	res.Stats = stats

	s.logger.Info("directory ingest completed",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"queued", stats.Queued,
		"failed", stats.Failed,
	)
	return res, nil
}

// Watch queues files appearing under cfg.Roots until ctx ends.
func (s *Service) Watch(ctx context.Context, cfg WatchConfig) error {
	if cfg.Logger == nil {
		cfg.Logger = s.logger
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = s.exts
	}
	events, errs, err := StartWatcher(ctx, cfg)
	if err != nil {
		return err
	}
	s.logger.Info("watching inbox", "roots", cfg.Roots, "debounce", cfg.Debounce)

	for {
		select {
		case p, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			if err := s.EnqueueFile(ctx, p, false); err != nil {
				if errors.Is(err, async.ErrQueueClosed) {
					return err
				}
				s.logger.Warn("enqueue from watcher failed", "path", p, "error", err)
			}
		case err, ok := <-errs:
			if ok && err != nil {
				s.logger.Warn("watcher reported error", "error", err)
			}
			if !ok {
				errs = nil
			}
		}
	}
}
