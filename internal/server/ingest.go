package server

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/startpacket/internal/common"
	"github.com/joseph-ayodele/startpacket/internal/ingest"
)

// IngestionService queues quote files found on the server's filesystem.
type IngestionService struct {
	ingest *ingest.Service
	logger *slog.Logger
}

func NewIngestionService(svc *ingest.Service, logger *slog.Logger) *IngestionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestionService{ingest: svc, logger: logger}
}

// Ingest queues path, walking it when it is a directory. Hidden entries are
// skipped.
func (s *IngestionService) Ingest(ctx context.Context, path string) (map[string]any, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		s.logger.Error("ingest request missing path")
		return nil, common.InvalidArgumentError("path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.NotFoundError("path not found")
		}
		return nil, common.InternalErrorf("stat: %v", err)
	}

	if !info.IsDir() {
		s.logger.Info("starting file ingest", "path", path)
		if err := s.ingest.EnqueueFile(ctx, path, true); err != nil {
			return nil, common.ToStatus(err)
		}
		return map[string]any{"queued": 1, "paths": []string{path}}, nil
	}

	res, err := s.ingest.EnqueueDirectory(ctx, ingest.DirectoryRequest{RootPath: path, SkipHidden: true})
	if err != nil {
		return nil, common.ToStatus(err)
	}
	errs := make([]map[string]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		errs = append(errs, map[string]string{"path": e.Path, "error": e.Err})
	}
	return map[string]any{
		"scanned": res.Stats.Scanned,
		"matched": res.Stats.Matched,
		"queued":  res.Stats.Queued,
		"failed":  res.Stats.Failed,
		"paths":   res.Paths,
		"errors":  errs,
	}, nil
}

// IngestPath queues a quote file or directory for background parsing.
func (s *StartPacketService) IngestPath(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if s.ingest == nil {
		return nil, common.InternalError("ingestion is not configured")
	}
	out, err := s.ingest.Ingest(ctx, req.GetValue())
	if err != nil {
		return nil, err
	}
	return toStruct(out)
}
