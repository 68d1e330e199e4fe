package server

import (
	"context"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/startpacket/internal/common"
)

// ExportDrafts returns the newest drafts as an XLSX workbook.
func (s *StartPacketService) ExportDrafts(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BytesValue, error) {
	if s.exporter == nil {
		return nil, common.InternalError("export is not configured")
	}
	xlsx, err := s.exporter.ExportDraftsXLSX(ctx, s.listLimit)
	if err != nil {
		s.logger.Error("export.xlsx.failed", "err", err)
		return nil, common.InternalError(err.Error())
	}
	return wrapperspb.Bytes(xlsx), nil
}
