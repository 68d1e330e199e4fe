package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/startpacket/internal/common"
	"github.com/joseph-ayodele/startpacket/internal/entity"
	"github.com/joseph-ayodele/startpacket/internal/pipeline"
	"github.com/joseph-ayodele/startpacket/internal/repository"
)

const ServiceName = "startpacket.v1.StartPacketService"

// StartPacketServer is the RPC surface. Messages are protobuf well-known
// types so no generated code is needed.
type StartPacketServer interface {
	ParseQuote(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetDraft(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListDrafts(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ExportDrafts(context.Context, *emptypb.Empty) (*wrapperspb.BytesValue, error)
	LookupTerritory(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	IngestPath(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// TextProcessor parses quote text that arrived over a transport.
type TextProcessor interface {
	ProcessText(ctx context.Context, source, text string) (*pipeline.Outcome, error)
}

// TerritoryLookup finds the assignment for a zip code.
type TerritoryLookup interface {
	Search(ctx context.Context, zip string) (*entity.Territory, error)
}

type DraftExporter interface {
	ExportDraftsXLSX(ctx context.Context, limit int) ([]byte, error)
}

// StartPacketService implements StartPacketServer.
type StartPacketService struct {
	quotes      TextProcessor
	drafts      repository.DraftRepository
	territories TerritoryLookup
	exporter    DraftExporter
	ingest      *IngestionService
	logger      *slog.Logger
	listLimit   int
}

func NewStartPacketService(
	quotes TextProcessor,
	drafts repository.DraftRepository,
	territories TerritoryLookup,
	exporter DraftExporter,
	ingest *IngestionService,
	logger *slog.Logger,
) *StartPacketService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StartPacketService{
		quotes:      quotes,
		drafts:      drafts,
		territories: territories,
		exporter:    exporter,
		ingest:      ingest,
		logger:      logger,
		listLimit:   100,
	}
}

func (s *StartPacketService) ParseQuote(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	text := req.GetValue()
	if strings.TrimSpace(text) == "" {
		return nil, common.InvalidArgumentError("quote text is required")
	}
	out, err := s.quotes.ProcessText(ctx, "grpc", text)
	if err != nil {
		s.logger.Error("parse quote failed", "request_id", common.RequestIDFromContext(ctx), "error", err)
		return nil, common.ToStatus(err)
	}
	return toStruct(map[string]any{
		"jobId": out.JobID.String(),
		"draft": out.Draft,
	})
}

func (s *StartPacketService) GetDraft(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := uuid.Parse(strings.TrimSpace(req.GetValue()))
	if err != nil {
		return nil, common.InvalidArgumentError("draft id must be a UUID")
	}
	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return toStruct(d)
}

func (s *StartPacketService) ListDrafts(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	ds, err := s.drafts.List(ctx, s.listLimit)
	if err != nil {
		s.logger.Warn("list drafts failed", "error", err)
		return nil, common.InternalError("list drafts failed")
	}
	return toStruct(map[string]any{"drafts": ds, "count": len(ds)})
}

func (s *StartPacketService) LookupTerritory(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	t, err := s.territories.Search(ctx, req.GetValue())
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return toStruct(t)
}

// toStruct round-trips v through JSON so the struct carries the same field
// names as the HTTP API.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return st, nil
}

// RegisterStartPacketServer registers srv on s.
func RegisterStartPacketServer(s grpc.ServiceRegistrar, srv StartPacketServer) {
	s.RegisterService(&startPacketServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](method string, call func(StartPacketServer, context.Context, *Req) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(StartPacketServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fmt.Sprintf("/%s/%s", ServiceName, method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(StartPacketServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var startPacketServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StartPacketServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ParseQuote", Handler: unaryHandler("ParseQuote", StartPacketServer.ParseQuote)},
		{MethodName: "GetDraft", Handler: unaryHandler("GetDraft", StartPacketServer.GetDraft)},
		{MethodName: "ListDrafts", Handler: unaryHandler("ListDrafts", StartPacketServer.ListDrafts)},
		{MethodName: "ExportDrafts", Handler: unaryHandler("ExportDrafts", StartPacketServer.ExportDrafts)},
		{MethodName: "LookupTerritory", Handler: unaryHandler("LookupTerritory", StartPacketServer.LookupTerritory)},
		{MethodName: "IngestPath", Handler: unaryHandler("IngestPath", StartPacketServer.IngestPath)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "startpacket/v1/service.proto",
}
