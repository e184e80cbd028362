package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/entity"
	"github.com/joseph-ayodele/contracts-analyzer/internal/extract"
	"github.com/joseph-ayodele/contracts-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/contracts-analyzer/internal/repository"
)

// DocumentNameHeader carries the uploaded file name; it selects the extraction format.
const DocumentNameHeader = "x-document-name"

// Processor is the part of pipeline.Processor the service drives.
type Processor interface {
	Analyze(ctx context.Context, doc extract.Document) (pipeline.Report, error)
	ExtractText(ctx context.Context, doc extract.Document) (extract.ExtractedText, error)
}

type AnalysisService struct {
	proc      Processor
	runs      repository.AnalysisRepository
	maxUpload int
	logger    *slog.Logger
}

// NewAnalysisService builds the service. runs may be nil, in which case GetRun reports Unimplemented.
func NewAnalysisService(proc Processor, runs repository.AnalysisRepository, maxUpload int, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{proc: proc, runs: runs, maxUpload: maxUpload, logger: logger}
}

func (s *AnalysisService) Analyze(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	doc, err := s.document(ctx, req)
	if err != nil {
		return nil, err
	}
	log := common.LoggerFromContext(ctx, s.logger)
	log.Info("analyze request", "doc", doc.Name, "bytes", len(doc.Content))

	report, err := s.proc.Analyze(ctx, doc)
	if err != nil {
		log.Warn("analyze failed", "doc", doc.Name, "stage", common.StageOf(err), "err", err)
		return nil, common.ToStatus(err)
	}
	out, err := toStruct(report)
	if err != nil {
		log.Error("encode report failed", "err", err)
		return nil, common.InternalError("encode report failed")
	}
	return out, nil
}

func (s *AnalysisService) ExtractText(ctx context.Context, req *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	doc, err := s.document(ctx, req)
	if err != nil {
		return nil, err
	}
	text, err := s.proc.ExtractText(ctx, doc)
	if err != nil {
		common.LoggerFromContext(ctx, s.logger).Warn("extract failed", "doc", doc.Name, "err", err)
		return nil, common.ToStatus(err)
	}
	return wrapperspb.String(text.Text), nil
}

// GetRun returns a stored analysis run by ID.
func (s *AnalysisService) GetRun(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if s.runs == nil {
		return nil, status.Error(codes.Unimplemented, "run storage is not configured")
	}
	id, err := uuid.Parse(strings.TrimSpace(req.GetValue()))
	if err != nil {
		return nil, common.InvalidArgumentError("run id must be a UUID")
	}
	run, err := s.runs.GetByID(ctx, id)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	out, err := toStruct(runView(run))
	if err != nil {
		return nil, common.InternalError("encode run failed")
	}
	return out, nil
}

func (s *AnalysisService) document(ctx context.Context, req *wrapperspb.BytesValue) (extract.Document, error) {
	content := req.GetValue()
	if len(content) == 0 {
		return extract.Document{}, common.InvalidArgumentError("document content is required")
	}
	if s.maxUpload > 0 && len(content) > s.maxUpload {
		return extract.Document{}, status.Errorf(codes.ResourceExhausted, "document is %d bytes, limit is %d", len(content), s.maxUpload)
	}
	name := "document.pdf"
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(DocumentNameHeader); len(v) > 0 && strings.TrimSpace(v[0]) != "" {
			name = strings.TrimSpace(v[0])
		}
	}
	return extract.Document{Name: name, Content: content, Hash: extract.ContentHash(content)}, nil
}

type runRecord struct {
	ID           string          `json:"id"`
	DocumentName string          `json:"document_name"`
	DocumentHash string          `json:"document_hash"`
	Status       string          `json:"status"`
	ContractType *string         `json:"contract_type,omitempty"`
	RiskScore    *int            `json:"risk_score,omitempty"`
	Error        *string         `json:"error,omitempty"`
	Report       json.RawMessage `json:"report,omitempty"`
}

func runView(run *entity.AnalysisRun) runRecord {
	return runRecord{
		ID:           run.ID.String(),
		DocumentName: run.DocumentName,
		DocumentHash: run.DocumentHash,
		Status:       string(run.Status),
		ContractType: run.ContractType,
		RiskScore:    run.RiskScore,
		Error:        run.ErrorMessage,
		Report:       run.Report,
	}
}

// toStruct round-trips v through JSON so the struct fields keep their json tags.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}
