package server

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/contracts-analyzer/constants"
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/extract"
	"github.com/joseph-ayodele/contracts-analyzer/internal/lexicon"
	"github.com/joseph-ayodele/contracts-analyzer/internal/pipeline"
)

type textExtractor struct{}

// Extract treats the uploaded bytes as the document text; "scan.png" fails like an unsupported format.
func (textExtractor) Extract(_ context.Context, doc extract.Document) (extract.ExtractedText, error) {
	if doc.Name == "scan.png" {
		return extract.ExtractedText{}, common.NewExtractionError("extract", "unsupported document format", nil)
	}
	text := string(doc.Content)
	return extract.ExtractedText{Text: text, Pages: []string{text}, PageCount: 1, Method: constants.MethodPDFText}, nil
}

func dial(t *testing.T, maxUpload int) *grpc.ClientConn {
	t.Helper()
	proc := pipeline.NewProcessor(nil, textExtractor{}, nil, nil, pipeline.Config{Lexicon: lexicon.Default()})
	srv, _ := NewGRPCServer(NewAnalysisService(proc, nil, maxUpload, nil), nil)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestAnalyzeOverGRPC(t *testing.T) {
	client := NewAnalysisClient(dial(t, 1<<16))
	text := "This agreement includes a penalty clause and termination without notice provisions. Employee shall work for the employer."

	out, err := client.Analyze(context.Background(), wrapperspb.Bytes([]byte(text)))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	fields := out.GetFields()
	if got := fields["contract_type"].GetStringValue(); got != string(constants.Employment) {
		t.Errorf("contract_type = %q", got)
	}
	risk := fields["risk"].GetStructValue().GetFields()
	if got := risk["score"].GetNumberValue(); got != 5 {
		t.Errorf("risk score = %v, want 5", got)
	}
	if got := len(fields["unfavorable"].GetListValue().GetValues()); got != 1 {
		t.Errorf("unfavorable findings = %d, want 1", got)
	}
}

func TestExtractTextOverGRPC(t *testing.T) {
	client := NewAnalysisClient(dial(t, 0))
	out, err := client.ExtractText(context.Background(), wrapperspb.Bytes([]byte("Clause 1")))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if out.GetValue() != "Clause 1" {
		t.Errorf("text = %q", out.GetValue())
	}
}

func TestStatusCodes(t *testing.T) {
	client := NewAnalysisClient(dial(t, 16))
	ctx := context.Background()

	cases := []struct {
		name string
		ctx  context.Context
		body []byte
		want codes.Code
	}{
		{"empty", ctx, nil, codes.InvalidArgument},
		{"too large", ctx, make([]byte, 17), codes.ResourceExhausted},
		{"extraction error", metadata.AppendToOutgoingContext(ctx, DocumentNameHeader, "scan.png"), []byte("x"), codes.FailedPrecondition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.Analyze(tc.ctx, wrapperspb.Bytes(tc.body))
			if got := status.Code(err); got != tc.want {
				t.Errorf("code = %v, want %v (err %v)", got, tc.want, err)
			}
		})
	}
}

func TestGetRunWithoutStorage(t *testing.T) {
	client := NewAnalysisClient(dial(t, 0))
	_, err := client.GetRun(context.Background(), wrapperspb.String("not-used"))
	if status.Code(err) != codes.Unimplemented {
		t.Errorf("code = %v, want Unimplemented", status.Code(err))
	}
}

func TestHealth(t *testing.T) {
	conn := dial(t, 0)
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("status = %v", resp.GetStatus())
	}
}
