package eino

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/llm"
)

type fakeChat struct {
	reply string
	err   error
	seen  []*schema.Message
}

func (f *fakeChat) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.seen = input
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{Role: schema.Assistant, Content: f.reply}, nil
}

func (f *fakeChat) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func TestSummarizeSendsSystemAndUser(t *testing.T) {
	chat := &fakeChat{reply: `{"summary":"Short."}`}
	got, err := New(chat, nil).Summarize(context.Background(), "contract text", 10, 20)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "Short." {
		t.Errorf("got %q", got)
	}
	if len(chat.seen) != 2 || chat.seen[0].Role != schema.System || chat.seen[1].Content != "contract text" {
		t.Errorf("messages = %+v", chat.seen)
	}
}

func TestClassifyIndex(t *testing.T) {
	got, err := New(&fakeChat{reply: `{"class_index":1}`}, nil).ClassifyIndex(context.Background(), "employee")
	if err != nil || got != 1 {
		t.Fatalf("ClassifyIndex = %d, %v", got, err)
	}
}

func TestInvalidReplyIsCapabilityError(t *testing.T) {
	_, err := New(&fakeChat{reply: "not json"}, nil).Translate(context.Background(), "hi", "hi")
	if !errors.Is(err, common.ErrCapability) || !errors.Is(err, llm.ErrMalformedReply) {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerateErrorIsCapabilityError(t *testing.T) {
	_, err := New(&fakeChat{err: errors.New("boom")}, nil).Answer(context.Background(), "q", "ctx")
	if !errors.Is(err, common.ErrCapability) {
		t.Fatalf("err = %v", err)
	}
	if common.StageOf(err) != "llm.answer" {
		t.Errorf("stage = %q", common.StageOf(err))
	}
}

func TestNewOpenAICompatibleRequiresKey(t *testing.T) {
	_, err := NewOpenAICompatible(context.Background(), ChatModelConfig{})
	if !errors.Is(err, common.ErrConfiguration) {
		t.Fatalf("err = %v", err)
	}
}
