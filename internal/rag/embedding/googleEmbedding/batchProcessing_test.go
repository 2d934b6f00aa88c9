package googleEmbedding

import (
	"errors"
	"testing"

	"github.com/akolanti/delphi/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestDoRetry(t *testing.T) {
	log := logger_i.NewLogger("test")
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"grpc resource exhausted", status.Error(codes.ResourceExhausted, "quota"), true},
		{"http 429", genai.APIError{Code: 429, Message: "slow down"}, true},
		{"grpc internal", status.Error(codes.Internal, "boom"), false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := doRetry(tt.err, log); got != tt.want {
				t.Errorf("doRetry(%v) = %v; want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDownloadAnswerFromClient(t *testing.T) {
	log := logger_i.NewLogger("test")
	ok := &genai.InlinedEmbedContentResponse{
		Response: &genai.SingleEmbedContentResponse{Embedding: &genai.ContentEmbedding{Values: []float32{1, 2}}},
	}

	got, err := downloadAnswerFromClient(&genai.BatchJob{
		Dest: &genai.BatchJobDestination{InlinedEmbedContentResponses: []*genai.InlinedEmbedContentResponse{ok, ok}},
	}, log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[1][1] != 2 {
		t.Errorf("unexpected vectors %v", got)
	}

	_, err = downloadAnswerFromClient(&genai.BatchJob{
		Dest: &genai.BatchJobDestination{InlinedEmbedContentResponses: []*genai.InlinedEmbedContentResponse{ok, {}}},
	}, log)
	if err == nil {
		t.Error("expected an error for a failed result")
	}

	got, err = downloadAnswerFromClient(&genai.BatchJob{}, log)
	if err != nil || len(got) != 0 {
		t.Errorf("empty destination: got %v, %v", got, err)
	}
}
