package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func TestGenerateQuestions(t *testing.T) {
	var gotBody questionGenRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(questionGenResponse{
			Questions: []string{"What is covered first?", "What is the conclusion?"},
		})
	}))
	defer srv.Close()

	g := NewQuestionGenerator(QuestionGenConfig{URL: srv.URL, Timeout: 5 * time.Second}, nil)
	got, err := g.Generate(context.Background(), "a summary")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	want := []string{"What is covered first?", "What is the conclusion?"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Generate() = %v, want %v", got, want)
	}
	if gotBody.Summary != "a summary" {
		t.Fatalf("request summary = %q", gotBody.Summary)
	}
}

// Unlike summarization there is no degraded mode: any failure is an error.
func TestGenerateQuestionsFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
		},
		{
			name: "empty question list",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(questionGenResponse{Questions: []string{}})
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			g := NewQuestionGenerator(QuestionGenConfig{URL: srv.URL, Timeout: 5 * time.Second}, nil)
			if _, err := g.Generate(context.Background(), "a summary"); err == nil {
				t.Fatal("Generate() = nil error, want failure")
			}
		})
	}
}

func TestGenerateQuestionsUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	g := NewQuestionGenerator(QuestionGenConfig{URL: srv.URL, Timeout: time.Second}, nil)
	if _, err := g.Generate(context.Background(), "a summary"); err == nil {
		t.Fatal("Generate() = nil error, want failure")
	}
}
