package server

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ducklingk58/medical-product-overview-system/internal/models"
	"github.com/ducklingk58/medical-product-overview-system/pkg/config"
	"github.com/ducklingk58/medical-product-overview-system/pkg/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

// Message is the websocket frame. Type is one of "stage", "section",
// "result", or "error".
type Message struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Data    any    `json:"data,omitempty"`
}

// GenerateRequest is the client's job: a product name plus raw label
// documents to extract from. Documents may be empty.
type GenerateRequest struct {
	ProductName string `json:"product_name"`
	Documents   []struct {
		Name    string `json:"name"`
		Content string `json:"content"`
	} `json:"documents"`
}

type Server struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
}

func New(cfg *config.Config) (*Server, error) {
	p, err := pipeline.NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, pipeline: p}, nil
}

func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/generate", s.handleGenerate)
	mux.HandleFunc("/health", s.handleHealth)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleGenerate runs one overview job per websocket message, streaming
// stage and per-section progress before the final export structure.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var req GenerateRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}

		if req.ProductName == "" {
			conn.WriteJSON(Message{Type: "error", Content: "product_name is required"})
			continue
		}

		docs := make([]models.SourceDocument, 0, len(req.Documents))
		for _, d := range req.Documents {
			docs = append(docs, models.SourceDocument{
				ID:      uuid.NewString(),
				Name:    d.Name,
				Type:    "text",
				Content: d.Content,
			})
		}

		// progress frames come from pipeline goroutines; gorilla conns
		// allow one concurrent writer, so funnel them through a channel
		progress := make(chan Message, int(models.NumSections)+8)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for msg := range progress {
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			}
		}()

		s.pipeline.OnStage = func(stage string) {
			progress <- Message{Type: "stage", Content: stage}
		}
		s.pipeline.OnSection = func(sec models.Section) {
			progress <- Message{Type: "section", Content: sec.Name()}
		}

		result, err := s.pipeline.Run(r.Context(), req.ProductName, docs)
		close(progress)
		<-done

		if err != nil {
			conn.WriteJSON(Message{Type: "error", Content: err.Error()})
			continue
		}

		conn.WriteJSON(Message{
			Type: "result",
			Data: map[string]any{
				"overview": result.Export,
				"summary": map[string]any{
					"extracted": result.Summary.Extracted,
					"completed": result.Summary.Completed,
					"empty":     result.Summary.Empty,
					"failures":  failureStrings(result.Summary.Failures),
				},
			},
		})
	}
}

func failureStrings(failures []models.CompletionFailure) []string {
	out := make([]string, len(failures))
	for i, f := range failures {
		out[i] = f.String()
	}
	return out
}
