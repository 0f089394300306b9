package types

import (
	"context"
	"errors"
	"time"

	"github.com/ducklingk58/medical-product-overview-system/internal/models"
)

// Completer is the contract with the external language-model
// collaborator. A single synchronous request; the transport decides
// nothing about model identity.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Reader turns a source file into ready-to-normalize text.
type Reader interface {
	ReadFile(path string) (models.SourceDocument, error)
}

// ErrSchemaViolation indicates the assembler found a missing fixed key.
// This is a pipeline defect and the only error surfaced to the caller.
var ErrSchemaViolation = errors.New("schema violation")

type CompleterConfig struct {
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	RateLimit   float64 // requests per second
}

type ClassifierConfig struct {
	MaxPhraseSpan   int
	AcceptThreshold float64
}

type RankerConfig struct {
	ListTopK int
	Workers  int
}

type ReconcilerConfig struct {
	Workers int
}
