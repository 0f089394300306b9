package pipeline

import (
	"context"
	"time"

	"github.com/ducklingk58/medical-product-overview-system/internal/models"
	"github.com/ducklingk58/medical-product-overview-system/internal/types"
	"github.com/ducklingk58/medical-product-overview-system/pkg/assembler"
	"github.com/ducklingk58/medical-product-overview-system/pkg/classifier"
	"github.com/ducklingk58/medical-product-overview-system/pkg/config"
	"github.com/ducklingk58/medical-product-overview-system/pkg/llm"
	"github.com/ducklingk58/medical-product-overview-system/pkg/normalizer"
	"github.com/ducklingk58/medical-product-overview-system/pkg/ranker"
	"github.com/ducklingk58/medical-product-overview-system/pkg/reconciler"
	"github.com/ducklingk58/medical-product-overview-system/pkg/segmenter"
)

// Stage names reported through OnStage, in execution order.
const (
	StageNormalize = "normalize"
	StageSegment   = "segment"
	StageClassify  = "classify"
	StageRank      = "rank"
	StageReconcile = "reconcile"
	StageAssemble  = "assemble"
)

// Pipeline runs the full extraction-completion flow for one product:
// normalize, segment, classify, rank, then complete what extraction
// left empty, and assemble the frozen record. Ranking must finish for
// every section before completion starts; Run enforces that ordering.
type Pipeline struct {
	classifier *classifier.Classifier
	ranker     *ranker.Ranker
	reconciler *reconciler.Reconciler

	// OnStage, when set, is called as each stage begins.
	OnStage func(stage string)
	// OnSection, when set, is called when a section finishes completion.
	OnSection func(s models.Section)
}

// NewWithConfig wires the pipeline from configuration, including the
// language-model engine for the completion stage.
func NewWithConfig(cfg *config.Config) (*Pipeline, error) {
	engine, err := llm.NewWithConfig(types.CompleterConfig{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		RateLimit:   cfg.LLM.RateLimit,
	})
	if err != nil {
		return nil, err
	}
	return New(engine, cfg), nil
}

// New wires the pipeline around an existing completion collaborator.
func New(completer types.Completer, cfg *config.Config) *Pipeline {
	dict := classifier.DefaultDictionary()
	return &Pipeline{
		classifier: classifier.New(dict, types.ClassifierConfig{
			MaxPhraseSpan:   cfg.Pipeline.MaxPhraseSpan,
			AcceptThreshold: cfg.Pipeline.AcceptThreshold,
		}),
		ranker: ranker.New(dict, types.RankerConfig{
			ListTopK: cfg.Pipeline.ListTopK,
			Workers:  cfg.Pipeline.Workers,
		}),
		reconciler: reconciler.New(completer, types.ReconcilerConfig{
			Workers: cfg.Pipeline.Workers,
		}),
	}
}

// Run processes the source documents into a finished overview for the
// given product name. An empty document set is not an error: every
// section goes to the completion stage and the result is still a full
// record. Documents are processed independently so token positions stay
// attributable to their source.
func (p *Pipeline) Run(ctx context.Context, productName string, docs []models.SourceDocument) (*assembler.Assembled, error) {
	record := models.NewOverviewRecord(productName)

	p.stage(StageNormalize)
	for i := range docs {
		docs[i].Content = normalizer.Normalize(docs[i].Content)
	}

	p.stage(StageSegment)
	var tokens []models.Token
	for _, doc := range docs {
		tokens = append(tokens, segmenter.Segment(doc.Content, doc.ID)...)
	}

	p.stage(StageClassify)
	candidates := p.classifier.Classify(tokens)

	p.stage(StageRank)
	if err := p.ranker.Select(record, candidates, productName); err != nil {
		return nil, err
	}

	p.stage(StageReconcile)
	p.reconciler.OnSectionDone = p.OnSection
	if err := p.reconciler.Reconcile(ctx, record); err != nil {
		return nil, err
	}

	p.stage(StageAssemble)
	return assembler.Assemble(record)
}

func (p *Pipeline) stage(name string) {
	if p.OnStage != nil {
		p.OnStage(name)
	}
}
