// Package analysis implements sentiment analysis over documents and
// sentences, driving the LLM orchestrator and the persistence layer.
package analysis

import (
	"context"
	"fmt"

	"langops/pkg/client"
	"langops/pkg/hooks"
	"langops/pkg/logx"
	"langops/pkg/persistence"
	"langops/pkg/schema"
	"langops/pkg/textutil"
)

// OperationSentiment names the sentiment analysis operation in logs,
// metrics and traces.
const OperationSentiment = "sentiment_analysis"

// SentimentSchema describes the expected model output: a three-way label
// plus a confidence in [0,1].
func SentimentSchema() *schema.Descriptor {
	return schema.NewDescriptor("sentence_sentiment", map[string]schema.Field{
		"sentiment": {
			Type: schema.TypeString,
			Enum: []string{"positive", "neutral", "negative"},
		},
		"confidence": {
			Type:    schema.TypeNumber,
			Minimum: schema.Float(0),
			Maximum: schema.Float(1),
		},
	})
}

// Options control one analysis run.
type Options struct {
	Profile     string
	Temperature float32
	Mode        string // textutil.ZeroShot or textutil.FewShot
	Override    bool   // re-analyze even when a stored result exists
}

// Result is one sentiment classification.
type Result struct {
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
	Status     string  `json:"status"`
	TraceID    string  `json:"trace_id,omitempty"`
}

// Service runs sentiment analysis tasks.
type Service struct {
	orch   *client.Orchestrator
	store  *persistence.Store
	logger *logx.Logger
}

// NewService creates the analysis service.
func NewService(orch *client.Orchestrator, store *persistence.Store) *Service {
	return &Service{
		orch:   orch,
		store:  store,
		logger: logx.NewLogger("analysis"),
	}
}

// AnalyzeText classifies free text without any persistence identity. Nothing
// is cached or stored; the persist hook skips records without a parent key.
func (s *Service) AnalyzeText(ctx context.Context, text string, opts Options) (*Result, error) {
	return s.analyze(ctx, text, 0, opts)
}

// AnalyzeSentence classifies one stored sentence. A complete stored result
// for the same (sentence, fingerprint) short-circuits before any provider
// call unless opts.Override is set.
func (s *Service) AnalyzeSentence(ctx context.Context, sentenceID int64, opts Options) (*Result, error) {
	sentence, err := s.store.GetSentence(ctx, sentenceID)
	if err != nil {
		return nil, err
	}

	fingerprint := persistence.Fingerprint(sentence.Text)
	if !opts.Override {
		existing, err := s.store.FindByFingerprint(ctx, sentenceID, fingerprint)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.HasResult() {
			s.logger.Info("cached sentiment for sentence=%d, skipping provider call", sentenceID)
			return &Result{
				Sentiment:  *existing.Sentiment,
				Confidence: *existing.Confidence,
				Status:     persistence.StatusCached,
				TraceID:    existing.TraceID,
			}, nil
		}
	}

	return s.analyze(ctx, sentence.Text, sentenceID, opts)
}

// analyze performs the provider round trip for one piece of text.
func (s *Service) analyze(ctx context.Context, text string, sentenceID int64, opts Options) (*Result, error) {
	rc := hooks.NewContext(OperationSentiment, nil)
	rc.Prompt = textutil.BuildSentimentPrompt(text, opts.Mode)
	rc.Temperature = opts.Temperature
	rc.OutputSchema = SentimentSchema()
	rc.AnalyzedText = text
	rc.ParentKey = sentenceID
	rc.ContentFingerprint = persistence.Fingerprint(text)
	rc.Override = opts.Override

	if _, err := s.orch.Call(ctx, opts.Profile, rc); err != nil {
		return nil, err
	}
	if rc.ParsedObject == nil {
		return nil, fmt.Errorf("sentiment output unusable: %w", rc.ValidationErr)
	}

	sentiment, _ := rc.ParsedObject["sentiment"].(string)
	confidence, _ := rc.ParsedObject["confidence"].(float64)
	return &Result{
		Sentiment:  sentiment,
		Confidence: confidence,
		Status:     persistence.StatusCreated,
		TraceID:    rc.TraceID,
	}, nil
}
