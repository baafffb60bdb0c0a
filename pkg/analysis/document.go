package analysis

import (
	"context"
	"fmt"

	"langops/pkg/persistence"
	"langops/pkg/textutil"
)

// IngestResult summarizes one document ingestion.
type IngestResult struct {
	Document  *persistence.Document
	Sentences []persistence.Sentence
	Duplicate bool
}

// IngestDocument stores a document and its sentences. Ingestion is
// idempotent on content: re-ingesting identical content finds the existing
// rows instead of creating duplicates.
func (s *Service) IngestDocument(ctx context.Context, title, content string) (*IngestResult, error) {
	existing, err := s.store.FindDocumentByContent(ctx, content)
	if err != nil {
		return nil, err
	}

	doc, err := s.store.GetOrCreateDocument(ctx, title, content, persistence.DocTypeDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest document: %w", err)
	}

	parts := textutil.SplitSentences(content)
	sentences := make([]persistence.Sentence, 0, len(parts))
	for i, text := range parts {
		sentence, err := s.store.GetOrCreateSentence(ctx, doc.ID, i, text)
		if err != nil {
			return nil, fmt.Errorf("failed to store sentence %d of document %d: %w", i, doc.ID, err)
		}
		sentences = append(sentences, *sentence)
	}

	s.logger.Info("ingested document id=%d title=%q sentences=%d", doc.ID, title, len(sentences))
	return &IngestResult{
		Document:  doc,
		Sentences: sentences,
		Duplicate: existing != nil,
	}, nil
}

// DocumentSummary aggregates per-sentence results for one document run.
type DocumentSummary struct {
	DocumentID int64
	Results    []SentenceResult
	Cached     int
	Analyzed   int
	Failed     int
}

// SentenceResult pairs a sentence with its classification outcome.
type SentenceResult struct {
	Sentence persistence.Sentence
	Result   *Result
	Err      error
}

// AnalyzeDocument classifies every sentence of a stored document. Sentence
// failures do not abort the run; they are reported in the summary so a rerun
// can pick up just the gaps.
func (s *Service) AnalyzeDocument(ctx context.Context, docID int64, opts Options) (*DocumentSummary, error) {
	sentences, err := s.store.SentencesForDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if len(sentences) == 0 {
		return nil, fmt.Errorf("document %d has no sentences; ingest it first", docID)
	}

	summary := &DocumentSummary{DocumentID: docID}
	for i := range sentences {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		result, err := s.AnalyzeSentence(ctx, sentences[i].ID, opts)
		summary.Results = append(summary.Results, SentenceResult{
			Sentence: sentences[i],
			Result:   result,
			Err:      err,
		})
		switch {
		case err != nil:
			summary.Failed++
			s.logger.Warn("sentence %d failed: %v", sentences[i].ID, err)
		case result.Status == persistence.StatusCached:
			summary.Cached++
		default:
			summary.Analyzed++
		}
	}

	s.logger.Info("document %d: analyzed=%d cached=%d failed=%d",
		docID, summary.Analyzed, summary.Cached, summary.Failed)
	return summary, nil
}
