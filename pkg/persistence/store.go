package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// isConflict reports whether err is a uniqueness-constraint violation.
// The store's unique indexes are the final arbiter under concurrency; a
// conflict means another writer won the race and the caller should re-read.
func isConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetOrCreateDocument looks a document up by its content hash before creating
// a new one, so re-ingesting identical source text never produces duplicate
// documents.
func (s *Store) GetOrCreateDocument(ctx context.Context, title, content, docType string) (*Document, error) {
	hash := Fingerprint(content)

	if doc, err := s.getDocumentByHash(ctx, hash); err != nil {
		return nil, err
	} else if doc != nil {
		s.logger.Debug("document exists for hash %s (id=%d)", hash[:12], doc.ID)
		return doc, nil
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (title, content, content_hash, doc_type, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		title, content, hash, docType, now,
	)
	if err != nil {
		if isConflict(err) {
			// A concurrent writer inserted the same content; use their row.
			return s.getDocumentByHash(ctx, hash)
		}
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read document id: %w", err)
	}
	s.logger.Info("created document id=%d type=%s", id, docType)

	return &Document{
		ID:          id,
		Title:       title,
		Content:     content,
		ContentHash: hash,
		DocType:     docType,
		CreatedAt:   now,
	}, nil
}

// getDocumentByHash returns the document with the given content hash, or nil.
// FindDocumentByContent returns the document whose content hashes to the
// same fingerprint, or nil when none exists.
func (s *Store) FindDocumentByContent(ctx context.Context, content string) (*Document, error) {
	return s.getDocumentByHash(ctx, Fingerprint(content))
}

func (s *Store) getDocumentByHash(ctx context.Context, hash string) (*Document, error) {
	var doc Document
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, content_hash, doc_type, created_at
		 FROM documents WHERE content_hash = ?`, hash,
	).Scan(&doc.ID, &doc.Title, &doc.Content, &doc.ContentHash, &doc.DocType, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document by hash: %w", err)
	}
	return &doc, nil
}

// GetDocument returns a document by ID.
func (s *Store) GetDocument(ctx context.Context, id int64) (*Document, error) {
	var doc Document
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, content_hash, doc_type, created_at
		 FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Title, &doc.Content, &doc.ContentHash, &doc.DocType, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return &doc, nil
}

// GetOrCreateSentence deduplicates sentences within a document by text hash.
func (s *Store) GetOrCreateSentence(ctx context.Context, docID int64, position int, text string) (*Sentence, error) {
	hash := Fingerprint(text)

	if sent, err := s.getSentenceByHash(ctx, docID, hash); err != nil {
		return nil, err
	} else if sent != nil {
		return sent, nil
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO sentences (doc_id, position, text, text_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		docID, position, text, hash, now,
	)
	if err != nil {
		if isConflict(err) {
			return s.getSentenceByHash(ctx, docID, hash)
		}
		return nil, fmt.Errorf("failed to insert sentence: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read sentence id: %w", err)
	}

	return &Sentence{
		ID:        id,
		DocID:     docID,
		Position:  position,
		Text:      text,
		TextHash:  hash,
		CreatedAt: now,
	}, nil
}

// getSentenceByHash returns the sentence for (docID, hash), or nil.
func (s *Store) getSentenceByHash(ctx context.Context, docID int64, hash string) (*Sentence, error) {
	var sent Sentence
	err := s.db.QueryRowContext(ctx,
		`SELECT id, doc_id, position, text, text_hash, created_at
		 FROM sentences WHERE doc_id = ? AND text_hash = ?`, docID, hash,
	).Scan(&sent.ID, &sent.DocID, &sent.Position, &sent.Text, &sent.TextHash, &sent.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sentence by hash: %w", err)
	}
	return &sent, nil
}

// GetSentence returns a sentence by ID.
func (s *Store) GetSentence(ctx context.Context, id int64) (*Sentence, error) {
	var sent Sentence
	err := s.db.QueryRowContext(ctx,
		`SELECT id, doc_id, position, text, text_hash, created_at
		 FROM sentences WHERE id = ?`, id,
	).Scan(&sent.ID, &sent.DocID, &sent.Position, &sent.Text, &sent.TextHash, &sent.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sentence %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sentence: %w", err)
	}
	return &sent, nil
}

// SentencesForDocument returns a document's sentences in position order.
func (s *Store) SentencesForDocument(ctx context.Context, docID int64) ([]Sentence, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, doc_id, position, text, text_hash, created_at
		 FROM sentences WHERE doc_id = ? ORDER BY position`, docID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sentences: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sentences []Sentence
	for rows.Next() {
		var sent Sentence
		if err := rows.Scan(&sent.ID, &sent.DocID, &sent.Position, &sent.Text, &sent.TextHash, &sent.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sentence: %w", err)
		}
		sentences = append(sentences, sent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sentence iteration failed: %w", err)
	}
	return sentences, nil
}

// FindByFingerprint looks up the analysis record for (sentenceID, fingerprint).
// Returns nil when no record exists.
func (s *Store) FindByFingerprint(ctx context.Context, sentenceID int64, fingerprint string) (*SentimentRecord, error) {
	var rec SentimentRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, sentence_id, text_hash, sentiment, confidence, calls, trace_id, created_at, updated_at
		 FROM sentence_sentiments WHERE sentence_id = ? AND text_hash = ?`,
		sentenceID, fingerprint,
	).Scan(&rec.ID, &rec.SentenceID, &rec.TextHash, &rec.Sentiment, &rec.Confidence,
		&rec.Calls, &rec.TraceID, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sentiment record: %w", err)
	}
	return &rec, nil
}

// UpsertSentiment persists one analysis result for (sentenceID, fingerprint)
// and returns the stored record plus its outcome status:
//
//   - no existing record: insert; a losing race re-reads the winner's row
//   - existing complete record, no override: returned untouched as "cached"
//   - existing record with override, or incomplete record: updated in place,
//     calls counter incremented, update time stamped
func (s *Store) UpsertSentiment(
	ctx context.Context,
	sentenceID int64,
	fingerprint string,
	sentiment string,
	confidence float64,
	traceID string,
	override bool,
) (*SentimentRecord, string, error) {
	existing, err := s.FindByFingerprint(ctx, sentenceID, fingerprint)
	if err != nil {
		return nil, "", err
	}

	if existing != nil {
		if existing.HasResult() && !override {
			s.logger.Debug("sentiment exists for sentence=%d, returning cached", sentenceID)
			return existing, StatusCached, nil
		}
		return s.updateSentiment(ctx, existing, sentiment, confidence, traceID)
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO sentence_sentiments
			(sentence_id, text_hash, sentiment, confidence, calls, trace_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 1, ?, ?, ?)`,
		sentenceID, fingerprint, sentiment, confidence, traceID, now, now,
	)
	if err != nil {
		if isConflict(err) {
			// A concurrent writer inserted first; reconcile by re-reading.
			s.logger.Debug("insert race lost for sentence=%d, re-reading", sentenceID)
			winner, readErr := s.FindByFingerprint(ctx, sentenceID, fingerprint)
			if readErr != nil {
				return nil, "", readErr
			}
			if winner == nil {
				return nil, "", fmt.Errorf("conflict on insert but record absent for sentence=%d", sentenceID)
			}
			if winner.HasResult() && !override {
				return winner, StatusCached, nil
			}
			return s.updateSentiment(ctx, winner, sentiment, confidence, traceID)
		}
		return nil, "", fmt.Errorf("failed to insert sentiment record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read sentiment record id: %w", err)
	}
	s.logger.Info("created sentiment record id=%d sentence=%d", id, sentenceID)

	return &SentimentRecord{
		ID:         id,
		SentenceID: sentenceID,
		TextHash:   fingerprint,
		Sentiment:  &sentiment,
		Confidence: &confidence,
		Calls:      1,
		TraceID:    traceID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, StatusCreated, nil
}

// updateSentiment overwrites an existing record's result fields, bumping the
// revision counter and update timestamp.
func (s *Store) updateSentiment(
	ctx context.Context,
	existing *SentimentRecord,
	sentiment string,
	confidence float64,
	traceID string,
) (*SentimentRecord, string, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`UPDATE sentence_sentiments
		 SET sentiment = ?, confidence = ?, calls = calls + 1, trace_id = ?, updated_at = ?
		 WHERE id = ?`,
		sentiment, confidence, traceID, now, existing.ID,
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to update sentiment record %d: %w", existing.ID, err)
	}
	s.logger.Info("updated sentiment record id=%d (calls=%d)", existing.ID, existing.Calls+1)

	updated := *existing
	updated.Sentiment = &sentiment
	updated.Confidence = &confidence
	updated.Calls = existing.Calls + 1
	updated.TraceID = traceID
	updated.UpdatedAt = now
	return &updated, StatusUpdated, nil
}
