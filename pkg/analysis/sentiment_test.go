package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langops/pkg/client"
	"langops/pkg/hooks"
	"langops/pkg/llm"
	"langops/pkg/llm/llmerrors"
	"langops/pkg/llm/retry"
	"langops/pkg/logx"
	"langops/pkg/persistence"
	"langops/pkg/profile"
)

type stubResolver struct {
	prof *profile.Profile
}

func (s *stubResolver) Resolve(name string) (*profile.Profile, error) {
	if name != s.prof.Name {
		return nil, fmt.Errorf("%w: %q", profile.ErrProfileNotFound, name)
	}
	return s.prof, nil
}

func newTestStore(t *testing.T) *persistence.Store {
	t.Helper()
	db, err := persistence.InitializeDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return persistence.NewStore(db)
}

// newTestService wires a service whose adapter is the given mock, with the
// persist hook attached the way production profiles attach it.
func newTestService(t *testing.T, store *persistence.Store, adapter llm.Adapter) *Service {
	t.Helper()

	prof := &profile.Profile{
		Name:      "dev",
		Provider:  "mock",
		Model:     "mock-model",
		MaxTokens: llm.DefaultMaxTokens,
		Adapter:   adapter,
		AfterHooks: []hooks.Hook{
			hooks.Persist(store, logx.NewLogger("test")),
		},
	}
	orch := client.New(&stubResolver{prof: prof})
	return NewService(orch, store)
}

func positiveEnvelope() llm.Envelope {
	return llm.Envelope{Content: `{"sentiment": "positive", "confidence": 0.95}`}
}

func TestAnalyzeSentencePersistsResult(t *testing.T) {
	store := newTestStore(t)
	mock := llm.NewMockAdapter([]llm.Envelope{positiveEnvelope()}, nil)
	service := newTestService(t, store, mock)
	ctx := context.Background()

	ingest, err := service.IngestDocument(ctx, "review", "I love it.")
	require.NoError(t, err)
	require.Len(t, ingest.Sentences, 1)
	sentence := ingest.Sentences[0]

	result, err := service.AnalyzeSentence(ctx, sentence.ID, Options{Profile: "dev"})
	require.NoError(t, err)
	assert.Equal(t, "positive", result.Sentiment)
	assert.InDelta(t, 0.95, result.Confidence, 1e-9)
	assert.Equal(t, persistence.StatusCreated, result.Status)

	record, err := store.FindByFingerprint(ctx, sentence.ID, persistence.Fingerprint(sentence.Text))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "positive", *record.Sentiment)
	assert.Equal(t, 1, record.Calls)
	assert.Equal(t, result.TraceID, record.TraceID)
}

func TestAnalyzeSentenceCachedSkipsProvider(t *testing.T) {
	store := newTestStore(t)
	mock := llm.NewMockAdapter([]llm.Envelope{positiveEnvelope()}, nil)
	service := newTestService(t, store, mock)
	ctx := context.Background()

	ingest, err := service.IngestDocument(ctx, "review", "I love it.")
	require.NoError(t, err)
	sentence := ingest.Sentences[0]

	_, err = service.AnalyzeSentence(ctx, sentence.ID, Options{Profile: "dev"})
	require.NoError(t, err)

	// The second run is served from storage without another provider call.
	cached, err := service.AnalyzeSentence(ctx, sentence.ID, Options{Profile: "dev"})
	require.NoError(t, err)
	assert.Equal(t, persistence.StatusCached, cached.Status)
	assert.Equal(t, "positive", cached.Sentiment)
	assert.Equal(t, 1, mock.Calls())
}

func TestAnalyzeSentenceOverrideReanalyzes(t *testing.T) {
	store := newTestStore(t)
	mock := llm.NewMockAdapter([]llm.Envelope{
		positiveEnvelope(),
		{Content: `{"sentiment": "neutral", "confidence": 0.6}`},
	}, nil)
	service := newTestService(t, store, mock)
	ctx := context.Background()

	ingest, err := service.IngestDocument(ctx, "review", "I love it.")
	require.NoError(t, err)
	sentence := ingest.Sentences[0]

	_, err = service.AnalyzeSentence(ctx, sentence.ID, Options{Profile: "dev"})
	require.NoError(t, err)

	result, err := service.AnalyzeSentence(ctx, sentence.ID, Options{Profile: "dev", Override: true})
	require.NoError(t, err)
	assert.Equal(t, "neutral", result.Sentiment)
	assert.Equal(t, 2, mock.Calls())

	record, err := store.FindByFingerprint(ctx, sentence.ID, persistence.Fingerprint(sentence.Text))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "neutral", *record.Sentiment)
	assert.Equal(t, 2, record.Calls)
}

func TestAnalyzeSentenceRetriesThenPersistsOnce(t *testing.T) {
	store := newTestStore(t)
	mock := llm.NewMockAdapter(
		[]llm.Envelope{positiveEnvelope()},
		[]error{
			llmerrors.NewError(llmerrors.ErrorTypeRateLimit, "slow down"),
			llmerrors.NewError(llmerrors.ErrorTypeRateLimit, "slow down"),
		},
	)
	policy := retry.NewPolicy(retry.Config{
		MaxAttempts:   3,
		InitialDelay:  1,
		MaxDelay:      10,
		BackoffFactor: 2.0,
	}, nil)
	adapter := llm.Chain(mock, retry.Middleware(policy))
	service := newTestService(t, store, adapter)
	ctx := context.Background()

	ingest, err := service.IngestDocument(ctx, "review", "I love it.")
	require.NoError(t, err)
	sentence := ingest.Sentences[0]

	result, err := service.AnalyzeSentence(ctx, sentence.ID, Options{Profile: "dev"})
	require.NoError(t, err)
	assert.Equal(t, 3, mock.Calls())
	assert.Equal(t, "positive", result.Sentiment)
	assert.InDelta(t, 0.95, result.Confidence, 1e-9)

	record, err := store.FindByFingerprint(ctx, sentence.ID, persistence.Fingerprint(sentence.Text))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 1, record.Calls)
}

func TestAnalyzeTextDoesNotPersist(t *testing.T) {
	store := newTestStore(t)
	mock := llm.NewMockAdapter([]llm.Envelope{positiveEnvelope()}, nil)
	service := newTestService(t, store, mock)

	result, err := service.AnalyzeText(context.Background(), "I love it.", Options{Profile: "dev"})
	require.NoError(t, err)
	assert.Equal(t, "positive", result.Sentiment)

	var count int
	err = store.DB().QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM sentence_sentiments`).Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAnalyzeUnusableOutputIsError(t *testing.T) {
	store := newTestStore(t)
	mock := llm.NewMockAdapter([]llm.Envelope{{Content: "no idea"}}, nil)
	service := newTestService(t, store, mock)

	_, err := service.AnalyzeText(context.Background(), "hmm", Options{Profile: "dev"})
	assert.Error(t, err)
}

func TestAnalyzeDocument(t *testing.T) {
	store := newTestStore(t)
	mock := llm.NewMockAdapter([]llm.Envelope{
		positiveEnvelope(),
		{Content: `{"sentiment": "negative", "confidence": 0.9}`},
	}, nil)
	service := newTestService(t, store, mock)
	ctx := context.Background()

	ingest, err := service.IngestDocument(ctx, "review", "I love it. The packaging was awful.")
	require.NoError(t, err)
	require.Len(t, ingest.Sentences, 2)

	summary, err := service.AnalyzeDocument(ctx, ingest.Document.ID, Options{Profile: "dev"})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Analyzed)
	assert.Zero(t, summary.Cached)
	assert.Zero(t, summary.Failed)

	// Re-running the document hits the store for every sentence.
	summary2, err := service.AnalyzeDocument(ctx, ingest.Document.ID, Options{Profile: "dev"})
	require.NoError(t, err)
	assert.Equal(t, 2, summary2.Cached)
	assert.Equal(t, 2, mock.Calls())
}

func TestIngestDocumentIdempotent(t *testing.T) {
	store := newTestStore(t)
	service := newTestService(t, store, llm.NewMockAdapter(nil, nil))
	ctx := context.Background()

	first, err := service.IngestDocument(ctx, "review", "One. Two.")
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	second, err := service.IngestDocument(ctx, "review again", "One. Two.")
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.Document.ID, second.Document.ID)
}

func TestSentimentSchemaShape(t *testing.T) {
	d := SentimentSchema()

	_, _, err := d.Validate(`{"sentiment": "neutral", "confidence": 0.5}`)
	assert.NoError(t, err)

	_, _, err = d.Validate(`{"sentiment": "angry", "confidence": 0.5}`)
	assert.Error(t, err)
}
