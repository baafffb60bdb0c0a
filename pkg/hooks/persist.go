package hooks

import (
	"context"
	"fmt"

	"langops/pkg/logx"
	"langops/pkg/persistence"
)

// HookPersist is the registry name of the persistence after-hook.
const HookPersist = "persist"

// Persist returns an after-hook that stores a validated sentiment result
// keyed by (sentence, content fingerprint). Unlike telemetry, persistence
// errors propagate: a dropped result is a request failure, not a degraded
// observation.
//
// Soft validation failures (no parsed object) are skipped without error;
// there is no result worth storing.
func Persist(store *persistence.Store, logger *logx.Logger) Hook {
	return func(ctx context.Context, rc *Context) error {
		if rc.ParsedObject == nil {
			logger.Debug("persist skipped for trace=%s: no parsed object", rc.TraceID)
			return nil
		}
		if rc.ParentKey == 0 {
			logger.Debug("persist skipped for trace=%s: no parent key", rc.TraceID)
			return nil
		}

		sentiment, ok := rc.ParsedObject["sentiment"].(string)
		if !ok {
			return fmt.Errorf("parsed object has no sentiment field for trace=%s", rc.TraceID)
		}
		confidence, ok := rc.ParsedObject["confidence"].(float64)
		if !ok {
			return fmt.Errorf("parsed object has no confidence field for trace=%s", rc.TraceID)
		}

		fingerprint := rc.ContentFingerprint
		if fingerprint == "" {
			fingerprint = persistence.Fingerprint(rc.AnalyzedText)
		}

		record, status, err := store.UpsertSentiment(ctx,
			rc.ParentKey, fingerprint, sentiment, confidence, rc.TraceID, rc.Override)
		if err != nil {
			return fmt.Errorf("failed to persist result for trace=%s: %w", rc.TraceID, err)
		}

		logger.Info("persisted sentiment record=%d status=%s trace=%s", record.ID, status, rc.TraceID)
		return nil
	}
}
