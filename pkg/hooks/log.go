package hooks

import (
	"context"

	"langops/pkg/logx"
)

// Built-in hook names, resolvable through the Registry.
const (
	HookLogRequest  = "log_request"
	HookLogResponse = "log_response"
)

// LogRequest returns a before-hook that logs the outgoing request. Logging
// failures never abort the pipeline.
func LogRequest(logger *logx.Logger) Hook {
	return func(_ context.Context, rc *Context) error {
		logger.Info("request op=%s provider=%s model=%s trace=%s messages=%d",
			rc.OperationName, rc.ProviderName, rc.ModelName, rc.TraceID, len(rc.Messages))
		if logx.IsDebugEnabled() {
			for i := range rc.Messages {
				logger.Debug("  message[%d] role=%s len=%d", i, rc.Messages[i].Role, len(rc.Messages[i].Content))
			}
		}
		return nil
	}
}

// LogResponse returns an after-hook that logs the response summary, including
// whether validation produced a structured object.
func LogResponse(logger *logx.Logger) Hook {
	return func(_ context.Context, rc *Context) error {
		if rc.RawResponse == nil {
			logger.Warn("response op=%s trace=%s: no response recorded", rc.OperationName, rc.TraceID)
			return nil
		}
		parsed := rc.ParsedObject != nil
		logger.Info("response op=%s model=%s trace=%s stop=%s tokens=%d/%d parsed=%t",
			rc.OperationName, rc.RawResponse.ModelName, rc.TraceID,
			rc.RawResponse.StopReason,
			rc.RawResponse.Usage.InputTokens, rc.RawResponse.Usage.OutputTokens,
			parsed)
		if rc.ValidationErr != nil {
			logger.Warn("response op=%s trace=%s validation: %v", rc.OperationName, rc.TraceID, rc.ValidationErr)
		}
		return nil
	}
}
