package hooks

import (
	"context"
	"time"

	"langops/pkg/logx"
	"langops/pkg/metrics"
	"langops/pkg/utils"
)

// HookTelemetry is the registry name of the telemetry after-hook.
const HookTelemetry = "telemetry"

// Telemetry returns an after-hook that records request metrics. Sink
// failures are logged and swallowed: observability must never fail a
// request that the provider answered.
func Telemetry(recorder metrics.Recorder, logger *logx.Logger) Hook {
	return func(_ context.Context, rc *Context) error {
		defer func() {
			if r := recover(); r != nil {
				logger.Warn("telemetry sink panicked: %v", r)
			}
		}()

		duration := time.Since(rc.Started)

		if rc.RawResponse == nil {
			recorder.ObserveRequest(rc.ProviderName, rc.ModelName, rc.OperationName,
				0, 0, 0, false, "no_response", duration)
			return nil
		}

		usage := rc.RawResponse.Usage
		inputTokens := usage.InputTokens
		outputTokens := usage.OutputTokens

		// Some backends omit usage; approximate with tiktoken so cost
		// accounting stays roughly honest.
		if inputTokens == 0 && outputTokens == 0 {
			for i := range rc.Messages {
				inputTokens += utils.CountTokensSimple(rc.Messages[i].Content)
			}
			outputTokens = utils.CountTokensSimple(rc.RawResponse.Content)
		}

		cost := utils.EstimateCost(rc.RawResponse.ModelName, inputTokens, outputTokens)

		recorder.ObserveRequest(rc.ProviderName, rc.RawResponse.ModelName, rc.OperationName,
			inputTokens, outputTokens, cost, true, "", duration)
		return nil
	}
}
