package analysis

import (
	"langops/pkg/hooks"
	"langops/pkg/logx"
	"langops/pkg/metrics"
	"langops/pkg/persistence"
)

// RegisterDefaultHooks wires the built-in hook implementations into a
// registry under their standard names, so profiles can reference them.
func RegisterDefaultHooks(registry *hooks.Registry, store *persistence.Store, recorder metrics.Recorder) error {
	logger := logx.NewLogger("hooks")

	if err := registry.Register(hooks.HookLogRequest, hooks.LogRequest(logger)); err != nil {
		return err
	}
	if err := registry.Register(hooks.HookLogResponse, hooks.LogResponse(logger)); err != nil {
		return err
	}
	if recorder != nil {
		if err := registry.Register(hooks.HookTelemetry, hooks.Telemetry(recorder, logger)); err != nil {
			return err
		}
	}
	if store != nil {
		if err := registry.Register(hooks.HookPersist, hooks.Persist(store, logger)); err != nil {
			return err
		}
	}
	return nil
}
