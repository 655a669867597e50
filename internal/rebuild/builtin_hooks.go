package rebuild

// DefaultHookRegistry returns a registry with the stock hooks installed.
func DefaultHookRegistry() *HookRegistry {
	r := NewHookRegistry()
	r.Register("analyze", func(env Env) Hook {
		return &analyzeHook{env: env}
	})
	return r
}

// analyzeHook refreshes planner statistics once a rebuild has changed the
// schema. Postgres only; other platforms make it a no-op.
type analyzeHook struct {
	env Env
}

func (h *analyzeHook) Name() string {
	return "analyze"
}

func (h *analyzeHook) AfterRebuild() error {
	if h.env.Conn == nil || h.env.Conn.Dialect.Name() != "postgres" {
		return nil
	}
	h.env.Logger.Debug("Running ANALYZE")
	_, err := h.env.Conn.DB.Exec("ANALYZE")
	return err
}
