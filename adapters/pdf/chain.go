package exportpdf

import (
	"context"

	"github.com/goliatone/go-impact-export/export"
)

// ChainEngine tries each engine in order, moving on only when an engine
// reports a degraded error. The last degraded error is returned when none
// can render.
type ChainEngine []Engine

// Render implements Engine.
func (c ChainEngine) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	var lastErr error
	for _, engine := range c {
		if engine == nil {
			continue
		}
		pdf, err := engine.Render(ctx, req)
		if err == nil {
			return pdf, nil
		}
		if !export.IsDegraded(err) {
			return nil, err
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = export.NewError(export.KindDegraded, "no pdf engine configured", nil)
	}
	return nil, lastErr
}
