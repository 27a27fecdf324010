package main

import (
	"context"
	"time"

	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"

	"sumbench/internal/manager"
)

// loadWithProgress runs RequestLoad while rendering a terminal progress
// bar fed by the manager's pollable progress value.
func loadWithProgress(ctx context.Context, mgr *manager.Manager, modelID string) (*manager.Handle, error) {
	// Already resident: skip the bar, the load path is a no-op.
	if h, ok := mgr.HandleFor(modelID); ok {
		return h, nil
	}

	const scale = 1000
	p := mpb.New(mpb.WithWidth(60), mpb.WithRefreshRate(120*time.Millisecond))
	bar := p.AddBar(scale,
		mpb.PrependDecorators(
			decor.Name(modelID, decor.WC{W: len(modelID) + 1, C: decor.DidentRight}),
		),
		mpb.AppendDecorators(decor.Percentage()),
	)

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				bar.SetCurrent(scale)
				return
			case <-ticker.C:
				bar.SetCurrent(int64(mgr.Progress(modelID) * scale))
			}
		}
	}()

	h, err := mgr.RequestLoad(ctx, modelID)
	close(done)
	if err != nil {
		bar.Abort(true)
	}
	p.Wait()
	return h, err
}
