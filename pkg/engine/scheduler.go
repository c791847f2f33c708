package engine

import (
	"context"

	"go.uber.org/zap"

	"pixelcss/pkg/coalesce"
	"pixelcss/pkg/css"
)

// Scheduler renders on behalf of page elements. Requests for one element
// are coalesced so only the newest result is delivered, and Teardown
// discards whatever is still running for it.
type Scheduler struct {
	renderer  Renderer
	coalescer *coalesce.Coalescer[*Result]
}

func NewScheduler(r Renderer, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		renderer:  r,
		coalescer: coalesce.New[*Result](logger.Named("scheduler")),
	}
}

// Schedule queues a render for element. deliver is called at most once,
// and not at all if a newer Schedule or a Teardown for element arrives
// first. decls is copied.
func (s *Scheduler) Schedule(element string, decls css.Declarations, opts Options, deliver func(*Result, error)) error {
	decls = decls.Clone()
	return s.coalescer.Submit(element, func(ctx context.Context) (*Result, error) {
		return s.renderer.Render(ctx, decls, opts)
	}, deliver)
}

// Teardown cancels pending work for element without delivering it.
func (s *Scheduler) Teardown(element string) {
	s.coalescer.Cancel(element)
}

// Busy reports whether element has a render running or queued.
func (s *Scheduler) Busy(element string) bool {
	return s.coalescer.Busy(element)
}

// Close tears down every element and waits for running renders to stop.
func (s *Scheduler) Close() {
	s.coalescer.Close()
}
