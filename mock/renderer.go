package mock

import (
	"context"
	"sync"

	"github.com/fwojciec/mailscan"
)

var _ mailscan.Renderer = (*Renderer)(nil)

// Renderer is a mock implementation of mailscan.Renderer.
// When RenderFn is nil, Render records each view; Views returns them.
type Renderer struct {
	RenderFn func(ctx context.Context, v mailscan.View) error

	mu    sync.Mutex
	views []mailscan.View
}

func (r *Renderer) Render(ctx context.Context, v mailscan.View) error {
	if r.RenderFn != nil {
		return r.RenderFn(ctx, v)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
	return nil
}

// Views returns the recorded views in render order.
func (r *Renderer) Views() []mailscan.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mailscan.View(nil), r.views...)
}

// Last returns the most recently recorded view.
func (r *Renderer) Last() mailscan.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.views) == 0 {
		return mailscan.View{}
	}
	return r.views[len(r.views)-1]
}
