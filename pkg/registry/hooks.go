package registry

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formfields/pkg/fields"
)

// InitHook registers entities once the registry is initialised.
type InitHook func(r *Registry) error

// OnInit queues hook until Init runs. Hooks added after Init run
// immediately.
func (r *Registry) OnInit(hook InitHook) error {
	if hook == nil {
		return nil
	}
	r.mu.Lock()
	if !r.initialized {
		r.hooks = append(r.hooks, hook)
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()
	return hook(r)
}

// Init runs queued hooks in registration order. It stops at the first hook
// error or when ctx is done; hooks that did not run stay queued.
func (r *Registry) Init(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.mu.Lock()
		if len(r.hooks) == 0 {
			r.initialized = true
			r.mu.Unlock()
			r.logger.Debug("registry initialised", zap.Int("entities", r.Len()))
			return nil
		}
		hook := r.hooks[0]
		r.hooks = r.hooks[1:]
		r.mu.Unlock()

		if err := hook(r); err != nil {
			return fmt.Errorf("registry: init hook: %w", err)
		}
	}
}

// Initialized reports whether Init completed.
func (r *Registry) Initialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized
}

// DeferField registers a field when the registry initialises.
func (r *Registry) DeferField(scope fields.Scope, id string, args map[string]any) error {
	return r.OnInit(func(r *Registry) error {
		_, err := r.AddField(scope, id, args)
		return err
	})
}

// DeferControl registers a control when the registry initialises.
func (r *Registry) DeferControl(scope fields.Scope, id string, args map[string]any) error {
	return r.OnInit(func(r *Registry) error {
		_, err := r.AddControl(scope, id, args)
		return err
	})
}
