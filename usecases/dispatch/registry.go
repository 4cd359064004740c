package dispatch

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/gammazero/workerpool"

	"chatrouter/core/log"
	"chatrouter/listener"
)

// Registry compiles controller handler tables and hands the descriptors to the Router.
type Registry struct {
	router  *Router
	workers int
}

func NewRegistry(router *Router, workers int) *Registry {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Registry{router: router, workers: workers}
}

// Register compiles every declaration in parallel and registers all of them, or none if any
// declaration is invalid. Registration order is controller order, then declaration order.
func (r *Registry) Register(controllers ...listener.Controller) error {
	log.Info("📋 Starting to register listeners", "controllers", len(controllers))

	var decls []listener.Declaration
	for i, c := range controllers {
		if c == nil {
			return fmt.Errorf("failed to register listeners: controller %d is nil", i)
		}
		decls = append(decls, c.Listeners()...)
	}

	descriptors := make([]*listener.Descriptor, len(decls))
	errs := make([]error, len(decls))

	wp := workerpool.New(r.workers)
	for i, decl := range decls {
		wp.Submit(func() {
			descriptors[i], errs[i] = listener.Compile(decl)
		})
	}
	wp.StopWait()

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to register listeners: %w", err)
	}

	r.router.Add(descriptors...)
	for _, d := range descriptors {
		log.Info("✅ Registered listener", "handler", d.Name(), "category", d.Category().String())
	}

	r.router.Subscribe()
	log.Info("📋 Completed successfully - registered listeners", "count", len(descriptors))
	return nil
}
