package utils

import (
	"context"
	"sync"

	goutils "go.viam.com/utils"
)

// StoppableWorkers is a group of goroutines sharing one context. Stopping the group cancels the
// context and waits for every goroutine to return.
type StoppableWorkers interface {
	AddWorkers(...func(context.Context))
	Stop()
	Context() context.Context
}

// workerGroup is only handed out behind the interface so its WaitGroup is never copied.
type workerGroup struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStoppableWorkers runs the functions in separate goroutines. They can be stopped later.
func NewStoppableWorkers(funcs ...func(context.Context)) StoppableWorkers {
	return NewStoppableWorkersWithContext(context.Background(), funcs...)
}

// NewStoppableWorkersWithContext is NewStoppableWorkers with a parent context. Cancelling the
// parent stops the workers just like Stop does, but Stop must still be called to wait for them.
func NewStoppableWorkersWithContext(ctx context.Context, funcs ...func(context.Context)) StoppableWorkers {
	g := &workerGroup{}
	g.ctx, g.cancel = context.WithCancel(ctx)
	g.AddWorkers(funcs...)
	return g
}

// AddWorkers starts one goroutine per function. Once the group is stopped it starts nothing.
// Workers may add more workers, even while Stop is waiting.
func (g *workerGroup) AddWorkers(funcs ...func(context.Context)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ctx.Err() != nil {
		return
	}
	g.wg.Add(len(funcs))
	for _, f := range funcs {
		goutils.PanicCapturingGo(func() {
			defer g.wg.Done()
			f(g.ctx)
		})
	}
}

// Stop cancels the shared context and waits for every worker to return.
func (g *workerGroup) Stop() {
	g.mu.Lock()
	g.cancel()
	g.mu.Unlock()
	g.wg.Wait()
}

// Context returns the context the workers run with.
func (g *workerGroup) Context() context.Context {
	return g.ctx
}
