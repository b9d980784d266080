package notification

import "sync"

// Registry hands out one Controller per signed-in identity: constructed and
// loaded on first use (session start), torn down via Release on session end.
// This replaces the original's process-wide singleton store.
type Registry struct {
	mu          sync.Mutex
	controllers map[string]*Controller
	factory     func() *Controller
}

func NewRegistry(factory func() *Controller) *Registry {
	return &Registry{
		controllers: make(map[string]*Controller),
		factory:     factory,
	}
}

// ForUser returns the identity's controller, creating and subscribing it on
// first use.
func (r *Registry) ForUser(uid string) *Controller {
	r.mu.Lock()
	c, ok := r.controllers[uid]
	if !ok {
		c = r.factory()
		r.controllers[uid] = c
	}
	r.mu.Unlock()

	if !ok {
		c.LoadNotifications(uid)
	}
	return c
}

// Release unsubscribes and drops the identity's controller. Safe to call
// when none exists.
func (r *Registry) Release(uid string) {
	r.mu.Lock()
	c, ok := r.controllers[uid]
	delete(r.controllers, uid)
	r.mu.Unlock()

	if ok {
		c.Unsubscribe()
	}
}
