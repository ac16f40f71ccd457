package container

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tempestsim/tempest/internal/core/observability/log"
)

// Host is a multi-tenant registry of containers. Each container ticks
// independently; the host only tracks lifecycle.
type Host struct {
	mu         sync.RWMutex
	log        log.Log
	containers map[string]*Container
}

func NewHost(logger log.Log) *Host {
	return &Host{
		log:        logger,
		containers: map[string]*Container{},
	}
}

// Create builds and registers a new container. The container is created, not
// started.
func (h *Host) Create(cfg Config) (*Container, error) {
	c, err := New(cfg, h.log)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.containers[c.ID()] = c
	h.mu.Unlock()
	h.log.Info("container created",
		log.String("name", cfg.Name),
		log.String("id", c.ID()),
	)
	return c, nil
}

func (h *Host) Get(id string) (*Container, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.containers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContainerNotFound, id)
	}
	return c, nil
}

// List returns all registered containers ordered by name.
func (h *Host) List() []*Container {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Container, 0, len(h.containers))
	for _, c := range h.containers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Remove stops and unregisters a container.
func (h *Host) Remove(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.containers[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrContainerNotFound, id)
	}
	c.Stop()
	delete(h.containers, id)
	return nil
}

// StopAll stops every registered container.
func (h *Host) StopAll() {
	for _, c := range h.List() {
		c.Stop()
	}
}

// Run starts every registered container and drives their tick loops until
// the context is canceled. It returns once all loops have exited.
func (h *Host) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range h.List() {
		c := c
		if err := c.Start(); err != nil {
			return err
		}
		g.Go(func() error { return c.AutoAdvance(ctx) })
	}
	err := g.Wait()
	h.StopAll()
	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}
