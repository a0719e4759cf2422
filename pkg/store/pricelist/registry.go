package pricelist

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/pricelist-atlas/pkg/config"
)

const (
	BackendFS = "fs"
	BackendS3 = "s3"
)

// Factory builds a Store from the store section of the configuration.
type Factory func(ctx context.Context, cfg config.Store) (Store, error)

// Registry manages store backend factories
type Registry interface {
	// Register adds a new backend factory
	Register(backend string, factory Factory) error
	// Create instantiates the backend named by cfg.Backend
	Create(ctx context.Context, cfg config.Store) (Store, error)
	// ListBackends returns the registered backend names
	ListBackends() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() Registry {
	return &registry{
		factories: make(map[string]Factory),
	}
}

// DefaultRegistry knows the fs and s3 backends.
func DefaultRegistry() Registry {
	r := NewRegistry()
	_ = r.Register(BackendFS, FSFactory)
	_ = r.Register(BackendS3, S3Factory)
	return r
}

func (r *registry) Register(backend string, factory Factory) error {
	if backend == "" {
		return fmt.Errorf("backend name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[backend]; exists {
		return fmt.Errorf("backend %q is already registered", backend)
	}

	r.factories[backend] = factory
	return nil
}

func (r *registry) Create(ctx context.Context, cfg config.Store) (Store, error) {
	r.mu.RLock()
	factory, exists := r.factories[cfg.Backend]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("store backend %q is not registered", cfg.Backend)
	}

	return factory(ctx, cfg)
}

func (r *registry) ListBackends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	backends := make([]string, 0, len(r.factories))
	for backend := range r.factories {
		backends = append(backends, backend)
	}
	sort.Strings(backends)
	return backends
}

func FSFactory(_ context.Context, cfg config.Store) (Store, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("fs store requires a root directory")
	}
	return NewFSStore(cfg.Root), nil
}

func S3Factory(ctx context.Context, cfg config.Store) (Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 store requires a bucket")
	}

	awsCfg, err := config.LoadAWSConfig(ctx, cfg.Profile, cfg.Region)
	if err != nil {
		return nil, err
	}

	return NewS3Store(s3.NewFromConfig(*awsCfg), cfg.Bucket, cfg.Prefix), nil
}
