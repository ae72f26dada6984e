// Package registers holds the set of clusters the exporter scrapes.
//
// A Registry is filled once at startup from the inventory, resolves each cluster's display
// name, and is read-only afterwards. Collectors take a snapshot with Endpoints.
package registers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ps-net-stats/pkg/config"
	"github.com/ps-net-stats/pkg/parser"
	"github.com/ps-net-stats/pkg/remote"
)

// UnknownClusterName labels an endpoint whose identity lookup failed.
const UnknownClusterName = "UnableToGetClusterName"

// Endpoint one registered cluster.
type Endpoint struct {
	Target remote.Target
	// ClusterName is the cluster_name label value.
	ClusterName string
	// Index is the registration order, starting at 0.
	Index int
	// static names come from the inventory and are never looked up
	static bool
}

// ConfigError an inventory entry was rejected.
type ConfigError struct {
	Line  int
	Entry string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("cluster entry at line %d %s: %v", e.Line, e.Entry, e.Err)
	}
	return fmt.Sprintf("cluster entry %s: %v", e.Entry, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Registry ordered endpoint list.
type Registry struct {
	mu        sync.RWMutex
	endpoints []Endpoint
	exec      remote.Executor
	logger    *zap.Logger
}

// New creates an empty registry. exec is used by ResolveNames only.
func New(exec remote.Executor, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		endpoints: make([]Endpoint, 0),
		exec:      exec,
		logger:    logger,
	}
}

// Register validates d and appends it. A rejected entry is logged and returned as *ConfigError.
func (r *Registry) Register(d config.ClusterDescriptor) error {
	if err := d.Validate(); err != nil {
		cerr := &ConfigError{Line: d.Line, Entry: d.String(), Err: err}
		r.logger.Error("skipping cluster entry",
			zap.Int("line", d.Line),
			zap.String("entry", d.String()),
			zap.Error(err))
		return cerr
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	ep := Endpoint{
		Target:      remote.Target{Address: d.Endpoint, User: d.User, Port: d.Port},
		ClusterName: d.Name,
		Index:       len(r.endpoints),
		static:      d.Name != "",
	}
	r.endpoints = append(r.endpoints, ep)
	r.logger.Debug("registered endpoint",
		zap.String("endpoint", d.Endpoint),
		zap.String("user", d.User),
		zap.Int("index", ep.Index))
	return nil
}

// RegisterAll registers every descriptor in order and returns how many were accepted.
func (r *Registry) RegisterAll(ds []config.ClusterDescriptor) int {
	accepted := 0
	for _, d := range ds {
		if err := r.Register(d); err == nil {
			accepted++
		}
	}
	return accepted
}

// ResolveNames runs the identity command once per endpoint that has no static name. Each
// lookup is bounded by timeout when it is positive. Failures fall back to UnknownClusterName.
func (r *Registry) ResolveNames(ctx context.Context, timeout time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.endpoints {
		ep := &r.endpoints[i]
		if ep.static {
			r.logger.Info("using configured cluster name",
				zap.String("endpoint", ep.Target.Address), zap.String("cluster_name", ep.ClusterName))
			continue
		}
		ep.ClusterName = r.lookupName(ctx, ep.Target, timeout)
	}
}

func (r *Registry) lookupName(ctx context.Context, t remote.Target, timeout time.Duration) string {
	if r.exec == nil {
		return UnknownClusterName
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := r.exec.Execute(ctx, t, remote.CmdClusterIdentity)
	if err != nil {
		r.logger.Warn("unable to get cluster name",
			zap.String("endpoint", t.Address), zap.Error(err))
		return UnknownClusterName
	}
	name, ok := parser.ParseClusterName(res.Output)
	if !ok {
		r.logger.Warn("cluster identity has no Name line", zap.String("endpoint", t.Address))
		return UnknownClusterName
	}
	r.logger.Info("resolved cluster name",
		zap.String("endpoint", t.Address),
		zap.String("cluster_name", name),
		zap.Duration("duration", res.Duration))
	return name
}

// Endpoints returns a copy of the endpoints in registration order.
func (r *Registry) Endpoints() []Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Endpoint, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}

// Len returns the number of registered endpoints.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.endpoints)
}
