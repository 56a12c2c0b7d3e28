// Package container is the capability registry: modules register providers
// for typed capability keys, Build validates the whole provisioning graph for
// one platform, and Resolve constructs providers lazily on first use.
package container

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	quirev1alpha1 "github.com/bayleafwalker/quire/api/v1alpha1"
	"github.com/bayleafwalker/quire/internal/resolver"
)

const tracerName = "github.com/bayleafwalker/quire/internal/container"

// Source is anything capabilities can be resolved from: a Container, or the
// restricted Deps view handed to a factory.
type Source interface {
	lookup(ctx context.Context, id quirev1alpha1.CapabilityID, typ reflect.Type) (any, error)
	has(id quirev1alpha1.CapabilityID) bool
}

// Container holds the validated plan and the singletons constructed so far.
type Container struct {
	platform quirev1alpha1.Platform
	plan     resolver.Plan
	regs     map[quirev1alpha1.CapabilityID]*registration
	tracer   trace.Tracer

	mu          sync.Mutex
	slots       map[quirev1alpha1.CapabilityID]*slot
	constructed []quirev1alpha1.CapabilityID
	closed      bool
}

type slot struct {
	mu    sync.Mutex
	done  bool
	value any
}

type buildOptions struct {
	resolver resolver.Resolver
}

type Option func(*buildOptions)

// WithResolver replaces the default resolver.
func WithResolver(r resolver.Resolver) Option {
	return func(o *buildOptions) { o.resolver = r }
}

// Build validates the provisioning graph formed by modules on platform.
//
// No factory runs during Build. It fails if any required capability lacks a
// compatible provider, if a capability has more than one provider, or if the
// declared dependencies form a cycle.
func Build(ctx context.Context, platform quirev1alpha1.Platform, modules []*Module, opts ...Option) (*Container, error) {
	o := buildOptions{resolver: resolver.NewDefault()}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "container.Build",
		trace.WithAttributes(attribute.String("quire.platform", platform.String())))
	defer span.End()

	logger := logr.FromContextOrDiscard(ctx).WithValues("platform", platform.String())
	start := time.Now()

	c, err := build(ctx, platform, modules, o)
	buildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		buildTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "provisioning graph invalid")
		logger.Error(err, "container build failed")
		return nil, err
	}

	buildTotal.WithLabelValues("success").Inc()
	logger.Info("container built",
		"capabilities", len(c.regs),
		"bindings", len(c.plan.Bindings),
		"optionalUnresolved", len(c.plan.Diagnostics.UnresolvedOptional),
	)
	return c, nil
}

func build(ctx context.Context, platform quirev1alpha1.Platform, modules []*Module, o buildOptions) (*Container, error) {
	// 1) Flatten includes.
	flat, err := flatten(modules)
	if err != nil {
		return nil, err
	}

	// 2) Validate the declared graph.
	manifests := make([]quirev1alpha1.ModuleManifest, 0, len(flat))
	for _, m := range flat {
		manifests = append(manifests, m.Manifest())
	}
	plan, err := o.resolver.Resolve(ctx, resolver.Input{Platform: platform, Modules: manifests})
	if err != nil {
		return nil, fmt.Errorf("resolve capabilities for %s: %w", platform, err)
	}
	if err := plan.Err(); err != nil {
		return nil, err
	}

	// 3) Keep the registrations the plan selected.
	regs := make(map[quirev1alpha1.CapabilityID]*registration, len(plan.Providers))
	for _, m := range flat {
		if !m.platform.Matches(platform) {
			continue
		}
		for _, reg := range m.registrations {
			if p, ok := plan.Providers[reg.capability.CapabilityID]; ok && p.Module == m.name {
				regs[reg.capability.CapabilityID] = reg
			}
		}
	}

	return &Container{
		platform: platform,
		plan:     plan,
		regs:     regs,
		tracer:   otel.Tracer(tracerName),
		slots:    make(map[quirev1alpha1.CapabilityID]*slot),
	}, nil
}

func flatten(roots []*Module) ([]*Module, error) {
	seen := make(map[string]*Module)
	visited := make(map[*Module]bool)
	out := make([]*Module, 0)

	var visit func(m *Module) error
	visit = func(m *Module) error {
		if m == nil || visited[m] {
			return nil
		}
		visited[m] = true
		if m.name != "" {
			if prev, ok := seen[m.name]; ok && prev != m {
				return fmt.Errorf("%w: %q", ErrDuplicateModule, m.name)
			}
			seen[m.name] = m
		}
		out = append(out, m)
		for _, included := range m.includes {
			if err := visit(included); err != nil {
				return err
			}
		}
		return nil
	}

	for _, m := range roots {
		if err := visit(m); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Container) Platform() quirev1alpha1.Platform { return c.platform }

// Plan returns the validated provisioning plan.
func (c *Container) Plan() resolver.Plan { return c.plan }

// Constructed lists the singletons built so far, in construction order.
func (c *Container) Constructed() []quirev1alpha1.CapabilityID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.constructed)
}

func (c *Container) has(id quirev1alpha1.CapabilityID) bool {
	_, ok := c.regs[id]
	return ok
}

func (c *Container) lookup(ctx context.Context, id quirev1alpha1.CapabilityID, typ reflect.Type) (any, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}

	reg, ok := c.regs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q on platform %s", ErrMissingRegistration, id, c.platform)
	}
	if reg.typ != typ {
		return nil, &TypeMismatchError{CapabilityID: id, Registered: reg.typ.String(), Requested: typ.String()}
	}
	if path, ok := inProgress(ctx, id); ok {
		return nil, &resolver.CycleError{Path: path}
	}

	resolutionsTotal.WithLabelValues(string(id), string(reg.capability.Scope)).Inc()

	if reg.capability.Scope == quirev1alpha1.ScopeFactory {
		return c.construct(ctx, reg)
	}

	c.mu.Lock()
	s, ok := c.slots[id]
	if !ok {
		s = &slot{}
		c.slots[id] = s
	}
	c.mu.Unlock()

	// Concurrent callers wait here for the one construction in flight.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return s.value, nil
	}
	if c.isClosed() {
		return nil, ErrClosed
	}
	v, err := c.construct(ctx, reg)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		// Close has already run and never saw this value.
		if err := closeValue(ctx, v); err != nil {
			logr.FromContextOrDiscard(ctx).Error(err, "failed to close provider", "capability", id)
		}
		return nil, ErrClosed
	}
	s.value = v
	s.done = true
	c.constructed = append(c.constructed, id)
	c.mu.Unlock()
	singletonsConstructed.Inc()
	return v, nil
}

func (c *Container) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Container) construct(ctx context.Context, reg *registration) (any, error) {
	id := reg.capability.CapabilityID
	ctx, span := c.tracer.Start(ctx, "container.construct", trace.WithAttributes(
		attribute.String("quire.capability", string(id)),
		attribute.String("quire.variant", reg.capability.Variant),
		attribute.String("quire.scope", string(reg.capability.Scope)),
	))
	defer span.End()

	logger := logr.FromContextOrDiscard(ctx).WithValues(
		"capability", id,
		"variant", reg.capability.Variant,
		"module", reg.module,
	)
	logger.V(1).Info("constructing provider")

	ctx = withInProgress(ctx, id)
	v, err := reg.construct(ctx, newDeps(c, reg))
	if err != nil {
		constructionErrorsTotal.WithLabelValues(string(id)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "construction failed")
		return nil, fmt.Errorf("construct %q: %w", id, err)
	}
	return v, nil
}

type contextCloser interface {
	Close(ctx context.Context) error
}

// Close releases constructed singletons in reverse construction order.
// Providers implementing Close(ctx) error or io.Closer are closed; errors are
// aggregated. The container cannot be used afterwards. A singleton still
// under construction is closed once its factory returns, and its caller
// gets ErrClosed.
func (c *Container) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	order := slices.Clone(c.constructed)
	c.mu.Unlock()

	logger := logr.FromContextOrDiscard(ctx)
	errs := make([]error, 0)
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		c.mu.Lock()
		s := c.slots[id]
		c.mu.Unlock()

		err := closeValue(ctx, s.value)
		singletonsConstructed.Dec()
		if err != nil {
			logger.Error(err, "failed to close provider", "capability", id)
			errs = append(errs, fmt.Errorf("close %q: %w", id, err))
		}
	}
	return utilerrors.NewAggregate(errs)
}

func closeValue(ctx context.Context, v any) error {
	switch v := v.(type) {
	case contextCloser:
		return v.Close(ctx)
	case io.Closer:
		return v.Close()
	}
	return nil
}

// Resolve returns the provider for key, constructing it if needed.
func Resolve[T any](ctx context.Context, src Source, key Key[T]) (T, error) {
	var zero T
	v, err := src.lookup(ctx, key.ID(), typeOf[T]())
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, &TypeMismatchError{CapabilityID: key.ID(), Registered: fmt.Sprintf("%T", v), Requested: key.TypeName()}
	}
	return t, nil
}

// ResolveOptional is Resolve for capabilities that may be absent on the
// platform. It reports false without error when nothing is registered.
func ResolveOptional[T any](ctx context.Context, src Source, key Key[T]) (T, bool, error) {
	var zero T
	if !src.has(key.ID()) {
		return zero, false, nil
	}
	v, err := Resolve(ctx, src, key)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// MustResolve panics if key cannot be resolved. Use it only in tests and
// process setup.
func MustResolve[T any](ctx context.Context, src Source, key Key[T]) T {
	v, err := Resolve(ctx, src, key)
	if err != nil {
		panic(err)
	}
	return v
}
