// Package container composes a registry, a resolver, an aspect registry and
// a weaver into a single value with an explicit lifecycle:
//
//	c, err := container.New(cfg)
//	c.Register(di.Component{Module: "api", New: newUserApi})
//	c.RegisterAspect(aop.Aspect{...})
//	c.Weave()
//	api, _, _ := di.ResolveAs[*UserApi](c.Resolver(), di.Expr("api.userApi"))
//	users, err := aop.Call[[]string](ctx, c.Weaver(), api, "GetUsers")
//
// Built-in observability aspects are registered from the configuration.
package container

import (
	"context"
	"reflect"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sghaida/iocaop/aop"
	"github.com/sghaida/iocaop/aspects"
	"github.com/sghaida/iocaop/config"
	"github.com/sghaida/iocaop/di"
	"github.com/sghaida/iocaop/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Names and order of the built-in aspects.
const (
	AspectMetrics = "metrics"
	AspectTracing = "tracing"
	AspectLogging = "logging"

	LoggingOrder = -998
)

type options struct {
	log        *zap.Logger
	meta       aop.MetadataSource
	registerer prometheus.Registerer
	tracer     trace.TracerProvider
}

// Option configures a Container.
type Option func(*options)

// WithLogger replaces the logger built from the configuration.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithMetadata sets the metadata source consulted by the weaver.
func WithMetadata(src aop.MetadataSource) Option {
	return func(o *options) { o.meta = src }
}

// WithRegisterer sets where the metrics aspect registers its collectors.
// Defaults to prometheus.DefaultRegisterer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithTracerProvider sets the provider of the tracing aspect.
// Defaults to the global otel provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracer = tp }
}

type Container struct {
	cfg config.Config
	log *zap.Logger

	registry *di.Registry
	resolver *di.Resolver
	aspects  *aop.AspectRegistry
	weaver   *aop.Weaver
}

// New validates cfg and builds an empty container.
func New(cfg config.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		log, err := logging.New(cfg)
		if err != nil {
			return nil, err
		}
		o.log = log
	}

	var compile []aop.CompileOption
	if cfg.Pointcut.LegacyThreeSegment {
		compile = append(compile, aop.LegacyThreeSegment())
	}

	c := &Container{cfg: cfg, log: o.log}
	c.registry = di.NewRegistry(di.WithLogger(o.log.Named("registry")), di.WithClearAllowed(cfg.AllowsClear()))
	c.resolver = di.NewResolver(c.registry, di.WithLogger(o.log.Named("resolver")))
	c.aspects = aop.NewAspectRegistry(aop.WithCompileOptions(compile...), aop.WithAspectLogger(o.log.Named("aspects")))

	weaverOpts := []aop.WeaverOption{aop.WithWeaverLogger(o.log.Named("weaver"))}
	if o.meta != nil {
		weaverOpts = append(weaverOpts, aop.WithMetadata(o.meta))
	}
	c.weaver = aop.NewWeaver(c.registry, c.aspects, weaverOpts...)

	if err := c.registerBuiltins(o); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) registerBuiltins(o options) error {
	if c.cfg.Metrics.Enabled {
		reg := o.registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		m, err := aspects.NewMetrics(reg, c.cfg.Metrics.Namespace)
		if err != nil {
			return err
		}
		if err := c.aspects.RegisterAspect(aop.Aspect{
			Name:   AspectMetrics,
			Order:  c.cfg.Metrics.Order,
			Advice: []aop.Advice{m.Advice(c.cfg.Metrics.Pointcut)},
		}); err != nil {
			return err
		}
	}

	if c.cfg.Tracing.Enabled {
		tp := o.tracer
		if tp == nil {
			tp = otel.GetTracerProvider()
		}
		if err := c.aspects.RegisterAspect(aop.Aspect{
			Name:   AspectTracing,
			Order:  c.cfg.Tracing.Order,
			Advice: []aop.Advice{aspects.Tracing(tp.Tracer(c.cfg.Tracing.TracerName), c.cfg.Tracing.Pointcut)},
		}); err != nil {
			return err
		}
	}

	if c.cfg.Logging.Invocations {
		if err := c.aspects.RegisterAspect(aop.Aspect{
			Name:   AspectLogging,
			Order:  LoggingOrder,
			Advice: []aop.Advice{aspects.Logging(c.log.Named("invocations"), "*")},
		}); err != nil {
			return err
		}
	}
	return nil
}

// Register adds a component. It fails once the container is woven.
func (c *Container) Register(comp di.Component) (*di.Record, error) {
	return c.registry.Register(comp)
}

// Resolve resolves a dependency; see di.Resolver.Resolve.
func (c *Container) Resolve(declared reflect.Type, req *di.Request) (any, bool, error) {
	return c.resolver.Resolve(declared, req)
}

// ResolveInto resolves into the variable ptr points to.
func (c *Container) ResolveInto(ptr any, req *di.Request) (bool, error) {
	return c.resolver.ResolveInto(ptr, req)
}

// RegisterAspect adds an aspect. Aspects registered after Weave would never
// apply, so that returns aop.ErrAlreadyWoven.
func (c *Container) RegisterAspect(a aop.Aspect) error {
	if c.weaver.Woven() {
		return aop.ErrAlreadyWoven
	}
	return c.aspects.RegisterAspect(a)
}

// Weave builds every chain and seals the registry.
func (c *Container) Weave() error { return c.weaver.Weave() }

// Invoke calls method on receiver through its chain.
func (c *Container) Invoke(ctx context.Context, receiver any, method string, args ...any) (any, error) {
	return c.weaver.Invoke(ctx, receiver, method, args...)
}

// Method returns the call-site wrapper of method on receiver.
func (c *Container) Method(receiver any, method string) aop.BoundMethod {
	return c.weaver.Method(receiver, method)
}

// Clear drops every component and chain so the container can be populated
// again. Aspects are kept. It fails with di.ErrClearNotAllowed in production.
func (c *Container) Clear() error {
	if err := c.registry.Clear(); err != nil {
		return err
	}
	c.weaver.Reset()
	c.log.Debug("container cleared")
	return nil
}

func (c *Container) Config() config.Config { return c.cfg }
func (c *Container) Logger() *zap.Logger { return c.log }
func (c *Container) Registry() *di.Registry { return c.registry }
func (c *Container) Resolver() *di.Resolver { return c.resolver }
func (c *Container) Aspects() *aop.AspectRegistry { return c.aspects }
func (c *Container) Weaver() *aop.Weaver { return c.weaver }
