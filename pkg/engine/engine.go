package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"mercator-hq/underwriter/pkg/document"
	"mercator-hq/underwriter/pkg/fields"
	"mercator-hq/underwriter/pkg/rules"
)

// Observer receives evaluation measurements. The metrics collector
// implements it.
type Observer interface {
	// ObserveRule is called once per rule with its final status.
	ObserveRule(validator, status string, duration time.Duration)

	// ObserveEvaluation is called once per Evaluate call.
	ObserveEvaluation(rules int, duration time.Duration)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver sets the measurement observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithTracer sets the tracer used for evaluation and rule spans.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithConfig sets the engine configuration.
func WithConfig(cfg *Config) Option {
	return func(e *Engine) {
		if cfg != nil {
			e.config = cfg
		}
	}
}

// Engine evaluates rule lists against loan contexts.
//
// An Engine holds only read-only collaborators and is safe for concurrent
// use. Each Evaluate call builds its own result slice.
type Engine struct {
	resolver    *fields.Resolver
	registry    *Registry
	interpreter *Interpreter
	config      *Config
	logger      *slog.Logger
	observer    Observer
	tracer      trace.Tracer
}

// New creates an engine that resolves fields with resolver and dispatches
// to validators in registry.
func New(resolver *fields.Resolver, registry *Registry, opts ...Option) (*Engine, error) {
	if resolver == nil {
		return nil, fmt.Errorf("resolver cannot be nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("validator registry cannot be nil")
	}

	e := &Engine{
		resolver:    resolver,
		registry:    registry,
		interpreter: NewInterpreter(resolver),
		config:      DefaultConfig(),
		logger:      slog.Default(),
		tracer:      noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e.logger = e.logger.With("component", "engine")
	return e, nil
}

// Resolver returns the field resolver used by the engine.
func (e *Engine) Resolver() *fields.Resolver {
	return e.resolver
}

// Registry returns the validator registry used by the engine.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// outcome is the per-rule evaluation product: a result or a captured
// failure, never both.
type outcome struct {
	result Result
	err    error
}

func (o outcome) fold(ruleID string) Result {
	if o.err == nil {
		o.result.RuleID = ruleID
		o.result.Details = orEmpty(o.result.Details)
		return o.result
	}
	return Result{
		RuleID:  ruleID,
		Status:  StatusError,
		Message: message(o.err),
		Details: map[string]interface{}{},
	}
}

// Evaluate runs every rule against c and returns one result per rule in
// rule order. Per-rule failures become ERROR results; Evaluate itself never
// fails. ctx carries tracing only and does not cut evaluation short.
func (e *Engine) Evaluate(ctx context.Context, list []*rules.Rule, c document.Context) []Result {
	start := time.Now()

	ctx, span := e.tracer.Start(ctx, "engine.Evaluate",
		trace.WithAttributes(attribute.Int("rules.count", len(list))))
	defer span.End()

	results := make([]Result, 0, len(list))
	for _, rule := range list {
		results = append(results, e.evaluateRule(ctx, rule, c))
	}

	duration := time.Since(start)
	if e.observer != nil {
		e.observer.ObserveEvaluation(len(list), duration)
	}

	counts := CountByStatus(results)
	span.SetAttributes(
		attribute.Int("results.alert", counts[StatusAlert]),
		attribute.Int("results.error", counts[StatusError]),
	)

	return results
}

func (e *Engine) evaluateRule(ctx context.Context, rule *rules.Rule, c document.Context) Result {
	if rule == nil {
		e.logger.Warn("nil rule in rule list")
		return outcome{err: ErrNilRule}.fold("")
	}

	_, span := e.tracer.Start(ctx, "engine.rule", trace.WithAttributes(
		attribute.String("rule.id", rule.ID),
		attribute.String("rule.validator", rule.Validator),
	))
	defer span.End()

	start := time.Now()
	result := e.run(rule, c).fold(rule.ID)
	duration := time.Since(start)

	span.SetAttributes(attribute.String("rule.status", string(result.Status)))
	if result.Status == StatusError {
		span.SetStatus(codes.Error, result.Message)
		e.logger.Warn("rule evaluation failed",
			"rule_id", rule.ID,
			"validator", rule.Validator,
			"error", result.Message,
		)
	} else if e.config.LogRules {
		e.logger.Debug("rule evaluated",
			"rule_id", rule.ID,
			"status", result.Status,
			"duration", duration,
		)
	}

	if e.config.SlowRuleThreshold > 0 && duration > e.config.SlowRuleThreshold {
		e.logger.Warn("slow rule evaluation",
			"rule_id", rule.ID,
			"validator", rule.Validator,
			"duration", duration,
		)
	}

	if e.observer != nil {
		e.observer.ObserveRule(rule.Validator, string(result.Status), duration)
	}

	return result
}

// run performs trigger check, dispatch and validator invocation for one rule.
func (e *Engine) run(rule *rules.Rule, c document.Context) (out outcome) {
	if !e.interpreter.IsTriggered(rule, c) {
		return outcome{result: NotApplicable(rule)}
	}

	v, err := e.registry.Lookup(rule.Validator)
	if err != nil {
		return outcome{err: err}
	}

	if e.config.RecoverPanics {
		defer func() {
			if r := recover(); r != nil {
				out = outcome{err: &ValidatorError{
					RuleID:    rule.ID,
					Validator: rule.Validator,
					Cause:     fmt.Errorf("panic: %v", r),
				}}
			}
		}()
	}

	result, err := v.Evaluate(rule, c, e.resolver)
	if err != nil {
		return outcome{err: &ValidatorError{RuleID: rule.ID, Validator: rule.Validator, Cause: err}}
	}
	if !result.Status.Valid() {
		return outcome{err: &ValidatorError{
			RuleID:    rule.ID,
			Validator: rule.Validator,
			Cause:     fmt.Errorf("invalid status %q", result.Status),
		}}
	}
	return outcome{result: result}
}
