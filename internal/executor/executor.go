// Package executor implements the DAG executor's public operation,
// Reason (spec §4.4): walk a compiled RuleSet's topological order
// against a fact environment, apply firing rules' actions into an
// overlay, drain the trigger queue, and assemble the Execution
// Result. Grounded on
// original_source/symbolica/core/engine.py for the topological-pass-
// then-drain-triggers control flow, and on
// rgehrsitz-rex_claude/internal/runtime's "walk a compiled artifact,
// accumulate a trace, respect a deadline" discipline, generalized from
// its single-pass stack machine to the two-phase (topological +
// trigger-drain) schedule the spec requires.
package executor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/symbolica-rules/symbolica/internal/compile"
	"github.com/symbolica-rules/symbolica/internal/config"
	"github.com/symbolica-rules/symbolica/internal/core"
	"github.com/symbolica-rules/symbolica/internal/eval"
	"github.com/symbolica-rules/symbolica/internal/registry"
	"github.com/symbolica-rules/symbolica/internal/symlog"
	"github.com/symbolica-rules/symbolica/internal/temporal"
)

// Executor holds the resources shared across many Reason calls: the
// read-only function registry, the shared mutable temporal store, the
// optional LLM adapter, and the injectable clock spec §6 requires
// tests be able to replace.
type Executor struct {
	Registry *registry.Registry
	Temporal *temporal.Store
	Adapter  registry.LLMAdapter
	Clock    func() time.Time
	Config   config.Config
}

// New constructs an Executor. A nil registry defaults to
// registry.Default(); a nil store defaults to a Store built from
// cfg's temporal retention settings.
func New(reg *registry.Registry, store *temporal.Store, cfg config.Config) *Executor {
	if reg == nil {
		reg = registry.Default()
	}
	if store == nil {
		store = temporal.New(cfg.TemporalMaxAge, cfg.TemporalMaxPoints)
	}
	return &Executor{Registry: reg, Temporal: store, Clock: time.Now, Config: cfg}
}

// CallOptions overrides the Executor's Config defaults for one Reason
// call. Zero values mean "use the Executor's Config".
type CallOptions struct {
	Deadline   time.Duration
	Permissive bool
	TraceLevel core.TraceLevel
}

func (ex *Executor) resolveOptions(opts CallOptions) (time.Duration, bool) {
	deadline := opts.Deadline
	if deadline == 0 {
		deadline = ex.Config.DefaultDeadline
	}
	return deadline, opts.Permissive || ex.Config.Permissive
}

type triggerItem struct {
	ruleID      string
	triggeredBy string
}

// Reason evaluates ruleSet against facts, returning the Execution
// Result. A non-nil error is returned only for a non-demotable
// per-rule runtime failure in the strict (non-permissive) strategy;
// deadline expiry and cancellation instead produce a partial,
// flagged result with a nil error, per spec §7.
func (ex *Executor) Reason(ctx context.Context, ruleSet *compile.RuleSet, facts *core.Facts, opts CallOptions) (*core.ExecutionResult, error) {
	log := symlog.For("executor")
	start := time.Now()
	now := ex.Clock()
	nowSeconds := float64(now.UnixNano()) / float64(time.Second)

	deadline, permissive := ex.resolveOptions(opts)
	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	cc := registry.NewCallContext(ctx, func() float64 { return nowSeconds }, ex.Temporal, ex.Adapter)
	ov := newOverlay(facts)
	fired := make(map[string]bool)
	var queue []triggerItem
	// pending maps a rule id to the first fired rule whose trigger
	// enqueued it, so a triggered rule that the topological pass reaches
	// before the queue is drained is still recorded as triggered.
	pending := make(map[string]string)
	var traces []core.TraceEntry

	runRule := func(r *compile.Rule, reason core.FireReason, triggeredBy string) (bool, error) {
		if fired[r.ID] {
			return false, nil
		}
		ruleStart := time.Now()
		ev := eval.New(ov.lookup, ex.Registry, cc)
		condVal, err := ev.Eval(r.Condition)
		if err != nil {
			if core.IsDemotable(err, permissive) {
				traces = append(traces, core.TraceEntry{
					RuleID:        r.ID,
					ConditionText: r.ConditionText,
					Fired:         false,
					FailureKind:   err.Error(),
					Reason:        reason,
					TriggeredBy:   triggeredBy,
					DurationNS:    time.Since(ruleStart).Nanoseconds(),
				})
				return false, nil
			}
			return false, core.Wrap(err, "rule "+r.ID)
		}
		if !condVal.Truthy() {
			if opts.TraceLevel >= core.TraceBasic {
				traces = append(traces, core.TraceEntry{
					RuleID:        r.ID,
					ConditionText: r.ConditionText,
					Fired:         false,
					Reason:        reason,
					TriggeredBy:   triggeredBy,
					DurationNS:    time.Since(ruleStart).Nanoseconds(),
				})
			}
			return false, nil
		}

		writes := make(map[string]core.Value, len(r.Actions))
		for _, a := range r.Actions {
			actionEval := eval.New(ov.lookup, ex.Registry, cc)
			v, err := actionEval.Eval(a.Template)
			if err != nil {
				if core.IsDemotable(err, permissive) {
					traces = append(traces, core.TraceEntry{
						RuleID:        r.ID,
						ConditionText: r.ConditionText,
						Fired:         false,
						FailureKind:   err.Error(),
						Reason:        reason,
						TriggeredBy:   triggeredBy,
						DurationNS:    time.Since(ruleStart).Nanoseconds(),
					})
					return false, nil
				}
				return false, core.Wrap(err, "rule "+r.ID+" action "+a.Field)
			}
			ov.set(a.Field, v)
			writes[a.Field] = v
		}

		fired[r.ID] = true
		var bindings map[string]core.Value
		if opts.TraceLevel >= core.TraceDetailed {
			bindings = make(map[string]core.Value, len(r.ReadSet))
			for _, name := range r.ReadSet {
				if v, ok := ov.lookup(name); ok {
					bindings[name] = v
				}
			}
		}
		traces = append(traces, core.TraceEntry{
			RuleID:        r.ID,
			ConditionText: r.ConditionText,
			Fired:         true,
			Bindings:      bindings,
			Writes:        writes,
			Reason:        reason,
			TriggeredBy:   triggeredBy,
			DurationNS:    time.Since(ruleStart).Nanoseconds(),
		})
		for _, t := range r.Triggers {
			if !fired[t] {
				queue = append(queue, triggerItem{ruleID: t, triggeredBy: r.ID})
				if _, ok := pending[t]; !ok {
					pending[t] = r.ID
				}
			}
		}
		return true, nil
	}

	truncated, cancelled := false, false

topoPass:
	for _, r := range ruleSet.Rules() {
		if err := ctx.Err(); err != nil {
			truncated, cancelled = classifyCtxErr(err)
			break topoPass
		}
		reason, by := core.FiredTopological, ""
		if parent, ok := pending[r.ID]; ok {
			reason, by = core.FiredByTrigger, parent
		}
		if _, err := runRule(r, reason, by); err != nil {
			log.Error().Err(err).Str("rule", r.ID).Msg("fatal rule evaluation failure")
			return nil, err
		}
	}

	if !truncated && !cancelled {
	drainLoop:
		for len(queue) > 0 {
			item := queue[0]
			queue = queue[1:]
			if err := ctx.Err(); err != nil {
				truncated, cancelled = classifyCtxErr(err)
				break drainLoop
			}
			r, ok := ruleSet.ByID(item.ruleID)
			if !ok {
				continue
			}
			if _, err := runRule(r, core.FiredByTrigger, item.triggeredBy); err != nil {
				log.Error().Err(err).Str("rule", r.ID).Msg("fatal rule evaluation failure")
				return nil, err
			}
		}
	}

	firedIDs := make([]string, 0, len(fired))
	for _, t := range traces {
		if t.Fired {
			firedIDs = append(firedIDs, t.RuleID)
		}
	}

	result := &core.ExecutionResult{
		Verdict:      ov.snapshot(),
		FiredRuleIDs: firedIDs,
		Reasoning:    renderReasoning(traces, opts.TraceLevel),
		Elapsed:      time.Since(start),
		Traces:       traces,
		ContextID:    uuid.New().String(),
		Truncated:    truncated,
		Cancelled:    cancelled,
	}
	return result, nil
}

func classifyCtxErr(err error) (truncated, cancelled bool) {
	if errors.Is(err, context.DeadlineExceeded) {
		return true, false
	}
	return false, true
}
