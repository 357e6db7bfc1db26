// Package dispatch executes catalog actions over the variable pool and
// records every computation in the session transcript.
//
// Dispatch is keyed by domain.OpID. Bounds and season actions run to
// completion; statistic actions return a StatRun that the caller
// completes with choices and executes. An unknown OpID is an error,
// never a silent no-op.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/meridian-tools/meridian/internal/logging"
	"github.com/meridian-tools/meridian/pkg/catalog"
	"github.com/meridian-tools/meridian/pkg/domain"
	"github.com/meridian-tools/meridian/pkg/pool"
	"github.com/meridian-tools/meridian/pkg/ports"
	"github.com/meridian-tools/meridian/pkg/series"
	"github.com/meridian-tools/meridian/pkg/transcript"
)

// Dispatcher resolves operations against the catalog and runs them.
// The pool is owned by the session; the dispatcher borrows it per call.
type Dispatcher struct {
	cat      *catalog.Catalog
	pool     *pool.Pool
	rec      *transcript.Recorder
	prompter ports.Prompter
	logger   *slog.Logger
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithPrompter wires the interactive prompt used by X-Daily bounds.
func WithPrompter(p ports.Prompter) Option {
	return func(d *Dispatcher) {
		d.prompter = p
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// New creates a Dispatcher.
func New(cat *catalog.Catalog, p *pool.Pool, rec *transcript.Recorder, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cat:    cat,
		pool:   p,
		rec:    rec,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Result is the outcome of one dispatch.
type Result struct {
	Op domain.OpID

	// Aborted is set when the X-Daily prompt was cancelled or given a
	// non-positive frequency. Nothing was computed or recorded.
	Aborted bool

	// Derived lists the variable IDs a season action added to the pool.
	Derived []string

	// Stat is the pending configuration of a statistic action.
	Stat *StatRun
}

// Dispatch resolves op and runs it over the selection. Variables are
// processed independently: a failure on one surfaces the error but
// leaves earlier derived variables in the pool.
func (d *Dispatcher) Dispatch(ctx context.Context, op domain.OpID, sel domain.Selection) (Result, error) {
	desc, err := d.cat.Resolve(op)
	if err != nil {
		return Result{}, err
	}
	if len(sel) == 0 {
		return Result{}, domain.ErrEmptySelection
	}

	d.logger.Debug("dispatching", "op", string(op), "selection", len(sel))

	switch desc.Kind {
	case domain.ActionBounds:
		return d.runBounds(ctx, desc, sel)
	case domain.ActionSeason:
		return d.runSeason(ctx, desc, sel)
	case domain.ActionStatistic:
		return Result{Op: desc.Op, Stat: d.newStatRun(desc, sel)}, nil
	default:
		return Result{}, fmt.Errorf("%w: kind %q", domain.ErrUnknownAction, desc.Kind)
	}
}

func (d *Dispatcher) runBounds(ctx context.Context, desc domain.ActionDescriptor, sel domain.Selection) (Result, error) {
	freq := desc.Freq
	if desc.PromptFreq {
		if d.prompter == nil {
			return Result{}, fmt.Errorf("%s requires an interactive prompt", desc.Label)
		}
		value, ok, err := d.prompter.PromptFloat(ctx, desc.Label, "Number of samples per day")
		if err != nil {
			return Result{}, err
		}
		if !ok || value <= 0 {
			// Cancelled or unusable input: abort with zero setter
			// calls and zero transcript entries.
			return Result{Op: desc.Op, Aborted: true}, nil
		}
		freq = value
	}

	if err := d.rec.Comment(ctx, "%s", desc.Label); err != nil {
		return Result{Op: desc.Op}, err
	}
	for _, id := range sel {
		err := d.pool.Update(ctx, id, func(v *domain.Variable) error {
			switch desc.Op {
			case domain.OpBoundsYearly:
				return series.SetBoundsYearly(v)
			case domain.OpBoundsMonthly:
				return series.SetBoundsMonthly(v)
			default:
				return series.SetBoundsDaily(v, freq)
			}
		})
		if err != nil {
			return Result{Op: desc.Op}, fmt.Errorf("failed to set bounds on %s: %w", id, err)
		}
		if err := d.rec.Record(ctx, "%s", boundsCall(desc.Op, id, freq)); err != nil {
			return Result{Op: desc.Op}, err
		}
	}
	return Result{Op: desc.Op}, nil
}

func boundsCall(op domain.OpID, id string, freq float64) string {
	switch op {
	case domain.OpBoundsYearly:
		return fmt.Sprintf("times.setTimeBoundsYearly(%s)", id)
	case domain.OpBoundsMonthly:
		return fmt.Sprintf("times.setTimeBoundsMonthly(%s)", id)
	default:
		return fmt.Sprintf("times.setTimeBoundsDaily(%s,%g)", id, freq)
	}
}

func (d *Dispatcher) runSeason(ctx context.Context, desc domain.ActionDescriptor, sel domain.Selection) (Result, error) {
	res := Result{Op: desc.Op}
	for _, id := range sel {
		v, err := d.pool.Get(ctx, id)
		if err != nil {
			return res, err
		}
		out, err := series.Aggregate(v, desc.Agg, desc.Mode)
		if err != nil {
			return res, fmt.Errorf("failed to compute %s of %s: %w", desc.Label, id, err)
		}
		out.ID = derivedID(id, desc)
		if err := d.pool.Add(ctx, out); err != nil {
			return res, err
		}

		if err := d.rec.Comment(ctx, "%s", seasonHeader(desc)); err != nil {
			return res, err
		}
		call := fmt.Sprintf("%s = %s(%s)", out.ID, series.FuncName(desc.Agg, desc.Mode), id)
		if err := d.rec.Record(ctx, "%s", call); err != nil {
			return res, err
		}
		res.Derived = append(res.Derived, out.ID)
	}
	return res, nil
}

// derivedID names the output of a season action: the input ID plus the
// lowercased, space-free label, plus the lowercased mode when the mode
// is not Extract. "tas" through Climatology's "Annual Means" becomes
// "tas_annualmeansclimatology".
func derivedID(id string, desc domain.ActionDescriptor) string {
	suffix := strings.ToLower(strings.ReplaceAll(desc.Label, " ", ""))
	if desc.Mode != domain.ModeExtract {
		suffix += strings.ToLower(string(desc.Mode))
	}
	return id + "_" + suffix
}

func seasonHeader(desc domain.ActionDescriptor) string {
	label := strings.ToLower(desc.Label)
	switch desc.Mode {
	case domain.ModeExtract:
		return "Computing " + label
	case domain.ModeDepartures:
		return "Computing departures from " + label
	default:
		return "Computing climatological " + label
	}
}
