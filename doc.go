/*
Package meridian is an interactive analysis console for gridded climate
time series: a fixed catalog of time-axis and statistics actions, a
shared pool of defined variables, and an append-only transcript that
records every computation as a replayable teaching command.

# Concept

Meridian treats an analysis session as dispatch over a catalog. The
catalog enumerates the available actions (time-bounds setters, seasonal
aggregations in three modes, and sixteen statistics); the pool holds
the named variables an action operates over; the dispatcher resolves an
operation ID, runs it over the selection, and appends the equivalent
scripted call to the session transcript. This hexagonal layout keeps
the core decoupled from adapters, so the same console backs the CLI,
the HTTP server, and the MCP agent surface.

# Key Features

  - Enumerated dispatch: every action is a stable operation ID, and an
    unknown ID is an explicit error.
  - Teaching transcript: each computation records a header comment and
    the exact call that reproduces it, renderable as Markdown.
  - Pluggable persistence: the pool and the transcript run in memory by
    default, with Redis and versioned file-repository adapters.
  - Deferred statistics: a statistic resolves to a configuration the
    front end completes with named choices before execution.

# Usage

	package main

	import (
		"context"
		"log"
		"time"

		"github.com/meridian-tools/meridian"
		"github.com/meridian-tools/meridian/pkg/domain"
	)

	func main() {
		con, err := meridian.New(meridian.WithSessionID("demo"))
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		v := domain.Variable{
			ID:     "tas",
			Values: []float64{1, 2, 3},
			Axis: domain.Axis{Times: []time.Time{
				time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC),
				time.Date(2020, 2, 15, 0, 0, 0, 0, time.UTC),
				time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC),
			}},
		}
		if err := con.Pool.Add(ctx, v); err != nil {
			log.Fatal(err)
		}

		res, err := con.Dispatcher.Dispatch(ctx, domain.OpBoundsMonthly, domain.Selection{"tas"})
		if err != nil {
			log.Fatal(err)
		}
		log.Println("dispatched:", res.Op)
	}
*/
package meridian
