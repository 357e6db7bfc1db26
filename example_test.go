package meridian_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/meridian-tools/meridian"
	"github.com/meridian-tools/meridian/pkg/domain"
	"github.com/meridian-tools/meridian/pkg/transcript"
)

// Example seeds one variable, computes its mean, and shows the
// teaching commands the session recorded.
func Example() {
	con, err := meridian.New(meridian.WithSessionID("example"))
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	times := make([]time.Time, 4)
	for i := range times {
		times[i] = time.Date(2020, time.Month(i+1), 15, 0, 0, 0, 0, time.UTC)
	}
	if err := con.Pool.Add(ctx, domain.Variable{
		ID:     "tas",
		Values: []float64{1, 2, 3, 4},
		Axis:   domain.Axis{Times: times},
	}); err != nil {
		log.Fatal(err)
	}

	res, err := con.Dispatcher.Dispatch(ctx, domain.StatOp(domain.StatMean), domain.Selection{"tas"})
	if err != nil {
		log.Fatal(err)
	}
	out, err := res.Stat.Execute(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("mean = %g\n", out.Scalar())

	entries, err := con.Recorder.Entries(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(transcript.Render(con.SessionID(), entries))

	// Output:
	// mean = 2.5
	// # Teaching Commands (example)
	//
	// ```
	// ## Computing mean
	// statistics.mean(tas)
	// ```
}
