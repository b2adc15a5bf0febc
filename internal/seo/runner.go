package seo

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Bahjat/seo-insight/internal/model"
)

// Outcome is the result of running one check: either findings or the reason
// the check could not complete.
type Outcome struct {
	Category string
	Findings []model.Finding
	Err      error
}

// Failed reports whether the check did not complete.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Run evaluates every check in the catalog concurrently and returns one
// outcome per check in catalog order. A check that errors or panics yields a
// failed outcome; it never stops the other checks.
func (c Catalog) Run(ctx context.Context, in *Input) []Outcome {
	outcomes := make([]Outcome, len(c))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, check := range c {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = Outcome{Category: check.Category, Err: err}
				return nil
			}
			outcomes[i] = runIsolated(check, in)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func runIsolated(check Check, in *Input) (out Outcome) {
	out.Category = check.Category
	defer func() {
		if r := recover(); r != nil {
			out.Findings = nil
			out.Err = fmt.Errorf("check panicked: %v", r)
		}
	}()

	findings, err := check.Run(in)
	if err != nil {
		return Outcome{Category: check.Category, Err: err}
	}
	out.Findings = findings
	return out
}

// Collect turns outcomes into raw findings. A failed check contributes an empty
// list for its category and is logged; a check that did not apply contributes
// nothing.
func Collect(outcomes []Outcome, logger *slog.Logger) model.Findings {
	raw := make(model.Findings, len(outcomes))
	for _, o := range outcomes {
		if o.Failed() {
			logger.Error("check failed", "category", o.Category, "error", o.Err)
			raw[o.Category] = []model.Finding{}
			continue
		}
		if len(o.Findings) == 0 {
			continue
		}
		raw[o.Category] = o.Findings
	}
	return raw
}
