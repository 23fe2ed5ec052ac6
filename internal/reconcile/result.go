package reconcile

import (
	"fmt"
	"time"

	convergeerrors "github.com/alexisbeaulieu97/converge/pkg/errors"
)

// Status describes what happened to one unit of work.
type Status string

const (
	// StatusChanged marks a unit whose state was converged by this run.
	StatusChanged Status = "changed"
	// StatusUnchanged marks a unit that already had the desired state.
	StatusUnchanged Status = "unchanged"
	// StatusWouldChange marks the dry-run unit that stopped the run.
	StatusWouldChange Status = "would_change"
	// StatusFailed marks the unit that aborted the run.
	StatusFailed Status = "failed"
)

// UnitResult records the outcome of one unit of work: a package, an
// environment operation, a self-update or an upgrade of everything.
type UnitResult struct {
	Target   string        `json:"target"`
	Status   Status        `json:"status"`
	Message  string        `json:"msg"`
	Duration time.Duration `json:"duration"`
}

// Result is the verdict of one reconciliation pass. It is read-only once
// Engine.Run returns it.
type Result struct {
	Failed         bool         `json:"failed"`
	Changed        bool         `json:"changed"`
	ChangedCount   int          `json:"changed_count"`
	UnchangedCount int          `json:"unchanged_count"`
	Message        string       `json:"msg"`
	Units          []UnitResult `json:"units,omitempty"`
	// Err is the fatal error behind Failed.
	Err error `json:"-"`
}

// aggregator accumulates unit outcomes for a single run.
type aggregator struct {
	res       Result
	mark      time.Time
	finalized bool
}

func newAggregator() *aggregator {
	return &aggregator{mark: time.Now()}
}

func (a *aggregator) record(target string, status Status, msg string) {
	now := time.Now()
	a.res.Units = append(a.res.Units, UnitResult{
		Target:   target,
		Status:   status,
		Message:  msg,
		Duration: now.Sub(a.mark),
	})
	a.mark = now
	a.res.Message = msg
}

func (a *aggregator) changed(target, msg string) {
	a.res.Changed = true
	a.res.ChangedCount++
	a.record(target, StatusChanged, msg)
}

func (a *aggregator) unchanged(target, msg string) {
	a.res.UnchangedCount++
	a.record(target, StatusUnchanged, msg)
}

// wouldChange marks the run changed without counting a unit; nothing was executed.
func (a *aggregator) wouldChange(target, msg string) {
	a.res.Changed = true
	a.record(target, StatusWouldChange, msg)
}

func (a *aggregator) fail(target string, err error) {
	a.res.Failed = true
	a.res.Err = err
	a.record(target, StatusFailed, convergeerrors.Message(err))
}

// finalize folds the counts into the summary message and returns the result.
// Calling it again returns the same result.
func (a *aggregator) finalize() Result {
	if a.finalized {
		return a.res
	}
	a.finalized = true

	if !a.res.Failed && a.res.ChangedCount+a.res.UnchangedCount > 1 {
		a.res.Message = fmt.Sprintf("Changed: %d, Unchanged: %d", a.res.ChangedCount, a.res.UnchangedCount)
	}
	return a.res
}
