// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package poll waits for the observable state of an external system to
// converge.
//
// The switch under test learns, ages and flushes MAC addresses on its own
// timers, so a table read right after a configuration change usually still
// shows the old state. Until repeatedly queries the device at a fixed
// interval until a predicate holds or the time budget is spent:
//
//	res := poll.Until(ctx, poll.Opts{
//		Condition: "00:00:00:00:00:01 flushed",
//		Interval:  2 * time.Second,
//		Timeout:   90 * time.Second,
//	}, sw.MACTable, fdb.Absent("00:00:00:00:00:01"))
//	if res.Err != nil {
//		return res.Err
//	}
//
// Queries are read-only. A failing query ends the wait at once; it is never
// retried by the poller.
package poll

import (
	"context"
	"fmt"
	"testing"
	"time"

	log "github.com/golang/glog"
	"github.com/jonboulle/clockwork"
	"github.com/kr/pretty"
)

const (
	// DefaultInterval is the time between two queries when Opts.Interval is unset.
	DefaultInterval = 500 * time.Millisecond
	// DefaultTimeout is the wait budget when Opts.Timeout is unset.
	DefaultTimeout = 120 * time.Second
)

// Opts configures a wait.
type Opts struct {
	// Condition describes what is awaited, e.g. "00:00:00:00:00:01 on port 1".
	// It prefixes every log line and error.
	Condition string
	Interval  time.Duration
	Timeout   time.Duration
	// Clock defaults to the real clock.
	Clock clockwork.Clock
}

func (o Opts) withDefaults() Opts {
	if o.Condition == "" {
		o.Condition = "condition to be true"
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	return o
}

// Status is the terminal state of a wait.
type Status int

const (
	// Met means the predicate held on the last query.
	Met Status = iota
	// QueryFailed means the query returned an error.
	QueryFailed
	// TimedOut means the predicate never held within the budget.
	TimedOut
	// Canceled means the context ended before the predicate held.
	Canceled
)

func (s Status) String() string {
	switch s {
	case Met:
		return "MET"
	case QueryFailed:
		return "QUERY_FAILED"
	case TimedOut:
		return "TIMED_OUT"
	case Canceled:
		return "CANCELED"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result describes how a wait ended.
type Result[T any] struct {
	Status Status
	// Last is the last snapshot returned by a successful query.
	Last     T
	Attempts int
	Elapsed  time.Duration
	// Err is nil when Status is Met, a *QueryError when the query failed,
	// a *TimeoutError on timeout and the context error when canceled.
	Err error
}

// OK reports whether the condition was met.
func (r Result[T]) OK() bool { return r.Status == Met }

// TimeoutError reports a condition that never became true.
type TimeoutError struct {
	Condition string
	Elapsed   time.Duration
	Attempts  int
	// Last is the last observed snapshot, kept for diagnosis.
	Last any
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %v (%d queries) waiting for %s; last observed: %s",
		e.Elapsed.Round(time.Millisecond), e.Attempts, e.Condition, pretty.Sprint(e.Last))
}

// QueryError reports a query that failed while waiting.
type QueryError struct {
	Condition string
	Attempt   int
	Err       error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %d failed while waiting for %s: %v", e.Attempt, e.Condition, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Until queries the external system until pred holds for the returned
// snapshot, the query fails, the timeout elapses or ctx is done.
//
// The first query is issued immediately. The last sleep is shortened so that
// one final query happens at the deadline before the wait is declared
// timed out.
func Until[T any](ctx context.Context, opts Opts, query func(context.Context) (T, error), pred func(T) bool) Result[T] {
	opts = opts.withDefaults()
	clk := opts.Clock
	start := clk.Now()
	deadline := start.Add(opts.Timeout)

	var res Result[T]
	for {
		v, err := query(ctx)
		res.Attempts++
		res.Elapsed = clk.Since(start)
		if err != nil {
			res.Status = QueryFailed
			res.Err = &QueryError{Condition: opts.Condition, Attempt: res.Attempts, Err: err}
			log.Warningf("Waiting for %s: %v", opts.Condition, res.Err)
			return res
		}
		res.Last = v
		if pred(v) {
			res.Status = Met
			log.V(1).Infof("Done waiting for %s after %v (%d queries)", opts.Condition, res.Elapsed, res.Attempts)
			return res
		}

		now := clk.Now()
		if !now.Before(deadline) {
			res.Status = TimedOut
			res.Err = &TimeoutError{
				Condition: opts.Condition,
				Elapsed:   res.Elapsed,
				Attempts:  res.Attempts,
				Last:      v,
			}
			log.Warning(res.Err)
			return res
		}
		wait := opts.Interval
		if left := deadline.Sub(now); left < wait {
			wait = left
		}
		log.V(2).Infof("Waiting for %s: not yet (query %d), next query in %v", opts.Condition, res.Attempts, wait)

		select {
		case <-ctx.Done():
			res.Status = Canceled
			res.Err = fmt.Errorf("waiting for %s: %w", opts.Condition, ctx.Err())
			return res
		case <-clk.After(wait):
		}
	}
}

// WaitFor is the test form of Until. A failing query is fatal to the test;
// a timeout is reported with t.Errorf so the test can keep collecting
// diagnostics. It returns the last observed snapshot.
func WaitFor[T any](t testing.TB, ctx context.Context, opts Opts, query func(context.Context) (T, error), pred func(T) bool) T {
	t.Helper()
	res := Until(ctx, opts, query, pred)
	switch res.Status {
	case Met:
	case TimedOut:
		t.Errorf("%v", res.Err)
	default:
		t.Fatalf("%v", res.Err)
	}
	return res.Last
}

// Equal returns a predicate matching want, for queries returning a single
// field such as a link state.
func Equal[T comparable](want T) func(T) bool {
	return func(got T) bool { return got == want }
}
