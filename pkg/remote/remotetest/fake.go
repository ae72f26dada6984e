// Package remotetest provides an in-memory remote.Executor for tests.
package remotetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ps-net-stats/pkg/remote"
)

// Call one recorded Execute invocation.
type Call struct {
	Target  remote.Target
	Command string
}

type response struct {
	output string
	err    error
	delay  time.Duration
}

// Fake answers Execute from canned responses keyed by address and command.
// Unknown keys fail with exit status 255, like ssh does for an unreachable host.
type Fake struct {
	mu        sync.Mutex
	responses map[string]response
	calls     []Call
}

func NewFake() *Fake {
	return &Fake{responses: map[string]response{}}
}

func key(address, command string) string {
	return address + "\x00" + command
}

// Respond makes command on address succeed with output.
func (f *Fake) Respond(address, command, output string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[key(address, command)] = response{output: output}
	return f
}

// Fail makes command on address return err.
func (f *Fake) Fail(address, command string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[key(address, command)] = response{err: err}
	return f
}

// Delay makes the response for command on address arrive after d, or fail when ctx ends first.
func (f *Fake) Delay(address, command string, d time.Duration) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.responses[key(address, command)]
	r.delay = d
	f.responses[key(address, command)] = r
	return f
}

func (f *Fake) Execute(ctx context.Context, t remote.Target, command string) (*remote.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Target: t, Command: command})
	r, ok := f.responses[key(t.Address, command)]
	f.mu.Unlock()

	if !ok {
		return nil, &remote.ExitError{Code: 255, Stderr: fmt.Sprintf("ssh: connect to host %s: no route", t.Address)}
	}
	if r.delay > 0 {
		timer := time.NewTimer(r.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("ssh %s: %w", t.Destination(), ctx.Err())
		case <-timer.C:
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return &remote.Result{Output: r.output, Duration: r.delay}, nil
}

// Calls returns a copy of the recorded invocations in call order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}
