package jobtrack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/gostratus/pkg/gridapi"
)

func monitorFake(statuses ...gridapi.JobStatus) *fakeJobAPI {
	return &fakeJobAPI{
		statuses: statuses,
		details:  &gridapi.JobDetails{UUID: testJobUUID, Status: statuses[0], MaxMinutes: 1},
	}
}

func TestMonitorReachesTerminal(t *testing.T) {
	api := monitorFake(
		gridapi.StatusPending,
		gridapi.StatusQueued,
		gridapi.StatusRunning,
		gridapi.StatusRunning,
		gridapi.StatusFinished,
	)
	j, err := New(api, testJobUUID)
	require.NoError(t, err)

	outcome := j.Monitor(context.Background(), MonitorOptions{
		Interval: time.Millisecond,
		Timeout:  time.Second,
	})
	assert.Equal(t, Outcome(gridapi.StatusFinished), outcome)
	assert.True(t, outcome.Terminal())
	assert.Equal(t, gridapi.StatusFinished, outcome.Status())
}

func TestMonitorFailureIsTerminalOutcome(t *testing.T) {
	api := monitorFake(gridapi.StatusRunning, gridapi.StatusFailed)
	j, err := New(api, testJobUUID)
	require.NoError(t, err)

	outcome := j.Monitor(context.Background(), MonitorOptions{
		Interval: time.Millisecond,
		Timeout:  time.Second,
	})
	assert.Equal(t, Outcome(gridapi.StatusFailed), outcome)
	assert.True(t, outcome.Terminal())
}

func TestMonitorTimeout(t *testing.T) {
	// The job never leaves RUNNING; the active phase poll budget runs out.
	api := monitorFake(gridapi.StatusRunning)
	j, err := New(api, testJobUUID)
	require.NoError(t, err)

	outcome := j.Monitor(context.Background(), MonitorOptions{
		Interval: time.Millisecond,
		Timeout:  5 * time.Millisecond,
	})
	assert.Equal(t, OutcomeTimeout, outcome)
	assert.False(t, outcome.Terminal())
	assert.Equal(t, gridapi.JobStatus(""), outcome.Status())
	// floor(5ms / 1ms) = 5 polls at most.
	assert.LessOrEqual(t, api.statusCalls, 6)
}

func TestMonitorInterrupted(t *testing.T) {
	api := monitorFake(gridapi.StatusQueued)
	j, err := New(api, testJobUUID)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Outcome, 1)
	go func() {
		done <- j.Monitor(ctx, MonitorOptions{Interval: 50 * time.Millisecond, Timeout: time.Minute})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case outcome := <-done:
		assert.Equal(t, OutcomeInterrupted, outcome)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not observe cancellation")
	}
}

func TestMonitorRemoteErrorOutcome(t *testing.T) {
	api := monitorFake(gridapi.StatusQueued)
	api.statusErr = errors.New("gateway exploded")
	j, err := New(api, testJobUUID)
	require.NoError(t, err)

	outcome := j.Monitor(context.Background(), MonitorOptions{
		Interval: time.Millisecond,
		Timeout:  time.Second,
	})
	assert.Equal(t, OutcomeError, outcome)
}

func TestMonitorDetailsFailure(t *testing.T) {
	api := &fakeJobAPI{detailsErr: errors.New("boom"), statuses: []gridapi.JobStatus{gridapi.StatusQueued}}
	j, err := New(api, testJobUUID)
	require.NoError(t, err)

	outcome := j.Monitor(context.Background(), MonitorOptions{Interval: time.Millisecond})
	assert.Equal(t, OutcomeError, outcome)
	assert.Equal(t, 0, api.statusCalls)
}

func TestMonitorDerivesTimeoutFromDetails(t *testing.T) {
	// MaxMinutes 0 and no explicit timeout means unbounded polling; the
	// job finishing promptly keeps the test fast.
	api := monitorFake(gridapi.StatusRunning, gridapi.StatusFinished)
	api.details.MaxMinutes = 0

	j, err := New(api, testJobUUID)
	require.NoError(t, err)

	outcome := j.Monitor(context.Background(), MonitorOptions{Interval: time.Millisecond})
	assert.Equal(t, Outcome(gridapi.StatusFinished), outcome)
}

func TestOutcomeVocabulary(t *testing.T) {
	for _, s := range gridapi.TerminalStatuses() {
		o := Outcome(s)
		assert.True(t, o.Terminal(), s)
		assert.Equal(t, s, o.Status())
	}
	for _, o := range []Outcome{OutcomeTimeout, OutcomeInterrupted, OutcomeError} {
		assert.False(t, o.Terminal(), o)
		assert.Equal(t, gridapi.JobStatus(""), o.Status())
	}
}
