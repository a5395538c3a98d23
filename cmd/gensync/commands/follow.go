package commands

import (
	"context"
	"io"
	"time"

	"github.com/pterm/pterm"
	"golang.org/x/time/rate"

	"github.com/stratalab/gensync/api"
	"github.com/stratalab/gensync/errors"
	"github.com/stratalab/gensync/logger"
	"github.com/stratalab/gensync/push"
	"github.com/stratalab/gensync/stream"
	"github.com/stratalab/gensync/track"
	"github.com/stratalab/gensync/wire"
)

// pollLimit caps how often the fallback poller may hit the project endpoint
// once the request-scoped stream is gone.
var pollLimit = rate.Every(2 * time.Second)

type follower struct {
	store   *track.Store
	stream  *stream.Stream // optional: nil when following without a stream
	channel *push.Channel  // optional
	client  *api.Client
	jobID   string
}

// follow pumps every available transport through the normalizer into the
// store and renders progress until the job reaches a terminal state. A
// dropped stream never fails the job: it means "unknown", and the push
// channel or the polling fallback resolves it.
func (f *follower) follow(ctx context.Context) (track.Job, error) {
	updates, unsubscribe := f.store.Subscribe(f.jobID)
	defer unsubscribe()

	streamDone := make(chan error, 1)
	if f.stream != nil {
		go func() {
			for {
				ev, err := f.stream.Next()
				if err != nil {
					streamDone <- err
					return
				}
				f.store.Apply(wire.Normalize(ev))
			}
		}()
	} else {
		streamDone <- io.EOF
	}

	if f.channel != nil {
		events, unsub := f.channel.Subscribe()
		defer unsub()
		go func() {
			for ev := range events {
				f.store.Apply(wire.Normalize(ev))
			}
		}()
	}

	bar, err := pterm.DefaultProgressbar.
		WithTotal(100).
		WithTitle("Generating").
		Start()
	if err != nil {
		return track.Job{}, errors.Wrap(err, "failed to start progress display")
	}
	defer bar.Stop()

	if job, ok := f.store.Get(f.jobID); ok {
		f.render(bar, job)
		if job.Status.Terminal() {
			return job, nil
		}
	}

	limiter := rate.NewLimiter(pollLimit, 1)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	streamAlive := f.stream != nil

	for {
		select {
		case <-ctx.Done():
			return track.Job{}, errors.Wrap(errors.ErrTransport, ctx.Err().Error())

		case err := <-streamDone:
			streamAlive = false
			streamDone = nil
			if err != nil && err != io.EOF {
				logger.Warnw("Generation stream dropped, falling back to push channel and polling",
					"job_id", f.jobID,
					"error", err.Error(),
				)
			}

		case job := <-updates:
			f.render(bar, job)
			if job.Status.Terminal() {
				return job, nil
			}

		case <-ticker.C:
			if streamAlive || f.client == nil || !limiter.Allow() {
				continue
			}
			go f.pollOnce(ctx)
		}
	}
}

// pollOnce refreshes job state from the project endpoint. Errors are logged
// and ignored; polling is best-effort.
func (f *follower) pollOnce(ctx context.Context) {
	project, err := f.client.Project(ctx, f.jobID)
	if err != nil {
		logger.Debugw("Polling fallback failed", "job_id", f.jobID, "error", err.Error())
		return
	}
	f.store.Apply(wire.NormalizeProject(project))
}

func (f *follower) render(bar *pterm.ProgressbarPrinter, job track.Job) {
	if job.Progress > bar.Current {
		bar.Add(job.Progress - bar.Current)
	}
	if job.Message != "" {
		bar.UpdateTitle(job.Message)
	}
}

// report prints the terminal outcome and converts a failed job into an error.
func report(job track.Job) error {
	switch job.Status {
	case track.StatusSucceeded:
		pterm.Success.Printf("Generation complete: %d file(s)\n", len(job.Files))
		for name := range job.Files {
			pterm.Printf("  %s\n", name)
		}
		return nil
	case track.StatusFailed:
		pterm.Error.Printf("Generation failed: %s\n", job.FailureReason)
		return errors.Newf("generation failed: %s", job.FailureReason)
	default:
		return errors.Newf("job %s ended in non-terminal state %s", job.ID, job.Status)
	}
}
