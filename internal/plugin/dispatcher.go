package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ayusman/asana/internal/events"
	"github.com/ayusman/asana/internal/store"
)

// CueSource returns the enabled cues bound to an event on a pose.
type CueSource interface {
	ListFor(eventKind, poseID string) ([]*store.Cue, error)
}

// Runner executes one plugin request.
type Runner interface {
	Execute(ctx context.Context, plugin *Plugin, req *Request) (*Response, error)
}

// Lookup resolves a plugin by name.
type Lookup interface {
	Get(name string) (*Plugin, error)
}

// Dispatcher is an events.Sink that runs the plugin cues bound to each
// transitional event. Plugins run in the background with at most
// maxInFlight concurrent runs; cues beyond that are dropped.
type Dispatcher struct {
	cues    CueSource
	plugins Lookup
	runner  Runner
	logger  *slog.Logger

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cues CueSource, plugins Lookup, runner Runner, maxInFlight int, logger *slog.Logger) *Dispatcher {
	if maxInFlight <= 0 {
		maxInFlight = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		cues:    cues,
		plugins: plugins,
		runner:  runner,
		logger:  logger,
		sem:     make(chan struct{}, maxInFlight),
	}
}

// Publish looks up the cues for e and starts them. Lookup failures are
// returned; plugin failures are logged.
func (d *Dispatcher) Publish(ctx context.Context, e events.Event) error {
	if !e.Kind.Transitional() {
		return nil
	}

	cues, err := d.cues.ListFor(string(e.Kind), e.PoseID)
	if err != nil {
		return fmt.Errorf("list cues for %s: %w", e.Kind, err)
	}

	var errs []error
	for _, cue := range cues {
		p, err := d.plugins.Get(cue.PluginName)
		if err != nil {
			errs = append(errs, fmt.Errorf("cue %s: %w", cue.ID, err))
			continue
		}
		if !p.Supports(cue.ActionName) {
			errs = append(errs, fmt.Errorf("cue %s: plugin %s does not support %q", cue.ID, p.Manifest.Name, cue.ActionName))
			continue
		}

		req := &Request{
			Action:   cue.ActionName,
			Event:    string(e.Kind),
			PoseID:   e.PoseID,
			PoseName: e.PoseName,
			Accuracy: e.Accuracy,
			Message:  e.Message,
			Config:   cue.Config,
		}

		select {
		case d.sem <- struct{}{}:
		default:
			d.logger.Warn("cue dropped, too many plugins running", "cue", cue.ID, "plugin", p.Manifest.Name)
			continue
		}

		d.wg.Add(1)
		go d.run(context.WithoutCancel(ctx), cue.ID, p, req)
	}

	return errors.Join(errs...)
}

func (d *Dispatcher) run(ctx context.Context, cueID string, p *Plugin, req *Request) {
	defer d.wg.Done()
	defer func() { <-d.sem }()

	resp, err := d.runner.Execute(ctx, p, req)
	switch {
	case err != nil:
		d.logger.Warn("cue failed", "cue", cueID, "plugin", p.Manifest.Name, "action", req.Action, "error", err)
	case !resp.Success:
		d.logger.Warn("cue reported failure", "cue", cueID, "plugin", p.Manifest.Name, "action", req.Action, "error", resp.Error)
	default:
		d.logger.Debug("cue ran", "cue", cueID, "plugin", p.Manifest.Name, "action", req.Action, "event", req.Event)
	}
}

// Wait blocks until every started plugin run has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
