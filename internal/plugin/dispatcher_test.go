package plugin

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/asana/internal/events"
	"github.com/ayusman/asana/internal/store"
)

type fakeCues struct {
	cues []*store.Cue
	err  error
	kind string
	pose string
}

func (f *fakeCues) ListFor(kind, poseID string) ([]*store.Cue, error) {
	f.kind, f.pose = kind, poseID
	return f.cues, f.err
}

type fakeLookup map[string]*Plugin

func (f fakeLookup) Get(name string) (*Plugin, error) {
	p, ok := f[name]
	if !ok {
		return nil, ErrPluginNotFound
	}
	return p, nil
}

type fakeRunner struct {
	mu       sync.Mutex
	requests []Request
	block    chan struct{}
	err      error
}

func (f *fakeRunner) Execute(_ context.Context, _ *Plugin, req *Request) (*Response, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, *req)
	if f.err != nil {
		return nil, f.err
	}
	return &Response{Success: true}, nil
}

func (f *fakeRunner) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

var announce = &Plugin{Manifest: Manifest{Name: "announce", Actions: []string{"say"}}}

func TestDispatcher_RunsCues(t *testing.T) {
	cues := &fakeCues{cues: []*store.Cue{
		{ID: "c1", PluginName: "announce", ActionName: "say", Config: []byte(`{"text":"well done"}`)},
	}}
	runner := &fakeRunner{}
	d := NewDispatcher(cues, fakeLookup{"announce": announce}, runner, 2, nil)

	err := d.Publish(context.Background(), events.Event{
		Kind:     events.KindPoseCompleted,
		PoseID:   "tree",
		PoseName: "Tree",
		Accuracy: 91,
	})
	require.NoError(t, err)
	d.Wait()

	assert.Equal(t, "pose.completed", cues.kind)
	assert.Equal(t, "tree", cues.pose)

	reqs := runner.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "say", reqs[0].Action)
	assert.Equal(t, "pose.completed", reqs[0].Event)
	assert.Equal(t, "Tree", reqs[0].PoseName)
	assert.InDelta(t, 91, reqs[0].Accuracy, 1e-9)
	assert.JSONEq(t, `{"text":"well done"}`, string(reqs[0].Config))
}

func TestDispatcher_IgnoresFrameEvents(t *testing.T) {
	cues := &fakeCues{}
	d := NewDispatcher(cues, fakeLookup{}, &fakeRunner{}, 1, nil)

	require.NoError(t, d.Publish(context.Background(), events.Event{Kind: events.KindFrameScored}))
	assert.Empty(t, cues.kind, "cue lookup should be skipped for frame events")
}

func TestDispatcher_Errors(t *testing.T) {
	t.Run("lookup failure", func(t *testing.T) {
		d := NewDispatcher(&fakeCues{err: errors.New("db closed")}, fakeLookup{}, &fakeRunner{}, 1, nil)
		assert.Error(t, d.Publish(context.Background(), events.Event{Kind: events.KindHoldLost}))
	})

	t.Run("unknown plugin and unsupported action", func(t *testing.T) {
		cues := &fakeCues{cues: []*store.Cue{
			{ID: "missing", PluginName: "chime", ActionName: "ring"},
			{ID: "bad-action", PluginName: "announce", ActionName: "shout"},
			{ID: "ok", PluginName: "announce", ActionName: "say"},
		}}
		runner := &fakeRunner{}
		d := NewDispatcher(cues, fakeLookup{"announce": announce}, runner, 4, nil)

		err := d.Publish(context.Background(), events.Event{Kind: events.KindHoldStarted})
		d.Wait()

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPluginNotFound)
		assert.Contains(t, err.Error(), "shout")
		assert.Len(t, runner.Requests(), 1, "valid cue should still run")
	})

	t.Run("plugin failure is not returned", func(t *testing.T) {
		cues := &fakeCues{cues: []*store.Cue{{ID: "c", PluginName: "announce", ActionName: "say"}}}
		runner := &fakeRunner{err: errors.New("exit status 1")}
		d := NewDispatcher(cues, fakeLookup{"announce": announce}, runner, 1, nil)

		assert.NoError(t, d.Publish(context.Background(), events.Event{Kind: events.KindPoseCompleted}))
		d.Wait()
	})
}

func TestDispatcher_DropsWhenSaturated(t *testing.T) {
	cues := &fakeCues{cues: []*store.Cue{
		{ID: "a", PluginName: "announce", ActionName: "say"},
		{ID: "b", PluginName: "announce", ActionName: "say"},
	}}
	runner := &fakeRunner{block: make(chan struct{})}
	d := NewDispatcher(cues, fakeLookup{"announce": announce}, runner, 1, nil)

	require.NoError(t, d.Publish(context.Background(), events.Event{Kind: events.KindPoseCompleted}))
	close(runner.block)
	d.Wait()

	assert.Len(t, runner.Requests(), 1)
}

func TestDispatcher_ImplementsSink(t *testing.T) {
	var _ events.Sink = (*Dispatcher)(nil)
}
