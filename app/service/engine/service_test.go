package engine

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"haru/app/config"
	"haru/app/service/queue"
	"haru/app/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	seen map[string][]string
	err  error
}

func (d *recordingDispatcher) HandleTurn(_ context.Context, conversationID, text string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.seen == nil {
		d.seen = make(map[string][]string)
	}
	d.seen[conversationID] = append(d.seen[conversationID], text)

	if d.err != nil {
		return "", d.err
	}

	return "re: " + text, nil
}

type recordingTransport struct {
	mu   sync.Mutex
	sent map[string][]string
}

func (tr *recordingTransport) SendMessage(conversationID, text string) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if tr.sent == nil {
		tr.sent = make(map[string][]string)
	}
	tr.sent[conversationID] = append(tr.sent[conversationID], text)

	return nil
}

func newTestEngine(t *testing.T) (*Service, *store.Store, *recordingDispatcher, *recordingTransport) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Shutdown() })

	queueSvc, err := queue.New(nil)
	require.NoError(t, err)

	dispatcher := &recordingDispatcher{}
	transport := &recordingTransport{}

	return &Service{
		cfg:        &config.Config{},
		store:      st,
		queueSvc:   queueSvc,
		dispatcher: dispatcher,
		transport:  transport,
	}, st, dispatcher, transport
}

func TestRun_PerConversationOrder(t *testing.T) {
	svc, _, dispatcher, transport := newTestEngine(t)

	svc.queueSvc.Add("c1", "first")
	svc.queueSvc.Add("c2", "hello")
	svc.queueSvc.Add("c1", "second")
	svc.queueSvc.Add("c1", "third")
	svc.queueSvc.Add("c2", "world")

	// closing the queue drains everything, then Run returns
	require.NoError(t, svc.queueSvc.Shutdown())
	svc.Run(context.Background())

	assert.Equal(t, []string{"first", "second", "third"}, dispatcher.seen["c1"])
	assert.Equal(t, []string{"hello", "world"}, dispatcher.seen["c2"])

	assert.Equal(t, []string{"re: first", "re: second", "re: third"}, transport.sent["c1"])
}

// blockingDispatcher holds its first turn until released, so a test can
// cancel the engine while that turn is in flight.
type blockingDispatcher struct {
	mu      sync.Mutex
	seen    []string
	started chan struct{}
	release chan struct{}
}

func (d *blockingDispatcher) HandleTurn(_ context.Context, _, text string) (string, error) {
	d.mu.Lock()
	d.seen = append(d.seen, text)
	first := len(d.seen) == 1
	d.mu.Unlock()

	if first {
		close(d.started)
		<-d.release
	}

	return "ok", nil
}

func TestRun_ShutdownStopsQueuedTurns(t *testing.T) {
	svc, _, _, _ := newTestEngine(t)

	dispatcher := &blockingDispatcher{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc.dispatcher = dispatcher

	svc.queueSvc.Add("c1", "first")
	svc.queueSvc.Add("c1", "second")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	// cancel while the first turn is mid-flight, then let it finish
	<-dispatcher.started
	cancel()
	close(dispatcher.release)
	<-done

	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()

	// the in-flight turn completes; the queued one is never started
	assert.Equal(t, []string{"first"}, dispatcher.seen)
}

func TestHandle_Commands(t *testing.T) {
	svc, st, dispatcher, _ := newTestEngine(t)
	ctx := context.Background()

	reply, err := svc.handle(ctx, "c1", "/start")
	require.NoError(t, err)
	assert.Contains(t, reply, store.DefaultPersona().Name)

	require.NoError(t, st.AppendTurn(ctx, "c1", store.RoleUser, "hello"))
	require.NoError(t, st.SetPersona(ctx, "c1", store.Persona{Name: "뽀삐", Role: "비서", Tone: "반말"}))

	_, err = svc.handle(ctx, "c1", "/clear")
	require.NoError(t, err)

	count, err := st.CountTurns(ctx, "c1")
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = svc.handle(ctx, "c1", "/newme")
	require.NoError(t, err)

	p, err := st.Persona(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, store.DefaultPersona(), p)

	// commands never reach the dispatcher
	assert.Empty(t, dispatcher.seen)
}

func TestProcess_DispatchErrorSendsFallback(t *testing.T) {
	svc, _, dispatcher, transport := newTestEngine(t)
	dispatcher.err = errors.New("llm unreachable")

	svc.process(context.Background(), queue.Message{ConversationID: "c1", Text: "hi"})

	require.Len(t, transport.sent["c1"], 1)
	assert.Equal(t, errorReply, transport.sent["c1"][0])
}
