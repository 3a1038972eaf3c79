package dispatch

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"haru/app/config"
	"haru/app/service/tools"
	"haru/app/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedLLM struct {
	replies   []string
	err       error
	calls     int
	histories [][]store.Turn
}

func (l *scriptedLLM) Generate(_ context.Context, _ string, history []store.Turn) (string, error) {
	l.calls++
	l.histories = append(l.histories, history)

	if l.err != nil {
		return "", l.err
	}

	reply := l.replies[len(l.replies)-1]
	if l.calls <= len(l.replies) {
		reply = l.replies[l.calls-1]
	}

	return reply, nil
}

func (l *scriptedLLM) Model() string { return "test-model" }

func newTestService(t *testing.T, llm LLM, handlers ...tools.Handler) (*Service, *store.Store) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Shutdown() })

	registry, err := tools.NewRegistryWith(handlers...)
	require.NoError(t, err)

	cfg := &config.Config{
		Chat: config.Chat{
			MaxToolRounds:     3,
			HistoryLimit:      20,
			SummaryThreshold:  100,
			SummaryKeepRecent: 10,
		},
	}

	return &Service{
		cfg:      cfg,
		llm:      llm,
		store:    st,
		registry: registry,
		executor: NewExecutor(registry, time.Second),
	}, st
}

func TestHandleTurn_PlainReply(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"안녕하세요! 무엇을 도와드릴까요?"}}
	svc, st := newTestService(t, llm)

	reply, err := svc.HandleTurn(context.Background(), "c1", "안녕")
	require.NoError(t, err)
	assert.Equal(t, "안녕하세요! 무엇을 도와드릴까요?", reply)
	assert.Equal(t, 1, llm.calls)

	history, err := st.History(context.Background(), "c1", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, store.RoleUser, history[0].Role)
	assert.Equal(t, "안녕", history[0].Content)
	assert.Equal(t, store.RoleAssistant, history[1].Role)
}

func TestHandleTurn_ToolRound(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"[WEATHER:서울]", "서울은 지금 맑고 15도예요."}}

	weather := &stubTool{
		name: "WEATHER",
		handle: func(_ context.Context, arg string, _ *tools.Context) (string, error) {
			assert.Equal(t, "서울", arg)
			return "Seoul: clear, 15°C", nil
		},
	}

	svc, st := newTestService(t, llm, weather)

	reply, err := svc.HandleTurn(context.Background(), "c1", "서울 날씨 어때?")
	require.NoError(t, err)
	assert.Equal(t, "서울은 지금 맑고 15도예요.", reply)
	assert.Equal(t, 2, llm.calls)

	// second round must see the tool result in its history
	last := llm.histories[1]
	require.NotEmpty(t, last)
	assert.Equal(t, store.RoleTool, last[len(last)-1].Role)
	assert.Contains(t, last[len(last)-1].Content, "Seoul: clear, 15°C")

	history, err := st.History(context.Background(), "c1", 10)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, store.RoleUser, history[0].Role)
	assert.Equal(t, "[WEATHER:서울]", history[1].Content)
	assert.Equal(t, store.RoleTool, history[2].Role)
	assert.Contains(t, history[2].Content, "[Tool Result]")
	assert.Equal(t, reply, history[3].Content)
}

func TestHandleTurn_RoundLimit(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"[LOOP:again]"}}

	loop := &stubTool{
		name: "LOOP",
		handle: func(context.Context, string, *tools.Context) (string, error) {
			return "still going", nil
		},
	}

	svc, st := newTestService(t, llm, loop)

	reply, err := svc.HandleTurn(context.Background(), "c1", "무한루프")
	require.NoError(t, err)
	assert.Equal(t, "[LOOP:again]", reply)
	assert.Equal(t, 3, llm.calls)

	// user + 3 rounds of assistant+tool + final assistant
	history, err := st.History(context.Background(), "c1", 20)
	require.NoError(t, err)
	assert.Len(t, history, 8)
}

func TestHandleTurn_UnknownTagIsPlainText(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"[FOO:bar]"}}
	svc, st := newTestService(t, llm)

	reply, err := svc.HandleTurn(context.Background(), "c1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "[FOO:bar]", reply)
	assert.Equal(t, 1, llm.calls)

	history, err := st.History(context.Background(), "c1", 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestHandleTurn_ToolFailureStillAnswers(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"[EXCHANGE:???]", "환율을 확인하지 못했어요."}}

	fail := &stubTool{
		name: "EXCHANGE",
		handle: func(context.Context, string, *tools.Context) (string, error) {
			return "", errors.New("cannot parse exchange request")
		},
	}

	svc, st := newTestService(t, llm, fail)

	reply, err := svc.HandleTurn(context.Background(), "c1", "100달러 환율")
	require.NoError(t, err)
	assert.Equal(t, "환율을 확인하지 못했어요.", reply)

	history, err := st.History(context.Background(), "c1", 10)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Contains(t, history[2].Content, "failed")
}

func TestHandleTurn_LLMFailureKeepsUserTurn(t *testing.T) {
	llm := &scriptedLLM{err: errors.New("connection refused")}
	svc, st := newTestService(t, llm)

	_, err := svc.HandleTurn(context.Background(), "c1", "hello")
	require.Error(t, err)

	history, err := st.History(context.Background(), "c1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, store.RoleUser, history[0].Role)
}

func TestHandleTurn_CompressesLongHistory(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"요약된 대화입니다."}}
	svc, st := newTestService(t, llm)
	svc.cfg.Chat.SummaryThreshold = 5
	svc.cfg.Chat.SummaryKeepRecent = 2

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.HandleTurn(ctx, "c1", "안녕")
		require.NoError(t, err)
	}

	count, err := st.CountTurns(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	summary, err := st.Summary(ctx, "c1")
	require.NoError(t, err)
	assert.NotEmpty(t, summary)
}
