package tools

import (
	"context"
	"testing"

	"haru/app/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonaTool_PartialUpdate(t *testing.T) {
	st := newToolStore(t)
	tool := &PersonaTool{store: st}
	tc := toolCtx("c1")

	reply, err := tool.Handle(context.Background(), "뽀삐,_,_", tc)
	require.NoError(t, err)
	assert.Contains(t, reply, "뽀삐")

	// visible to the current turn
	assert.Equal(t, "뽀삐", tc.Persona.Name)
	assert.Equal(t, store.DefaultPersona().Role, tc.Persona.Role)

	// and persisted for the next one
	p, err := st.Persona(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "뽀삐", p.Name)
	assert.Equal(t, store.DefaultPersona().Tone, p.Tone)
}

func TestPersonaTool_FullUpdate(t *testing.T) {
	st := newToolStore(t)
	tool := &PersonaTool{store: st}
	tc := toolCtx("c1")

	_, err := tool.Handle(context.Background(), "제이, 비서, 존댓말", tc)
	require.NoError(t, err)

	p, err := st.Persona(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, store.Persona{Name: "제이", Role: "비서", Tone: "존댓말"}, p)
}

func TestPersonaTool_BadInput(t *testing.T) {
	st := newToolStore(t)
	tool := &PersonaTool{store: st}

	for _, arg := range []string{"", "뽀삐", "뽀삐,비서"} {
		_, err := tool.Handle(context.Background(), arg, toolCtx("c1"))
		assert.Error(t, err, "arg %q", arg)
	}
}
