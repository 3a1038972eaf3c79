package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func knownSet(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool {
		return set[name]
	}
}

func TestParse_NoMarkers(t *testing.T) {
	known := knownSet("WEATHER")

	for _, text := range []string{
		"",
		"오늘은 날씨가 좋네요!",
		"brackets [like this] are not markers",
		"[lowercase:nope]",
		"[:no name]",
	} {
		requests, residual := Parse(text, known)
		assert.Nil(t, requests, "input %q", text)
		assert.Equal(t, text, residual, "input %q", text)
	}
}

func TestParse_SingleMarker(t *testing.T) {
	requests, residual := Parse("[WEATHER:서울]", knownSet("WEATHER"))

	require.Len(t, requests, 1)
	assert.Equal(t, "WEATHER", requests[0].Tool)
	assert.Equal(t, "서울", requests[0].Arg)
	assert.Equal(t, 0, requests[0].Start)
	assert.Empty(t, residual)
}

func TestParse_MarkerWithSurroundingText(t *testing.T) {
	requests, residual := Parse("네, 확인해볼게요 [WEATHER:부산] 잠시만요", knownSet("WEATHER"))

	require.Len(t, requests, 1)
	assert.Equal(t, "부산", requests[0].Arg)
	assert.Equal(t, "네, 확인해볼게요  잠시만요", residual)
}

func TestParse_EmptyAndMissingArgument(t *testing.T) {
	known := knownSet("MEMO_LIST", "REMINDER_LIST")

	requests, _ := Parse("[MEMO_LIST]", known)
	require.Len(t, requests, 1)
	assert.Equal(t, "MEMO_LIST", requests[0].Tool)
	assert.Empty(t, requests[0].Arg)

	requests, _ = Parse("[REMINDER_LIST:]", known)
	require.Len(t, requests, 1)
	assert.Empty(t, requests[0].Arg)
}

func TestParse_UnknownToolStaysInText(t *testing.T) {
	requests, residual := Parse("[FOO:bar] and [WEATHER:서울]", knownSet("WEATHER"))

	require.Len(t, requests, 1)
	assert.Equal(t, "WEATHER", requests[0].Tool)
	assert.Equal(t, "[FOO:bar] and ", residual)
}

func TestParse_MultipleMarkersKeepOrder(t *testing.T) {
	known := knownSet("WEATHER", "EXCHANGE")

	requests, residual := Parse("[WEATHER:서울][EXCHANGE:100,USD,KRW]", known)

	require.Len(t, requests, 2)
	assert.Equal(t, "WEATHER", requests[0].Tool)
	assert.Equal(t, "EXCHANGE", requests[1].Tool)
	assert.Equal(t, "100,USD,KRW", requests[1].Arg)
	assert.Empty(t, residual)
}

func TestParse_ArgumentTakenVerbatim(t *testing.T) {
	requests, _ := Parse("[REMINDER:30분, 회의 시작]", knownSet("REMINDER"))

	require.Len(t, requests, 1)
	assert.Equal(t, "30분, 회의 시작", requests[0].Arg)
}
