package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExchangeArg(t *testing.T) {
	tests := []struct {
		name       string
		arg        string
		wantAmount float64
		wantFrom   string
		wantTo     string
		wantErr    bool
	}{
		{name: "comma separated", arg: "100,USD,KRW", wantAmount: 100, wantFrom: "USD", wantTo: "KRW"},
		{name: "space separated", arg: "100 USD KRW", wantAmount: 100, wantFrom: "USD", wantTo: "KRW"},
		{name: "mixed separators", arg: "1, JPY, KRW", wantAmount: 1, wantFrom: "JPY", wantTo: "KRW"},
		{name: "two codes imply amount 1", arg: "USD,KRW", wantAmount: 1, wantFrom: "USD", wantTo: "KRW"},
		{name: "lowercase codes", arg: "50,usd,krw", wantAmount: 50, wantFrom: "USD", wantTo: "KRW"},
		{name: "bad amount defaults to 1", arg: "many,USD,KRW", wantAmount: 1, wantFrom: "USD", wantTo: "KRW"},
		{name: "amount without target", arg: "100,USD", wantErr: true},
		{name: "single field", arg: "USD", wantErr: true},
		{name: "empty", arg: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, from, to, err := parseExchangeArg(tt.arg)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, amount)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantTo, to)
		})
	}
}
