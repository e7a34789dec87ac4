package parser

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const token = "0x6982508145454Ce325dDbE47a25d4ec3d2311933"

func TestParse(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		text     string
		position string
		stop     string
		tps      []string
	}{
		{
			name:     "full signal",
			text:     "Ape 5% into " + token + "\nSL -25%\nTP: 20%, 50%, 120%",
			position: "5",
			stop:     "25",
			tps:      []string{"20", "50", "120"},
		},
		{
			name:     "long form keywords",
			text:     "contract " + token + " allocate 2.5 % stop loss: 40% take profit 30% 60%",
			position: "2.5",
			stop:     "40",
			tps:      []string{"30", "60"},
		},
		{
			name: "address only with keyword",
			text: "degen play " + token,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sig, err := Parse(tc.text, at)
			require.NoError(t, err)
			assert.Equal(t, token, sig.TokenID)
			assert.True(t, sig.ReceivedAt.Equal(at))

			if tc.position == "" {
				assert.Nil(t, sig.RequestedPositionPct)
			} else {
				require.NotNil(t, sig.RequestedPositionPct)
				assert.True(t, sig.RequestedPositionPct.Equal(decimal.RequireFromString(tc.position)))
			}
			if tc.stop == "" {
				assert.Nil(t, sig.RequestedStopLossPct)
			} else {
				require.NotNil(t, sig.RequestedStopLossPct)
				assert.True(t, sig.RequestedStopLossPct.Equal(decimal.RequireFromString(tc.stop)))
			}
			require.Len(t, sig.RequestedTakeProfitLevels, len(tc.tps))
			for i, tp := range tc.tps {
				assert.True(t, sig.RequestedTakeProfitLevels[i].Equal(decimal.RequireFromString(tp)))
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	_, err := Parse("buy 5% of something short", time.Now())
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = Parse("hello "+token, time.Now())
	assert.ErrorIs(t, err, ErrNotSignal)
}

func TestIsSignal(t *testing.T) {
	assert.True(t, IsSignal("PUMP "+token))
	assert.False(t, IsSignal("PUMP"))
}
