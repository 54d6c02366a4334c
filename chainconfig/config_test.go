package chainconfig

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(``))
	require.NoError(t, err)
	assert.Equal(t, uint64(5), cfg.BlockTimeSecs)
	assert.Equal(t, 10_000, cfg.MempoolMaxTransactions)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	src := `
BlockTimeSecs = 10
MaxClockDrift = 60
MempoolMaxTransactions = 500

[[Authorities]]
Address = "0x0102030405060708090a0b0c0d0e0f1011121314"
PublicKey = "aa"
`
	cfg, err := LoadConfig(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), cfg.BlockTimeSecs)
	assert.Equal(t, uint64(60), cfg.MaxClockDrift)
	assert.Equal(t, 500, cfg.MempoolMaxTransactions)
	require.Len(t, cfg.Authorities, 1)
	assert.Equal(t, "aa", cfg.Authorities[0].PublicKey)
}

func TestLoadConfigRejectsUnknownField(t *testing.T) {
	_, err := LoadConfig(strings.NewReader(`TotallyUnknownField = 1`))
	assert.Error(t, err)
}

func TestParsedAuthorities(t *testing.T) {
	cfg := Defaults()
	cfg.Authorities = []AuthorityEntry{
		{Address: "0x0102030405060708090a0b0c0d0e0f1011121314", PublicKey: "aa"},
	}
	addrs, pubkeys, err := cfg.ParsedAuthorities()
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.Len(t, pubkeys[addrs[0]], 32)
}
