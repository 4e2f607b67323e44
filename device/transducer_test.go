package device

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	p "github.com/soniccontrol/sonicctl/protocol"
)

func TestTransducerConfigRoundTrip(t *testing.T) {
	cfg := &TransducerConfig{
		Name: "horn-40khz",
		Triples: []TransducerTriple{
			{ATF: 1_000_000, ATK: 10, ATT: 298_000},
			{ATF: 2_000_000, ATK: 20, ATT: 300_000},
		},
		InitScript: "init.sonic",
	}
	path := filepath.Join(t.TempDir(), "horn.json")
	require.NoError(t, cfg.Save(path))

	got, err := LoadTransducerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestTransducerConfigValidation(t *testing.T) {
	_, err := LoadTransducerConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	noName := &TransducerConfig{Triples: []TransducerTriple{{ATF: 1_000_000}}}
	assert.Error(t, noName.Save(filepath.Join(t.TempDir(), "noname.json")))

	tooMany := &TransducerConfig{Name: "x", Triples: make([]TransducerTriple, 5)}
	err = tooMany.Save(filepath.Join(t.TempDir(), "toomany.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slots")
}

func TestTransducerConfigApply(t *testing.T) {
	dev, fc := workerDevice(t, p.V(1, 0, 0), func(text string) string {
		if i := strings.IndexByte(text, '='); i >= 0 {
			return text[i+1:]
		}
		return text
	})
	cfg := &TransducerConfig{
		Name: "horn-40khz",
		Triples: []TransducerTriple{
			{ATF: 1_000_000, ATK: 10, ATT: 298_000},
			{ATF: 2_000_000, ATK: 20, ATT: 300_000},
		},
	}
	require.NoError(t, cfg.Apply(context.Background(), dev))

	assert.Equal(t, []string{
		"!atf1=1000000", "!atk1=10", "!att1=298000",
		"!atf2=2000000", "!atk2=20", "!att2=300000",
	}, fc.sent())
}

func TestTransducerConfigApplyStopsOnRejectedValue(t *testing.T) {
	dev, fc := workerDevice(t, p.V(1, 0, 0), func(text string) string {
		return text
	})
	// ATF below the device's minimum frequency is rejected locally.
	cfg := &TransducerConfig{
		Name:    "bad",
		Triples: []TransducerTriple{{ATF: 50, ATK: 10, ATT: 298_000}},
	}
	err := cfg.Apply(context.Background(), dev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transducer 1")
	assert.Empty(t, fc.sent())
}
