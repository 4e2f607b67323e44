package transpile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	p "github.com/soniccontrol/sonicctl/protocol"
)

func generate(t *testing.T, targets ...p.ProtocolType) string {
	t.Helper()
	tr := New()
	for _, pt := range targets {
		require.NoError(t, tr.AddTarget(pt))
	}
	out, err := tr.Generate()
	require.NoError(t, err)
	return out
}

func TestGenerateEmptyFails(t *testing.T) {
	_, err := New().Generate()
	assert.Error(t, err)
}

func TestGenerateHeaderShape(t *testing.T) {
	out := generate(t, p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true})

	assert.True(t, strings.HasPrefix(out, "/* Generated protocol tables."))
	assert.Contains(t, out, "#ifndef SONIC_PROTOCOL_DEFS_H")
	assert.True(t, strings.HasSuffix(out, "#endif /* SONIC_PROTOCOL_DEFS_H */\n"))

	// Numeric values survive into the enums.
	assert.Contains(t, out, "CMD_GET_PROTOCOL = 0,")
	assert.Contains(t, out, "CMD_SET_FREQ = 1020,")
	assert.Contains(t, out, "SI_PREFIX_HECTO = 2,")
	assert.Contains(t, out, "SI_PREFIX_MILLI = -3,")
	assert.Contains(t, out, "DEVICE_MVP_WORKER")

	assert.Contains(t, out, "protocol_mvp_worker_v1_0_0_release")
	assert.Contains(t, out, "enum { PROTOCOL_COUNT = 1 };")
}

func TestGenerateSharesIdenticalDefinitions(t *testing.T) {
	out := generate(t, p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true})

	// freq, ramp f_start and ramp f_stop all carry the same Hz limits, so
	// exactly one limits block with the default frequency range is emitted.
	assert.Equal(t, 1, strings.Count(out, "{true, true, 100000.0, 1e+07}"))

	// The procedure enum member list appears once, shared by pointer.
	assert.Equal(t, 1, strings.Count(out, `{"none", "auto", "tune", "scan", "wipe", "ramp", "duty_cycle"}`))
}

func TestGenerateMultipleTargets(t *testing.T) {
	out := generate(t,
		p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true},
		p.ProtocolType{Version: p.V(3, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true},
	)

	assert.Contains(t, out, "protocol_mvp_worker_v1_0_0_release")
	assert.Contains(t, out, "protocol_mvp_worker_v3_0_0_release")
	assert.Contains(t, out, "enum { PROTOCOL_COUNT = 2 };")

	// The v3 view drops the pico clock readout, but v1 still carries it.
	assert.Contains(t, out, "CMD_GET_DATETIME_PICO")
}

func TestGenerateDebugBuildKeepsDebugCommands(t *testing.T) {
	rel := generate(t, p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true})
	dbg := generate(t, p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceMvpWorker, IsRelease: false})

	assert.NotContains(t, rel, "CMD_SET_SWF")
	assert.Contains(t, dbg, "CMD_SET_SWF")
	assert.Contains(t, dbg, "protocol_mvp_worker_v1_0_0_debug")
}

func TestGenerateStringTables(t *testing.T) {
	out := generate(t, p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true})
	assert.Contains(t, out, "command_code_to_string")
	assert.Contains(t, out, "field_name_to_string")
	assert.Contains(t, out, `case CMD_GET_UPDATE: return "get_update";`)
}
