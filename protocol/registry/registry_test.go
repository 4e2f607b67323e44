package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	p "github.com/soniccontrol/sonicctl/protocol"
)

func resolve(t *testing.T, pt p.ProtocolType) *p.Protocol {
	t.Helper()
	proto, err := Resolve(pt)
	require.NoError(t, err)
	return proto
}

func TestVersionsOrdered(t *testing.T) {
	vs := Versions()
	require.Len(t, vs, 3)
	for i := 1; i < len(vs); i++ {
		assert.True(t, vs[i-1].LT(vs[i]))
	}
}

func TestLatest(t *testing.T) {
	v, ok := Latest(p.DeviceMvpWorker)
	require.True(t, ok)
	assert.Equal(t, p.V(3, 0, 0), v)

	v, ok = Latest(p.DeviceCrystal)
	require.True(t, ok)
	assert.Equal(t, p.V(1, 0, 0), v)

	_, ok = Latest(p.DeviceConfigurator)
	assert.False(t, ok)
}

func TestResolveUnknownDeviceVersion(t *testing.T) {
	_, err := Resolve(p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceConfigurator, IsRelease: true})
	assert.Error(t, err)
}

func TestResolveMergesLayers(t *testing.T) {
	v1 := resolve(t, p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true})
	v2 := resolve(t, p.ProtocolType{Version: p.V(2, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true})

	_, ok := v1.Lookup(p.CodeClearErrors)
	assert.False(t, ok, "clear_errors arrives in v2")
	_, ok = v2.Lookup(p.CodeClearErrors)
	assert.True(t, ok)

	// Everything from v1 survives the merge.
	for _, code := range v1.Codes() {
		_, ok := v2.Lookup(code)
		assert.True(t, ok, "code %s lost between versions", code)
	}
}

func TestResolveRemovesTombstonedCommands(t *testing.T) {
	v2 := resolve(t, p.ProtocolType{Version: p.V(2, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true})
	v3 := resolve(t, p.ProtocolType{Version: p.V(3, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true})

	_, ok := v2.Lookup(p.CodeGetDatetimePico)
	assert.True(t, ok)
	_, ok = v3.Lookup(p.CodeGetDatetimePico)
	assert.False(t, ok)
}

func TestResolveHectoFrequencyOverride(t *testing.T) {
	v3 := resolve(t, p.ProtocolType{Version: p.V(3, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true})

	e, ok := v3.Lookup(p.CodeSetFreq)
	require.True(t, ok)
	ft := e.Contract.Command.SetterParam.Type
	assert.Equal(t, p.KindUint16, ft.Kind)
	assert.Equal(t, p.PrefixHecto, ft.Prefix)
	require.NotNil(t, ft.Max)
	assert.Equal(t, float64(100_000), ft.Max.Value)

	e, ok = v3.Lookup(p.CodeGetUpdate)
	require.True(t, ok)
	assert.Equal(t, p.PrefixHecto, e.Contract.Answer.Fields[1].Type.Prefix)

	// Descale gets the tombstone but keeps Hz frequencies.
	d3 := resolve(t, p.ProtocolType{Version: p.V(3, 0, 0), Device: p.DeviceDescale, IsRelease: true})
	e, ok = d3.Lookup(p.CodeSetFreq)
	require.True(t, ok)
	assert.Equal(t, p.PrefixNone, e.Contract.Command.SetterParam.Type.Prefix)
}

func TestResolveDeviceConstOverride(t *testing.T) {
	d1 := resolve(t, p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceDescale, IsRelease: true})
	e, ok := d1.Lookup(p.CodeSetGain)
	require.True(t, ok)
	require.NotNil(t, e.Contract.Command.SetterParam.Type.Max)
	assert.Equal(t, float64(101), e.Contract.Command.SetterParam.Type.Max.Value)

	w1 := resolve(t, p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true})
	e, ok = w1.Lookup(p.CodeSetGain)
	require.True(t, ok)
	assert.Equal(t, float64(150), e.Contract.Command.SetterParam.Type.Max.Value)
}

func TestReleaseBuildDropsDebugCommands(t *testing.T) {
	rel := resolve(t, p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true})
	dbg := resolve(t, p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceMvpWorker, IsRelease: false})

	_, ok := rel.Lookup(p.CodeSetSwf)
	assert.False(t, ok)
	_, ok = dbg.Lookup(p.CodeSetSwf)
	assert.True(t, ok)
}

func TestResolveIdentifiersUnique(t *testing.T) {
	for _, dt := range []p.DeviceType{p.DeviceUnknown, p.DeviceMvpWorker, p.DeviceDescale, p.DeviceCrystal} {
		for _, v := range Versions() {
			pt := p.ProtocolType{Version: v, Device: dt, IsRelease: false}
			proto, err := Resolve(pt)
			if err != nil {
				continue
			}
			seen := map[string]p.CommandCode{}
			for _, code := range proto.Codes() {
				e, _ := proto.Lookup(code)
				if e.Contract.Command == nil {
					continue
				}
				for _, id := range e.Contract.Command.Identifiers {
					key := strings.ToLower(id)
					prev, dup := seen[key]
					assert.False(t, dup, "%s: identifier %q on %s and %s", pt, id, prev, code)
					seen[key] = code
				}
			}
		}
	}
}

func TestResolveValidatesStatusAnswer(t *testing.T) {
	w1 := resolve(t, p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true})
	e, ok := w1.Lookup(p.CodeGetUpdate)
	require.True(t, ok)

	ans := e.Validator.Validate("0#200000#100#none#298150#1000#50#30#on#0")
	require.True(t, ans.Valid)
	assert.Equal(t, int64(200000), ans.Fields[p.FieldFrequency])
	assert.Equal(t, int64(298150), ans.Fields[p.FieldTemperature])
	assert.Equal(t, true, ans.Fields[p.FieldSignal])
}

func TestResolveInfoJoinsFirmwareInfo(t *testing.T) {
	w1 := resolve(t, p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true})
	e, ok := w1.Lookup(p.CodeGetInfo)
	require.True(t, ok)

	ans := e.Validator.Validate("mvp_worker#2.1.0#1.5.2#abc1234#01.02.2026")
	require.True(t, ans.Valid)
	info, _ := ans.Fields[p.FieldFirmwareInfo].(string)
	assert.Contains(t, info, "mvp_worker")
	assert.Contains(t, info, "abc1234")
}

func TestResolveBuildsFreshTables(t *testing.T) {
	a := resolve(t, p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true})
	b := resolve(t, p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceDescale, IsRelease: true})

	ea, _ := a.Lookup(p.CodeSetGain)
	eb, _ := b.Lookup(p.CodeSetGain)
	assert.NotSame(t, ea.Contract, eb.Contract)
	assert.NotEqual(t, ea.Contract.Command.SetterParam.Type.Max.Value, eb.Contract.Command.SetterParam.Type.Max.Value)
}

func TestResolveOrProbeFallsBack(t *testing.T) {
	pt := p.ProtocolType{Version: p.V(9, 9, 9), Device: p.DeviceConfigurator, IsRelease: true}
	proto := ResolveOrProbe(pt)
	require.NotNil(t, proto)
	assert.Equal(t, pt, proto.Type)

	_, ok := proto.Lookup(p.CodeGetProtocol)
	assert.True(t, ok)
	_, ok = proto.Lookup(p.CodeSetOn)
	assert.True(t, ok)
	_, ok = proto.Lookup(p.CodeGetUpdate)
	assert.False(t, ok, "probe set carries no status poll")
}

func TestResolveNewerVersionGetsNewestView(t *testing.T) {
	v9 := resolve(t, p.ProtocolType{Version: p.V(9, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true})
	v3 := resolve(t, p.ProtocolType{Version: p.V(3, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true})
	assert.ElementsMatch(t, v3.Codes(), v9.Codes())
}

func TestSerializeUsesShortIdentifier(t *testing.T) {
	proto := resolve(t, p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true})

	s, err := p.Serialize(proto, p.SetFrequency(200000))
	require.NoError(t, err)
	assert.Equal(t, "!f=200000", s)

	s, err = p.Serialize(proto, p.SetGain(80))
	require.NoError(t, err)
	assert.Equal(t, "!g=80", s)

	s, err = p.Serialize(proto, p.GetFrequency())
	require.NoError(t, err)
	assert.Equal(t, "?f", s)
}
