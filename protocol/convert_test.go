package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveIntRoundTrip(t *testing.T) {
	c := ConverterFor(FieldType{Kind: KindUint32})
	v, err := c.FromString("200000")
	require.NoError(t, err)
	assert.Equal(t, int64(200000), v)
	s, err := c.ToString(v)
	require.NoError(t, err)
	assert.Equal(t, "200000", s)
}

func TestPrimitiveIntRange(t *testing.T) {
	c := ConverterFor(FieldType{Kind: KindUint8})
	_, err := c.FromString("255")
	assert.NoError(t, err)
	_, err = c.FromString("256")
	assert.Error(t, err)
	_, err = c.FromString("-1")
	assert.Error(t, err)
}

func TestPrimitiveBoolWords(t *testing.T) {
	c := ConverterFor(FieldType{Kind: KindBool})
	for _, s := range []string{"on", "ON", "true", "True", "yes", "1"} {
		v, err := c.FromString(s)
		require.NoError(t, err, s)
		assert.Equal(t, true, v, s)
	}
	for _, s := range []string{"off", "false", "no", "0"} {
		v, err := c.FromString(s)
		require.NoError(t, err, s)
		assert.Equal(t, false, v, s)
	}
	_, err := c.FromString("maybe")
	assert.Error(t, err)
}

func TestEnumCanonicalizes(t *testing.T) {
	c := ConverterFor(EnumField(EnumProcedure))
	v, err := c.FromString("RAMP")
	require.NoError(t, err)
	assert.Equal(t, "ramp", v)
	_, err = c.FromString("sweep")
	assert.Error(t, err)

	s, err := c.ToString("Scan")
	require.NoError(t, err)
	assert.Equal(t, "scan", s)
}

func TestVersionConverter(t *testing.T) {
	c := ConverterFor(VersionField())
	v, err := c.FromString("v1.2.3")
	require.NoError(t, err)
	assert.Equal(t, V(1, 2, 3), v)

	v, err = c.FromString("2.0.0")
	require.NoError(t, err)
	assert.Equal(t, V(2, 0, 0), v)

	_, err = c.FromString("1.2")
	assert.Error(t, err)
}

func TestSignalConverter(t *testing.T) {
	c := ConverterFor(SignalField())
	v, err := c.FromString("ON")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	s, err := c.ToString(false)
	require.NoError(t, err)
	assert.Equal(t, "OFF", s)
}

func TestBuildTypeConverter(t *testing.T) {
	c := ConverterFor(BuildTypeField())
	v, err := c.FromString("RELEASE")
	require.NoError(t, err)
	assert.Equal(t, true, v)
	v, err = c.FromString("debug")
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestTimestampSeparators(t *testing.T) {
	want := Timestamp{Hour: 13, Minute: 4, Second: 5, Day: 24, Month: 12, Year: 2025}
	for _, s := range []string{
		"13:04:05 24.12.2025",
		"13.04.05 24-12-2025",
		"13_04_05 24.12.2025",
	} {
		ts, err := ParseTimestamp(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, ts, s)
	}
	_, err := ParseTimestamp("25:00:00 01.01.2025")
	assert.Error(t, err)
	_, err = ParseTimestamp("13:04:05 32.01.2025")
	assert.Error(t, err)
}

func TestTimestampRendersCanonical(t *testing.T) {
	ts := TimestampOf(time.Date(2025, 3, 7, 9, 8, 1, 0, time.UTC))
	assert.Equal(t, "09:08:01 07.03.2025", ts.String())

	back, err := ParseTimestamp(ts.String())
	require.NoError(t, err)
	assert.Equal(t, ts, back)
}

func TestRescale(t *testing.T) {
	v, err := Rescale(int64(200000), PrefixNone, PrefixHecto)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), v)

	v, err = Rescale(int64(2000), PrefixHecto, PrefixNone)
	require.NoError(t, err)
	assert.Equal(t, int64(200000), v)

	// Non-integer results become floats.
	v, err = Rescale(int64(1234), PrefixNone, PrefixKilo)
	require.NoError(t, err)
	assert.Equal(t, 1.234, v)
}

func TestRescaleIdentity(t *testing.T) {
	for _, n := range []int64{0, 1, 999, 200000, 10_000_000} {
		up, err := Rescale(n, PrefixNone, PrefixMilli)
		require.NoError(t, err)
		back, err := Rescale(up, PrefixMilli, PrefixNone)
		require.NoError(t, err)
		assert.Equal(t, n, back)
	}
}

func TestScaleToDeviceRejectsFractional(t *testing.T) {
	ft := FieldType{Kind: KindUint16, Prefix: PrefixHecto}
	v, err := ScaleToDevice(ft, int64(200000), PrefixNone)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), v)

	_, err = ScaleToDevice(ft, int64(200050), PrefixNone)
	assert.Error(t, err)
}
