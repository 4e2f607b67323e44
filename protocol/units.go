package protocol

import (
	"fmt"
	"math"
)

// SIUnit is the physical unit of a field value as reported by the device.
type SIUnit uint8

const (
	UnitNone SIUnit = iota
	UnitMeter
	UnitSecond
	UnitHertz
	UnitCelsius
	UnitKelvin
	UnitVolt
	UnitAmpere
	UnitDegree
	UnitPercent
)

var unitSymbols = map[SIUnit]string{
	UnitNone:    "",
	UnitMeter:   "m",
	UnitSecond:  "s",
	UnitHertz:   "Hz",
	UnitCelsius: "°C",
	UnitKelvin:  "K",
	UnitVolt:    "V",
	UnitAmpere:  "A",
	UnitDegree:  "°",
	UnitPercent: "%",
}

func (u SIUnit) Symbol() string { return unitSymbols[u] }

// SIPrefix is a decimal scaling prefix. The numeric value of a prefix is its
// base-10 exponent, so converting between prefixes is a single power of ten.
type SIPrefix int8

const (
	PrefixNano  SIPrefix = -9
	PrefixMicro SIPrefix = -6
	PrefixMilli SIPrefix = -3
	PrefixCenti SIPrefix = -2
	PrefixDeci  SIPrefix = -1
	PrefixNone  SIPrefix = 0
	PrefixDeca  SIPrefix = 1
	PrefixHecto SIPrefix = 2
	PrefixKilo  SIPrefix = 3
	PrefixMega  SIPrefix = 6
	PrefixGiga  SIPrefix = 9
)

var prefixSymbols = map[SIPrefix]string{
	PrefixNano:  "n",
	PrefixMicro: "u",
	PrefixMilli: "m",
	PrefixCenti: "c",
	PrefixDeci:  "d",
	PrefixNone:  "",
	PrefixDeca:  "da",
	PrefixHecto: "h",
	PrefixKilo:  "k",
	PrefixMega:  "M",
	PrefixGiga:  "G",
}

func (p SIPrefix) Symbol() string { return prefixSymbols[p] }

func (p SIPrefix) Exponent() int { return int(p) }

// Rescale converts v from prefix p to prefix q, i.e. scales by 10^(p-q).
// Integer inputs stay integers when the result is whole, otherwise a float64
// is returned. Scaling down divides by an exact power of ten instead of
// multiplying by its inexact reciprocal.
func Rescale(v any, p, q SIPrefix) (any, error) {
	if p == q {
		return v, nil
	}
	exp := int(p) - int(q)
	scale := func(f float64) float64 {
		if exp >= 0 {
			return f * math.Pow10(exp)
		}
		return f / math.Pow10(-exp)
	}
	switch n := v.(type) {
	case int64:
		f := scale(float64(n))
		if f == math.Trunc(f) && math.Abs(f) < math.MaxInt64 {
			return int64(f), nil
		}
		return f, nil
	case float64:
		return scale(n), nil
	default:
		return nil, fmt.Errorf("cannot rescale %T value", v)
	}
}
