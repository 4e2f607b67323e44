// Package script implements the small automation language used to run
// unattended test sequences against a device: one statement per line,
// loops, timed holds and raw protocol commands.
package script

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Op uint8

const (
	OpOn Op = iota
	OpOff
	OpFrequency
	OpGain
	OpHold
	OpRamp
	OpLoopStart
	OpLoopEnd
	OpRaw
)

// Step is one parsed statement.
type Step struct {
	Line  int
	Op    Op
	Value int64         // frequency, gain or loop count
	Dur   time.Duration // hold
	Ramp  *RampStep
	Text  string // raw command text
}

// RampStep carries the inline ramp arguments.
type RampStep struct {
	FStart, FStop, FStep int64
	HoldOn, HoldOff      time.Duration
}

type Script struct {
	Steps []Step
}

// ParseError points at the offending line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func errf(line int, format string, args ...any) error {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Parse compiles script text. Loop nesting is checked here so the runner
// never sees an unbalanced script.
func Parse(text string) (*Script, error) {
	var s Script
	depth := 0
	for i, raw := range strings.Split(text, "\n") {
		line := i + 1
		t := strings.TrimSpace(raw)
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		fields := strings.Fields(t)
		keyword := strings.ToLower(fields[0])
		args := fields[1:]
		switch keyword {
		case "on":
			s.Steps = append(s.Steps, Step{Line: line, Op: OpOn})
		case "off":
			s.Steps = append(s.Steps, Step{Line: line, Op: OpOff})
		case "frequency", "freq":
			v, err := intArg(args, 0)
			if err != nil {
				return nil, errf(line, "frequency needs a value: %v", err)
			}
			s.Steps = append(s.Steps, Step{Line: line, Op: OpFrequency, Value: v})
		case "gain":
			v, err := intArg(args, 0)
			if err != nil {
				return nil, errf(line, "gain needs a value: %v", err)
			}
			s.Steps = append(s.Steps, Step{Line: line, Op: OpGain, Value: v})
		case "hold":
			if len(args) != 1 {
				return nil, errf(line, "hold needs a duration")
			}
			d, err := parseDuration(args[0])
			if err != nil {
				return nil, errf(line, "%v", err)
			}
			s.Steps = append(s.Steps, Step{Line: line, Op: OpHold, Dur: d})
		case "ramp":
			if len(args) != 5 {
				return nil, errf(line, "ramp needs f_start f_stop f_step hold_on hold_off")
			}
			var nums [3]int64
			for j := 0; j < 3; j++ {
				v, err := strconv.ParseInt(args[j], 10, 64)
				if err != nil {
					return nil, errf(line, "bad frequency %q", args[j])
				}
				nums[j] = v
			}
			hon, err := parseDuration(args[3])
			if err != nil {
				return nil, errf(line, "%v", err)
			}
			hoff, err := parseDuration(args[4])
			if err != nil {
				return nil, errf(line, "%v", err)
			}
			s.Steps = append(s.Steps, Step{Line: line, Op: OpRamp, Ramp: &RampStep{
				FStart: nums[0], FStop: nums[1], FStep: nums[2], HoldOn: hon, HoldOff: hoff,
			}})
		case "startloop":
			count := int64(0) // 0 = forever
			if len(args) > 0 {
				v, err := strconv.ParseInt(args[0], 10, 32)
				if err != nil || v < 0 {
					return nil, errf(line, "bad loop count %q", args[0])
				}
				count = v
			}
			depth++
			s.Steps = append(s.Steps, Step{Line: line, Op: OpLoopStart, Value: count})
		case "endloop":
			if depth == 0 {
				return nil, errf(line, "endloop without startloop")
			}
			depth--
			s.Steps = append(s.Steps, Step{Line: line, Op: OpLoopEnd})
		default:
			if strings.HasPrefix(t, "!") || strings.HasPrefix(t, "?") {
				s.Steps = append(s.Steps, Step{Line: line, Op: OpRaw, Text: t})
				continue
			}
			return nil, errf(line, "unknown statement %q", keyword)
		}
	}
	if depth != 0 {
		return nil, errf(len(strings.Split(text, "\n")), "unclosed loop")
	}
	return &s, nil
}

func intArg(args []string, i int) (int64, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("missing argument")
	}
	return strconv.ParseInt(args[i], 10, 64)
}

// parseDuration accepts Go durations ("500ms", "5s") and bare numbers, which
// are milliseconds.
func parseDuration(s string) (time.Duration, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative duration %q", s)
		}
		return time.Duration(n) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("bad duration %q", s)
	}
	return d, nil
}
