package device

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	p "github.com/soniccontrol/sonicctl/protocol"
)

// Info is the static identity a device reports during handshake and via the
// info command.
type Info struct {
	Type            p.DeviceType `json:"device_type"`
	ProtocolVersion p.Version    `json:"protocol_version"`
	IsRelease       bool         `json:"is_release"`
	FirmwareInfo    string       `json:"firmware_info,omitempty"`
	BuildHash       string       `json:"build_hash,omitempty"`
	BuildDate       string       `json:"build_date,omitempty"`
}

// Device couples a communicator with the protocol resolved for the connected
// firmware. All command traffic goes through Execute so every validated
// answer feeds the status snapshot.
type Device struct {
	comm  Communicator
	proto *p.Protocol
	bus   *Bus
	log   *log.Entry
	info  Info

	mu     sync.RWMutex
	status Status
}

// New builds a device on an already negotiated communicator and protocol.
// Most callers want Connect instead; New exists for custom transports.
func New(comm Communicator, proto *p.Protocol, bus *Bus, info Info) *Device {
	return &Device{
		comm:  comm,
		proto: proto,
		bus:   bus,
		log:   log.WithFields(log.Fields{"comp": "device", "type": info.Type}),
		info:  info,
	}
}

func (d *Device) Info() Info            { return d.info }
func (d *Device) Protocol() *p.Protocol { return d.proto }
func (d *Device) Bus() *Bus             { return d.bus }
func (d *Device) Connected() bool       { return d.comm.Connected() }

func (d *Device) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

func (d *Device) Disconnect() error { return d.comm.Close() }

// Execute serializes a typed command, sends it and validates the answer.
// Transport failures surface as errors; a non-matching answer comes back
// with Valid unset and no error.
func (d *Device) Execute(ctx context.Context, cmd p.Command) (p.Answer, error) {
	text, err := p.Serialize(d.proto, cmd)
	if err != nil {
		return p.Answer{}, err
	}
	entry, _ := d.proto.Lookup(cmd.Code)
	return d.send(ctx, text, cmd.Code, entry)
}

// ExecuteRaw sends operator-typed command text. The command code is deduced
// by identifier scan so the matching validator can be applied; text that
// matches nothing is sent anyway and returned unvalidated.
func (d *Device) ExecuteRaw(ctx context.Context, text string) (p.Answer, error) {
	var entry *p.CommandEntry
	var code p.CommandCode
	if c, ok := d.proto.DeduceCode(text); ok {
		code = c
		entry, _ = d.proto.Lookup(c)
	}
	return d.send(ctx, text, code, entry)
}

func (d *Device) send(ctx context.Context, text string, code p.CommandCode, entry *p.CommandEntry) (p.Answer, error) {
	raw, err := d.comm.Send(ctx, text)
	if err != nil {
		return p.Answer{}, err
	}
	if entry == nil {
		return p.Answer{Message: raw, Code: code}, nil
	}
	ans := entry.Validator.Validate(raw)
	ans.Code = code
	if ans.Valid {
		d.mu.Lock()
		prevErr := d.status.ErrorCode
		changed := d.status.apply(entry, &ans)
		snapshot := d.status
		d.mu.Unlock()
		if snapshot.ErrorCode != prevErr && snapshot.ErrorCode != p.ErrCodeNone {
			d.log.WithFields(log.Fields{
				"code":  snapshot.ErrorCode,
				"error": p.ErrCodeLabel(snapshot.ErrorCode),
			}).Warn("device reports error")
		}
		if changed {
			d.bus.Publish(TopicStatus, map[string]any{"status": snapshot})
		}
	} else {
		d.log.WithField("answer", ans.Message).Debug("answer failed validation")
	}
	return ans, nil
}

// Convenience wrappers for the handful of commands the rest of the system
// issues directly.

func (d *Device) SetSignalOn(ctx context.Context) (p.Answer, error) {
	return d.Execute(ctx, p.SetOn())
}

func (d *Device) SetSignalOff(ctx context.Context) (p.Answer, error) {
	return d.Execute(ctx, p.SetOff())
}

func (d *Device) SetFrequency(ctx context.Context, hz int64) (p.Answer, error) {
	cmd := p.SetFrequency(hz)
	// Rescale to the wire prefix of the active protocol version.
	if entry, ok := d.proto.Lookup(p.CodeSetFreq); ok && entry.Contract.Command != nil {
		if sp := entry.Contract.Command.SetterParam; sp != nil && sp.Type.Prefix != p.PrefixNone {
			v, err := p.ScaleToDevice(sp.Type, hz, p.PrefixNone)
			if err != nil {
				return p.Answer{}, &p.ValueError{Field: sp.Name, Err: err}
			}
			cmd.Setter = v
		}
	}
	return d.Execute(ctx, cmd)
}

func (d *Device) SetGain(ctx context.Context, percent int64) (p.Answer, error) {
	return d.Execute(ctx, p.SetGain(percent))
}

func (d *Device) GetUpdate(ctx context.Context) (p.Answer, error) {
	return d.Execute(ctx, p.GetUpdate())
}
