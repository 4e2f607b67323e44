package device

import (
	"context"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	p "github.com/soniccontrol/sonicctl/protocol"
	"github.com/soniccontrol/sonicctl/protocol/registry"
)

// Config describes how to reach a device and how patient to be with it.
type Config struct {
	Link       string
	Baud       int           // modern protocol, default 9600
	LegacyBaud int           // legacy fallback, default 115200
	BootWait   time.Duration // legacy boot pause, default LegacyBootWait
	SkipLegacy bool          // don't fall back to the legacy probe
	Options    []Option      // communicator tuning
}

func (c *Config) defaults() {
	if c.Baud == 0 {
		c.Baud = 9600
	}
	if c.LegacyBaud == 0 {
		c.LegacyBaud = 115200
	}
	if c.BootWait == 0 {
		c.BootWait = LegacyBootWait
	}
}

var handshakeValidator = mustHandshakeValidator()

func mustHandshakeValidator() *p.Validator {
	v, err := p.NewValidator(&p.AnswerDef{
		Separator: "#",
		Fields: []p.AnswerFieldDef{
			{Name: p.FieldDeviceType, Type: p.EnumField(p.EnumDeviceType)},
			{Name: p.FieldProtocolVersion, Type: p.VersionField()},
			{Name: p.FieldIsRelease, Type: p.BuildTypeField()},
		},
	})
	if err != nil {
		panic(err)
	}
	return v
}

// ParseHandshake interprets the answer to the protocol handshake,
// "<device_type>#<version>#<build>".
func ParseHandshake(raw string) (p.ProtocolType, error) {
	ans := handshakeValidator.Validate(raw)
	if !ans.Valid {
		return p.ProtocolType{}, &HandshakeError{Raw: raw}
	}
	dt, _ := ans.String(p.FieldDeviceType)
	rel, _ := ans.Bool(p.FieldIsRelease)
	ver, _ := ans.Value(p.FieldProtocolVersion)
	return p.ProtocolType{
		Device:    p.DeviceType(dt),
		Version:   ver.(p.Version),
		IsRelease: rel,
	}, nil
}

// Connect opens the link and negotiates the protocol: flush, ask for the
// handshake, resolve the reported protocol. A device that does not answer is
// retried over the legacy line protocol; one that answers garbage is kept
// connected as an unknown device with the probe command set.
func Connect(ctx context.Context, cfg Config) (*Device, error) {
	cfg.defaults()
	bus := NewBus()

	conn, err := Open(cfg.Link, cfg.Baud)
	if err != nil {
		return nil, err
	}
	comm := NewSerial(conn, bus, cfg.Options...)
	if err := sleepCtx(ctx, 200*time.Millisecond); err != nil {
		comm.Close()
		return nil, err
	}

	raw, err := comm.Send(ctx, "?protocol")
	if err == nil {
		pt, perr := ParseHandshake(raw)
		if perr != nil {
			log.WithField("answer", raw).Warn("handshake not understood, treating device as unknown")
			pt = p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceUnknown, IsRelease: true}
		}
		proto := registry.ResolveOrProbe(pt)
		dev := New(comm, proto, bus, Info{
			Type:            pt.Device,
			ProtocolVersion: pt.Version,
			IsRelease:       pt.IsRelease,
		})
		dev.fetchInfo(ctx)
		return dev, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	log.WithError(err).Info("no handshake answer, trying legacy protocol")
	if cfg.SkipLegacy {
		return nil, err
	}
	return connectLegacy(ctx, cfg, bus)
}

func connectLegacy(ctx context.Context, cfg Config, bus *Bus) (*Device, error) {
	conn, err := Open(cfg.Link, cfg.LegacyBaud)
	if err != nil {
		return nil, err
	}
	return ConnectLegacy(ctx, conn, cfg, bus)
}

// ConnectLegacy drives the legacy session handshake on an already open
// stream. Exposed separately so transports other than serial can be probed.
func ConnectLegacy(ctx context.Context, conn io.ReadWriteCloser, cfg Config, bus *Bus) (*Device, error) {
	cfg.defaults()
	if bus == nil {
		bus = NewBus()
	}
	comm, err := NewLegacy(ctx, conn, bus, cfg.BootWait, cfg.Options...)
	if err != nil {
		return nil, err
	}
	raw, err := comm.Send(ctx, "?info")
	if err != nil {
		comm.Close()
		return nil, fmt.Errorf("legacy probe failed: %w", err)
	}
	pt := p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceCrystal, IsRelease: true}
	proto, err := registry.Resolve(pt)
	if err != nil {
		comm.Close()
		return nil, err
	}
	return New(comm, proto, bus, Info{
		Type:            pt.Device,
		ProtocolVersion: pt.Version,
		IsRelease:       true,
		FirmwareInfo:    raw,
	}), nil
}

// fetchInfo fills in firmware identity, best effort.
func (d *Device) fetchInfo(ctx context.Context) {
	ans, err := d.Execute(ctx, p.GetInfo())
	if err != nil || !ans.Valid {
		return
	}
	if s, ok := ans.String(p.FieldFirmwareInfo); ok {
		d.info.FirmwareInfo = s
	}
	if s, ok := ans.String(p.FieldBuildHash); ok {
		d.info.BuildHash = s
	}
	if s, ok := ans.String(p.FieldBuildDate); ok {
		d.info.BuildDate = s
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
