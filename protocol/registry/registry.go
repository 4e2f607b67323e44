// Package registry holds the versioned protocol description and materializes
// concrete protocols from it. Versions form a chain; each layer adds,
// overrides or removes contracts relative to the one before it, and a device
// always gets the accumulated view up to its reported version.
package registry

import (
	"fmt"
	"strings"

	p "github.com/soniccontrol/sonicctl/protocol"
)

// contractSet is one layer's contribution for a device type. A nil contract
// removes the code from the accumulated view.
type contractSet map[p.CommandCode]*p.CommandContract

func (cs contractSet) add(list []*p.CommandContract) {
	for _, c := range list {
		cs[c.Code] = c
	}
}

func (cs contractSet) remove(code p.CommandCode) {
	cs[code] = nil
}

type layer struct {
	version   p.Version
	devices   []p.DeviceType
	consts    func(p.DeviceType) p.Constants
	contracts func(p.DeviceType) contractSet
}

func (l layer) supports(dt p.DeviceType) bool {
	for _, d := range l.devices {
		if d == dt {
			return true
		}
	}
	return false
}

// Oldest to newest. Resolution walks the slice in order.
var layers = []layer{layerV1, layerV2, layerV3}

// Versions lists the declared protocol versions, oldest first.
func Versions() []p.Version {
	out := make([]p.Version, len(layers))
	for i, l := range layers {
		out[i] = l.version
	}
	return out
}

// Latest returns the newest version that supports the device type.
func Latest(dt p.DeviceType) (p.Version, bool) {
	for i := len(layers) - 1; i >= 0; i-- {
		if layers[i].supports(dt) {
			return layers[i].version, true
		}
	}
	return p.Version{}, false
}

// Resolve materializes the protocol for a concrete device: layers up to the
// requested version are merged oldest first, constants are substituted into
// field limits, debug commands are dropped for release builds and one
// validator is compiled per command. A version newer than the newest layer
// resolves to the newest accumulated view.
func Resolve(pt p.ProtocolType) (*p.Protocol, error) {
	consts := p.DefaultConstants()
	merged := contractSet{}
	applied := 0
	for _, l := range layers {
		if !l.supports(pt.Device) || pt.Version.LT(l.version) {
			continue
		}
		applied++
		if l.consts != nil {
			consts.Merge(l.consts(pt.Device))
		}
		for code, c := range l.contracts(pt.Device) {
			if c == nil {
				delete(merged, code)
			} else {
				merged[code] = c
			}
		}
	}
	if applied == 0 {
		return nil, fmt.Errorf("no protocol layer matches %s", pt)
	}

	proto := &p.Protocol{Type: pt, Consts: consts, Commands: map[p.CommandCode]*p.CommandEntry{}}
	for code, c := range merged {
		if pt.IsRelease && !c.IsRelease {
			continue
		}
		if err := resolveContract(c, consts); err != nil {
			return nil, fmt.Errorf("contract %s: %w", code, err)
		}
		v, err := p.NewValidator(c.Answer, afterFields(code)...)
		if err != nil {
			return nil, fmt.Errorf("contract %s: %w", code, err)
		}
		proto.Commands[code] = &p.CommandEntry{Contract: c, Validator: v}
	}
	if err := checkProtocol(proto); err != nil {
		return nil, err
	}
	return proto, nil
}

// ResolveOrProbe resolves pt, falling back to the fixed probe command set
// when the device type or version is not covered by any layer.
func ResolveOrProbe(pt p.ProtocolType) *p.Protocol {
	proto, err := Resolve(pt)
	if err == nil {
		return proto
	}
	probe, _ := Resolve(p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceUnknown, IsRelease: true})
	probe.Type = pt
	return probe
}

func resolveContract(c *p.CommandContract, consts p.Constants) error {
	if c.Command != nil {
		if err := resolveParam(c.Command.IndexParam, consts); err != nil {
			return err
		}
		if err := resolveParam(c.Command.SetterParam, consts); err != nil {
			return err
		}
	}
	if c.Answer == nil {
		return fmt.Errorf("missing answer definition")
	}
	for i := range c.Answer.Fields {
		if err := resolveType(&c.Answer.Fields[i].Type, consts); err != nil {
			return err
		}
	}
	return nil
}

func resolveParam(d *p.CommandParamDef, consts p.Constants) error {
	if d == nil {
		return nil
	}
	return resolveType(&d.Type, consts)
}

func resolveType(ft *p.FieldType, consts p.Constants) error {
	for _, l := range []*p.Limit{ft.Min, ft.Max} {
		if l == nil || l.Resolved() {
			continue
		}
		v, ok := consts[l.Const]
		if !ok {
			return fmt.Errorf("unknown constant %q", l.Const)
		}
		l.Value = v
		l.Const = ""
	}
	if ft.Min != nil && ft.Max != nil && ft.Min.Value > ft.Max.Value {
		return fmt.Errorf("empty range [%v, %v]", ft.Min.Value, ft.Max.Value)
	}
	return nil
}

// checkProtocol enforces the structural guarantees the rest of the system
// relies on: no identifier maps to two commands, and every real device
// protocol can at least identify itself.
func checkProtocol(proto *p.Protocol) error {
	seen := map[string]p.CommandCode{}
	for code, e := range proto.Commands {
		if e.Contract.Command == nil {
			continue
		}
		for _, ident := range e.Contract.Command.Identifiers {
			key := strings.ToLower(ident)
			if prev, dup := seen[key]; dup {
				return fmt.Errorf("identifier %q claimed by both %s and %s", ident, prev, code)
			}
			seen[key] = code
		}
	}
	if _, ok := proto.Commands[p.CodeGetProtocol]; !ok {
		return fmt.Errorf("protocol %s lacks the handshake command", proto.Type)
	}
	if proto.Type.Device != p.DeviceUnknown {
		if _, ok := proto.Commands[p.CodeGetInfo]; !ok {
			return fmt.Errorf("protocol %s lacks the info command", proto.Type)
		}
	}
	return nil
}

func afterFields(code p.CommandCode) []p.AfterField {
	if code != p.CodeGetInfo {
		return nil
	}
	return []p.AfterField{{
		Name: p.FieldFirmwareInfo,
		Compute: func(fields map[p.FieldName]any) (any, error) {
			parts := make([]string, 0, 4)
			for _, name := range []p.FieldName{p.FieldDeviceType, p.FieldHardwareVersion, p.FieldFirmwareVersion, p.FieldBuildHash, p.FieldBuildDate} {
				if v, ok := fields[name]; ok {
					parts = append(parts, fmt.Sprint(v))
				}
			}
			return strings.Join(parts, " "), nil
		},
	}}
}
