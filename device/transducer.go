package device

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	p "github.com/soniccontrol/sonicctl/protocol"
)

// TransducerTriple holds the calibration values of one transducer slot.
type TransducerTriple struct {
	ATF int64 `json:"atf"`
	ATK int64 `json:"atk"`
	ATT int64 `json:"att"`
}

// TransducerConfig is a named calibration record, stored as a plain JSON
// file. Slots are ordered; slot i configures transducer index i+1.
type TransducerConfig struct {
	Name       string             `json:"name"`
	Triples    []TransducerTriple `json:"triples"`
	InitScript string             `json:"init_script,omitempty"`
}

const maxTransducerSlots = 4

func (c *TransducerConfig) validate() error {
	if c.Name == "" {
		return fmt.Errorf("transducer config has no name")
	}
	if len(c.Triples) > maxTransducerSlots {
		return fmt.Errorf("transducer config %q has %d slots, at most %d supported",
			c.Name, len(c.Triples), maxTransducerSlots)
	}
	return nil
}

// LoadTransducerConfig reads a calibration record from path.
func LoadTransducerConfig(path string) (*TransducerConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read transducer config: %w", err)
	}
	var cfg TransducerConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("invalid transducer config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the record to path, creating or truncating the file.
func (c *TransducerConfig) Save(path string) error {
	if err := c.validate(); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}

// Apply writes every configured slot to the device. Stops at the first
// rejected value so a partial record does not go live.
func (c *TransducerConfig) Apply(ctx context.Context, dev *Device) error {
	for i, tr := range c.Triples {
		idx := int64(i + 1)
		for _, cmd := range []p.Command{
			p.SetAtf(idx, tr.ATF),
			p.SetAtk(idx, tr.ATK),
			p.SetAtt(idx, tr.ATT),
		} {
			if _, err := dev.Execute(ctx, cmd); err != nil {
				return fmt.Errorf("transducer %d: %w", idx, err)
			}
		}
	}
	log.WithFields(log.Fields{"config": c.Name, "slots": len(c.Triples)}).
		Info("transducer calibration applied")
	return nil
}
