package protocol

import (
	"sort"
	"strings"
)

// CommandEntry is one command of a materialized protocol with its compiled
// answer matcher.
type CommandEntry struct {
	Contract  *CommandContract
	Validator *Validator
}

// Protocol is the full command set a concrete device speaks: contracts merged
// across versions, constants resolved, validators compiled.
type Protocol struct {
	Type     ProtocolType
	Consts   Constants
	Commands map[CommandCode]*CommandEntry
}

func (p *Protocol) Lookup(code CommandCode) (*CommandEntry, bool) {
	e, ok := p.Commands[code]
	return e, ok
}

// Codes returns the command codes of the protocol in ascending order.
func (p *Protocol) Codes() []CommandCode {
	codes := make([]CommandCode, 0, len(p.Commands))
	for c := range p.Commands {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// DeduceCode scans request text against every contract's identifiers and
// returns the code of the longest match. Used to classify raw command strings
// and to tag legacy answers where the wire carries no identity at all.
func (p *Protocol) DeduceCode(text string) (CommandCode, bool) {
	text = strings.TrimSpace(text)
	var best CommandCode
	bestLen := -1
	for code, e := range p.Commands {
		if e.Contract.Command == nil {
			continue
		}
		for _, ident := range e.Contract.Command.Identifiers {
			if len(ident) > bestLen && identMatches(text, ident) {
				best, bestLen = code, len(ident)
			}
		}
	}
	return best, bestLen >= 0
}

func identMatches(text, ident string) bool {
	if !strings.HasPrefix(strings.ToLower(text), strings.ToLower(ident)) {
		return false
	}
	rest := text[len(ident):]
	if rest == "" {
		return true
	}
	// Identifier must end at an argument boundary, not mid-word.
	c := rest[0]
	return c == '=' || (c >= '0' && c <= '9')
}
