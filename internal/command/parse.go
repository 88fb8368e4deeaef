// Package command parses the textual control protocol and applies commands
// to the LED controller.
package command

import (
	"bytes"
	"strconv"
	"strings"
)

// Kind identifies a parsed command.
type Kind int

// Command kinds.
const (
	Unknown Kind = iota
	Start
	Stop
	SetFrequency
	On
	Off
)

var kindNames = [...]string{
	Unknown:      "unknown",
	Start:        "start",
	Stop:         "stop",
	SetFrequency: "freq",
	On:           "on",
	Off:          "off",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[Unknown]
	}
	return kindNames[k]
}

const freqPrefix = "freq "

// Command is one parsed instruction.
type Command struct {
	Kind        Kind
	FrequencyHz uint32 // SetFrequency only
	Text        string // trimmed command text
	Reason      string // why the command is Unknown
}

// Parse classifies buf. Trailing NUL bytes and one trailing line ending are
// dropped; matching is otherwise exact and case-sensitive.
func Parse(buf []byte) Command {
	text := string(trim(buf))

	switch {
	case text == "":
		return Command{Kind: Unknown, Text: text, Reason: "empty command"}
	case text == "start":
		return Command{Kind: Start, Text: text}
	case text == "stop":
		return Command{Kind: Stop, Text: text}
	case strings.HasPrefix(text, freqPrefix):
		return parseFrequency(text)
	case text == "on":
		return Command{Kind: On, Text: text}
	case text == "off":
		return Command{Kind: Off, Text: text}
	default:
		return Command{Kind: Unknown, Text: text, Reason: "unknown command"}
	}
}

func parseFrequency(text string) Command {
	arg := text[len(freqPrefix):]
	hz, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return Command{Kind: Unknown, Text: text, Reason: "invalid frequency " + strconv.Quote(arg)}
	}
	if hz == 0 {
		return Command{Kind: Unknown, Text: text, Reason: "frequency must be at least 1 Hz"}
	}
	return Command{Kind: SetFrequency, FrequencyHz: uint32(hz), Text: text}
}

func trim(buf []byte) []byte {
	buf = bytes.TrimRight(buf, "\x00")
	if b, ok := bytes.CutSuffix(buf, []byte("\n")); ok {
		buf = b
		buf, _ = bytes.CutSuffix(buf, []byte("\r"))
	}
	return buf
}
