// Package common keeps enumerations shared by configuration and the
// conversion code so neither has to import the other.
package common

import (
	"errors"
	"fmt"
	"strings"
)

// OutputFmt selects the serialization of compiled stories.
type OutputFmt int

const (
	OutputFmtYaml OutputFmt = iota
	OutputFmtJson
	OutputFmtIon
)

var ErrInvalidOutputFmt = errors.New("not a valid OutputFmt")

var outputFmtNames = []string{
	OutputFmtYaml: "yaml",
	OutputFmtJson: "json",
	OutputFmtIon:  "ion",
}

// OutputFmtNames returns a list of possible string values of OutputFmt.
func OutputFmtNames() []string {
	return append([]string(nil), outputFmtNames...)
}

func (o OutputFmt) IsValid() bool {
	return o >= 0 && int(o) < len(outputFmtNames)
}

func (o OutputFmt) String() string {
	if o.IsValid() {
		return outputFmtNames[o]
	}
	return fmt.Sprintf("OutputFmt(%d)", int(o))
}

// ParseOutputFmt accepts a format name in any case.
func ParseOutputFmt(name string) (OutputFmt, error) {
	for i, s := range outputFmtNames {
		if strings.EqualFold(s, name) {
			return OutputFmt(i), nil
		}
	}
	return 0, fmt.Errorf("%s is %w, try [%s]", name, ErrInvalidOutputFmt, strings.Join(outputFmtNames, ", "))
}

func (o OutputFmt) MarshalText() ([]byte, error) {
	if !o.IsValid() {
		return nil, fmt.Errorf("%d is %w", int(o), ErrInvalidOutputFmt)
	}
	return []byte(o.String()), nil
}

func (o *OutputFmt) UnmarshalText(text []byte) error {
	v, err := ParseOutputFmt(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtYaml:
		return ".yaml"
	case OutputFmtJson:
		return ".json"
	case OutputFmtIon:
		return ".ion"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}
