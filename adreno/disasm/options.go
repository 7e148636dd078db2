package disasm

import (
	"strings"

	"tlog.app/go/errors"

	"github.com/slowlang/adreno/adreno/codec"
)

type (
	// Debug is the debug flag register.
	Debug uint8

	Options struct {
		GPUID int

		// Level is the indentation level of every line.
		// Levels above 9 are printed as "x".
		Level int

		Debug Debug

		// Assert is installed into the decoder. nil means codec.Abort.
		Assert codec.AssertHandler
	}

	// Status tells why decoding stopped.
	Status int
)

const (
	PrintRaw Debug = 1 << iota
	PrintStats
	Verbose
)

const (
	// StatusEOF: the stream was exhausted.
	StatusEOF Status = iota

	// StatusEnd: end followed by three nops, or chsh.
	StatusEnd

	// StatusAssert: at least one word failed a decoder assertion.
	StatusAssert
)

var debugNames = []struct {
	f    Debug
	name string
}{
	{PrintRaw, "raw"},
	{PrintStats, "stats"},
	{Verbose, "verbose"},
}

// ParseDebug parses a comma separated list of raw, stats and verbose.
func ParseDebug(s string) (d Debug, err error) {
	if s == "" {
		return 0, nil
	}

flags:
	for _, n := range strings.Split(s, ",") {
		n = strings.TrimSpace(n)

		for _, x := range debugNames {
			if x.name == n {
				d |= x.f
				continue flags
			}
		}

		return 0, errors.New("unknown debug flag: %q", n)
	}

	return d, nil
}

func (d Debug) String() string {
	var b []byte

	for _, x := range debugNames {
		if d&x.f == 0 {
			continue
		}

		if len(b) != 0 {
			b = append(b, ',')
		}

		b = append(b, x.name...)
	}

	return string(b)
}

func (s Status) String() string {
	switch s {
	case StatusEOF:
		return "eof"
	case StatusEnd:
		return "end"
	case StatusAssert:
		return "assert"
	default:
		return "unknown"
	}
}
