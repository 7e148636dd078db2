// Package adreno loads shader binaries and runs them through the disassembler.
package adreno

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"os"
	"strconv"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/adreno/adreno/codec"
	"github.com/slowlang/adreno/adreno/disasm"
)

type (
	// Format of a shader file.
	Format int
)

const (
	// Binary is a stream of little-endian dwords.
	Binary Format = iota

	// Hex is whitespace or comma separated hex numbers.
	// 8 digit tokens are dwords, 16 digit tokens are whole instructions.
	// Everything after '#' or "//" on a line is ignored.
	Hex
)

// ReadFile reads a shader file as dwords.
func ReadFile(ctx context.Context, name string, f Format) (dw []uint32, err error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(data), "name", name, "hex", f == Hex)

	return Parse(data, f)
}

// Parse decodes file contents into dwords.
func Parse(data []byte, f Format) ([]uint32, error) {
	switch f {
	case Binary:
		return ParseBinary(data)
	case Hex:
		return ParseHex(bytes.NewReader(data))
	default:
		return nil, errors.New("unsupported format: %d", f)
	}
}

// ParseBinary splits data into little-endian dwords.
func ParseBinary(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, errors.New("size is not a multiple of 4: %d", len(data))
	}

	dw := make([]uint32, len(data)/4)

	for i := range dw {
		dw[i] = binary.LittleEndian.Uint32(data[4*i:])
	}

	return dw, nil
}

// ParseHex reads hex text.
func ParseHex(r io.Reader) (dw []uint32, err error) {
	s := bufio.NewScanner(r)

	for line := 1; s.Scan(); line++ {
		l := s.Text()

		if p := strings.Index(l, "//"); p >= 0 {
			l = l[:p]
		}

		if p := strings.IndexByte(l, '#'); p >= 0 {
			l = l[:p]
		}

		for _, tok := range strings.FieldsFunc(l, isSep) {
			tok = strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X")

			v, err := strconv.ParseUint(tok, 16, 64)
			if err != nil {
				return nil, errors.Wrap(err, "line %d", line)
			}

			switch {
			case len(tok) <= 8:
				dw = append(dw, uint32(v))
			case len(tok) <= 16:
				lo, hi := codec.Split(v)
				dw = append(dw, lo, hi)
			default:
				return nil, errors.New("line %d: token too long: %q", line, tok)
			}
		}
	}

	if err = s.Err(); err != nil {
		return nil, errors.Wrap(err, "scan")
	}

	return dw, nil
}

// AppendHex appends words in the form ParseHex reads, one instruction per line.
func AppendHex(b []byte, dw []uint32) []byte {
	for i := 0; i+1 < len(dw); i += 2 {
		b = append(b, "0x"...)

		x := strconv.AppendUint(nil, codec.Word(dw[i], dw[i+1]), 16)
		for range 16 - len(x) {
			b = append(b, '0')
		}

		b = append(b, x...)
		b = append(b, '\n')
	}

	return b
}

// DisasmFile disassembles a shader file into w.
func DisasmFile(ctx context.Context, w io.Writer, name string, f Format, opts disasm.Options, st *disasm.Stats) (status disasm.Status, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "disasm_file", "name", name)
	defer tr.Finish("err", &err)

	dw, err := ReadFile(ctx, name, f)
	if err != nil {
		return 0, err
	}

	if st == nil {
		st = new(disasm.Stats)
	}

	status, err = disasm.DisasmStat(ctx, w, dw, opts, st)
	if err != nil {
		return status, errors.Wrap(err, "disasm %v", name)
	}

	return status, nil
}

func isSep(r rune) bool {
	return r == ',' || r == ' ' || r == '\t' || r == '\r'
}
