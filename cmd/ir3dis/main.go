package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"runtime"

	"github.com/davecgh/go-spew/spew"
	"github.com/nikandfor/hacked/hfmt"
	"github.com/pelletier/go-toml"
	"golang.org/x/sync/errgroup"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/adreno/adreno"
	"github.com/slowlang/adreno/adreno/codec"
	"github.com/slowlang/adreno/adreno/disasm"
	"github.com/slowlang/adreno/adreno/ir"
)

type (
	// Config is the optional config file. Flags override it.
	Config struct {
		GPU   int    `toml:"gpu"`
		Level int    `toml:"level"`
		Debug string `toml:"debug"`
		Jobs  int    `toml:"jobs"`
		Hex   bool   `toml:"hex"`
		Try   bool   `toml:"try"`
	}

	fileFunc func(ctx context.Context, b []byte, name string, dw []uint32) ([]byte, error)
)

const defaultGPU = 630

var logFile *os.File

func main() {
	disCmd := &cli.Command{
		Name:        "dis,disasm",
		Description: "disassemble shader files",
		Action:      disAct,
		Args:        cli.Args{},
		Flags:       flags(),
	}

	statsCmd := &cli.Command{
		Name:        "stats",
		Description: "print shaderdb statistics only",
		Action:      statsAct,
		Args:        cli.Args{},
		Flags:       flags(),
	}

	dumpCmd := &cli.Command{
		Name:        "dump",
		Description: "dump decoded instruction structures",
		Action:      dumpAct,
		Args:        cli.Args{},
		Flags:       flags(),
	}

	irCmd := &cli.Command{
		Name:        "ir",
		Description: "print the control flow graph and instructions",
		Action:      irAct,
		Args:        cli.Args{},
		Flags:       flags(),
	}

	roundtripCmd := &cli.Command{
		Name:        "roundtrip",
		Description: "check every word encodes back to itself",
		Action:      roundtripAct,
		Args:        cli.Args{},
		Flags: append(flags(),
			cli.NewFlag("ir", false, "also go through the ir and compare emitted words"),
		),
	}

	app := &cli.Command{
		Name:        "ir3dis",
		Description: "ir3dis is a disassembler for Adreno a3xx-a6xx shaders",
		Before:      before,
		After:       after,
		Flags: []*cli.Flag{
			cli.NewFlag("log", "stderr", "log output file"),
			cli.NewFlag("verbosity,v", "", "logger verbosity topics"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			disCmd,
			statsCmd,
			dumpCmd,
			irCmd,
			roundtripCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func flags() []*cli.Flag {
	return []*cli.Flag{
		cli.NewFlag("config,c", "", "toml config file"),
		cli.NewFlag("gpu,g", 0, "gpu id (default 630)"),
		cli.NewFlag("level,l", 0, "indentation level"),
		cli.NewFlag("raw", false, "print raw words and cycle counter"),
		cli.NewFlag("stats", false, "print statistics after the listing"),
		cli.NewFlag("verbose", false, "print padding fields"),
		cli.NewFlag("try", false, "keep going after decoder assertions"),
		cli.NewFlag("hex", false, "files are hex text"),
		cli.NewFlag("jobs,j", 0, "files processed in parallel (default number of cpus)"),
	}
}

func before(c *cli.Command) error {
	err := openLog(c.String("log"))
	if err != nil {
		return err
	}

	tlog.SetVerbosity(c.String("verbosity"))

	return nil
}

func after(c *cli.Command) error {
	return closeLog()
}

// openLog points the default logger to stderr or to the named file.
func openLog(name string) error {
	var w io.Writer = os.Stderr

	if name != "" && name != "stderr" {
		f, err := os.Create(name)
		if err != nil {
			return errors.Wrap(err, "open log file")
		}

		w = f
		logFile = f
	}

	tlog.DefaultLogger = tlog.New(tlog.NewConsoleWriter(w, tlog.LstdFlags))

	return nil
}

func closeLog() error {
	if logFile == nil {
		return nil
	}

	tlog.DefaultLogger = tlog.New(tlog.NewConsoleWriter(os.Stderr, tlog.LstdFlags))

	err := logFile.Close()
	logFile = nil
	if err != nil {
		return errors.Wrap(err, "close log file")
	}

	return nil
}

func loadConfig(c *cli.Command) (cfg Config, err error) {
	if n := c.String("config"); n != "" {
		data, err := os.ReadFile(n)
		if err != nil {
			return cfg, errors.Wrap(err, "read config")
		}

		err = toml.Unmarshal(data, &cfg)
		if err != nil {
			return cfg, errors.Wrap(err, "parse config %v", n)
		}
	}

	if v := c.Int("gpu"); v != 0 {
		cfg.GPU = v
	}

	if v := c.Int("level"); v != 0 {
		cfg.Level = v
	}

	if v := c.Int("jobs"); v != 0 {
		cfg.Jobs = v
	}

	cfg.Hex = cfg.Hex || c.Bool("hex")
	cfg.Try = cfg.Try || c.Bool("try")

	if cfg.GPU == 0 {
		cfg.GPU = defaultGPU
	}

	if cfg.Jobs <= 0 {
		cfg.Jobs = runtime.GOMAXPROCS(0)
	}

	return cfg, nil
}

func options(c *cli.Command, cfg Config) (opts disasm.Options, err error) {
	d, err := disasm.ParseDebug(cfg.Debug)
	if err != nil {
		return opts, errors.Wrap(err, "config debug")
	}

	for _, x := range []struct {
		flag string
		d    disasm.Debug
	}{
		{"raw", disasm.PrintRaw},
		{"stats", disasm.PrintStats},
		{"verbose", disasm.Verbose},
	} {
		if c.Bool(x.flag) {
			d |= x.d
		}
	}

	opts = disasm.Options{
		GPUID: cfg.GPU,
		Level: cfg.Level,
		Debug: d,
	}

	if cfg.Try {
		opts.Assert = codec.Report
	}

	return opts, nil
}

// run processes files in parallel and writes the results to stdout in order.
func run(c *cli.Command, cfg Config, f fileFunc) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	format := adreno.Binary
	if cfg.Hex {
		format = adreno.Hex
	}

	out := make([][]byte, len(c.Args))

	var g errgroup.Group
	g.SetLimit(cfg.Jobs)

	for n, name := range c.Args {
		g.Go(func() (err error) {
			tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "file", "name", name)
			defer tr.Finish("err", &err)

			dw, err := adreno.ReadFile(ctx, name, format)
			if err != nil {
				return errors.Wrap(err, "%v", name)
			}

			var b []byte

			if len(c.Args) > 1 {
				b = hfmt.Appendf(b, "%s:\n", name)
			}

			out[n], err = f(ctx, b, name, dw)
			if err != nil {
				return errors.Wrap(err, "%v", name)
			}

			return nil
		})
	}

	err = g.Wait()

	for _, b := range out {
		if b == nil {
			continue
		}

		if _, werr := os.Stdout.Write(b); werr != nil && err == nil {
			err = errors.Wrap(werr, "write")
		}
	}

	return err
}

func disAct(c *cli.Command) (err error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	opts, err := options(c, cfg)
	if err != nil {
		return err
	}

	return run(c, cfg, func(ctx context.Context, b []byte, name string, dw []uint32) ([]byte, error) {
		buf := bytes.NewBuffer(b)

		dis := disasm.Disasm
		if cfg.Try {
			dis = disasm.TryDisasm
		}

		status, err := dis(ctx, buf, dw, opts)
		if err != nil {
			return buf.Bytes(), err
		}

		if status == disasm.StatusAssert {
			tlog.SpanFromContext(ctx).Printw("decoder assertions", "name", name)
		}

		return buf.Bytes(), nil
	})
}

func statsAct(c *cli.Command) (err error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	opts, err := options(c, cfg)
	if err != nil {
		return err
	}

	opts.Debug &^= disasm.PrintStats

	return run(c, cfg, func(ctx context.Context, b []byte, name string, dw []uint32) ([]byte, error) {
		var st disasm.Stats

		_, err := disasm.DisasmStat(ctx, io.Discard, dw, opts, &st)
		if err != nil {
			return b, err
		}

		return disasm.AppendStats(b, opts.Level, &st), nil
	})
}

func dumpAct(c *cli.Command) (err error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	dump := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}

	return run(c, cfg, func(ctx context.Context, b []byte, name string, dw []uint32) ([]byte, error) {
		dec := codec.Decoder{GPUID: cfg.GPU, Assert: codec.Report}

		for n := 0; n+1 < len(dw); n += 2 {
			w := codec.Word(dw[n], dw[n+1])

			i, err := dec.Decode(w)
			b = hfmt.Appendf(b, "%4d %016x ", n/2, w)

			if err != nil {
				b = hfmt.Appendf(b, "(%v) ", err)
			}

			b = append(b, dump.Sdump(i)...)
		}

		return b, nil
	})
}

func irAct(c *cli.Command) (err error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	return run(c, cfg, func(ctx context.Context, b []byte, name string, dw []uint32) ([]byte, error) {
		s, err := ir.Build(ctx, cfg.GPU, words(dw))
		if err != nil {
			return b, errors.Wrap(err, "build")
		}

		err = s.Validate(ctx)
		if err != nil {
			return b, errors.Wrap(err, "validate")
		}

		return s.Print(b), nil
	})
}

func roundtripAct(c *cli.Command) (err error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	viaIR := c.Bool("ir")

	return run(c, cfg, func(ctx context.Context, b []byte, name string, dw []uint32) ([]byte, error) {
		ws := words(dw)
		dec := codec.Decoder{GPUID: cfg.GPU, Assert: codec.Report}

		bad := 0

		for n, w := range ws {
			i, _ := dec.Decode(w)

			if got := i.Encode(); got != w {
				b = hfmt.Appendf(b, "%4d %016x -> %016x\n", n, w, got)
				bad++
			}
		}

		if viaIR {
			s, err := ir.Build(ctx, cfg.GPU, ws)
			if err != nil {
				return b, errors.Wrap(err, "build")
			}

			got, err := s.Words()
			if err != nil {
				return b, errors.Wrap(err, "emit")
			}

			for n := range min(len(ws), len(got)) {
				if got[n] != ws[n] {
					b = hfmt.Appendf(b, "%4d %016x -> %016x (ir)\n", n, ws[n], got[n])
					bad++
				}
			}

			if len(got) != len(ws) {
				return b, errors.New("ir emitted %d words of %d", len(got), len(ws))
			}
		}

		b = hfmt.Appendf(b, "%d words, %d mismatches\n", len(ws), bad)

		if bad != 0 {
			return b, errors.New("%d mismatches", bad)
		}

		return b, nil
	})
}

func words(dw []uint32) []uint64 {
	l := make([]uint64, len(dw)/2)

	for i := range l {
		l[i] = codec.Word(dw[2*i], dw[2*i+1])
	}

	return l
}
