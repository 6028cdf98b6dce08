package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/performancecopilot/bytebuffer"
	"github.com/performancecopilot/bytebuffer/instrument"
	"github.com/performancecopilot/bytebuffer/layout"
)

type options struct {
	layout  string
	repeat  bool
	find    string
	output  string
	stats   bool
	verbose bool
	file    string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("bufdump", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.layout, "layout", "", "record layout, e.g. \"u32 u16 bytes:8\"")
	fs.BoolVar(&o.repeat, "repeat", false, "decode records until the input is drained")
	fs.StringVar(&o.find, "find", "", "hex encoded pattern to search for")
	fs.StringVar(&o.output, "o", "text", "output format, text or yaml")
	fs.BoolVar(&o.stats, "stats", false, "print buffer growth statistics")
	fs.BoolVar(&o.verbose, "v", false, "log buffer storage events to stderr")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() < 1 {
		return nil, errors.New("Usage: bufdump [flags] <file>")
	}
	o.file = fs.Arg(0)

	if o.output != "text" && o.output != "yaml" {
		return nil, errors.Errorf("unknown output format %q", o.output)
	}

	return o, nil
}

func load(file string, opts ...bytebuffer.Option) (*bytebuffer.Buffer, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := bytebuffer.New(opts...)
	if err != nil {
		return nil, err
	}

	if _, err = io.Copy(b, f); err != nil {
		b.Close()
		return nil, errors.Wrapf(err, "cannot read %v", file)
	}

	return b, nil
}

type field struct {
	Field string      `yaml:"field"`
	Value interface{} `yaml:"value,omitempty"`
}

type document struct {
	File      string               `yaml:"file"`
	Length    int                  `yaml:"length"`
	Layout    string               `yaml:"layout,omitempty"`
	Matches   []int                `yaml:"matches,omitempty"`
	Records   [][]field            `yaml:"records,omitempty"`
	Remaining int                  `yaml:"remaining"`
	Stats     *instrument.Snapshot `yaml:"stats,omitempty"`
}

func format(v interface{}) interface{} {
	if p, ok := v.([]byte); ok {
		return hex.EncodeToString(p)
	}
	return v
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if o.verbose {
		bytebuffer.SetLogWriters(stderr)
		bytebuffer.EnableLogging(true)
	}

	l, err := layout.Parse(o.layout)
	if err != nil {
		return err
	}

	rec := instrument.NewRecorder(3)
	b, err := load(o.file, bytebuffer.WithObserver(rec))
	if err != nil {
		return err
	}
	defer b.Close()

	doc := &document{File: o.file, Length: b.Length(), Layout: l.String()}

	if o.find != "" {
		pattern, err := hex.DecodeString(o.find)
		if err != nil {
			return errors.Wrap(err, "invalid -find pattern")
		}

		if doc.Matches, err = layout.Find(b.Peek(), pattern); err != nil {
			return err
		}
	}

	doc.Remaining = b.Length()
	if len(l) > 0 {
		r, err := layout.Dump(b.Peek(), l, o.repeat, bytebuffer.WithObserver(rec))
		if err != nil {
			return err
		}

		for _, vals := range r.Records {
			fields := make([]field, len(vals))
			for i, v := range vals {
				fields[i] = field{v.Field.String(), format(v.Val)}
			}
			doc.Records = append(doc.Records, fields)
		}
		doc.Remaining = r.Remaining
	}

	if o.stats {
		s := rec.Snapshot()
		doc.Stats = &s
	}

	if o.output == "yaml" {
		enc := yaml.NewEncoder(stdout)
		defer enc.Close()
		return enc.Encode(doc)
	}

	printText(stdout, doc)
	return nil
}

func printText(w io.Writer, doc *document) {
	fmt.Fprintf(w, `
File      = %v
Length    = %v
Layout    = %v

`, doc.File, doc.Length, doc.Layout)

	if len(doc.Matches) > 0 {
		fmt.Fprintf(w, "Matches   = %v\n\n", doc.Matches)
	}

	for i, fields := range doc.Records {
		fmt.Fprintf(w, "[%v]\n", i)
		for _, f := range fields {
			if f.Value == nil {
				fmt.Fprintf(w, "\t%-10v (skipped)\n", f.Field)
				continue
			}
			fmt.Fprintf(w, "\t%-10v = %v\n", f.Field, f.Value)
		}
	}

	fmt.Fprintf(w, "\nRemaining = %v\n", doc.Remaining)

	if s := doc.Stats; s != nil {
		fmt.Fprintf(w, "\nGrows       = %v (capacity min=%v max=%v p50=%v)\n",
			s.Grows, s.Capacity.Min, s.Capacity.Max, s.Capacity.P50)
		fmt.Fprintf(w, "Compactions = %v (moved max=%v mean=%.1f)\n",
			s.Compactions, s.Moved.Max, s.Moved.Mean)
	}
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintln(os.Stderr, strings.TrimSpace(err.Error()))
		}
		os.Exit(1)
	}
}
