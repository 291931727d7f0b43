package main

import (
	"errors"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/sghaida/iocaop/aop"
)

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("weaveplan", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	manifestPath := fs.String("manifest", "", "path to weave manifest (YAML)")
	format := fs.String("format", "text", "output format: text | json")
	outPath := fs.String("out", "", "output file (default stdout)")
	legacy := fs.Bool("legacy", false, "leave the method unbound in three-segment pointcuts")
	noColor := fs.Bool("no-color", false, "disable colored text output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*manifestPath) == "" {
		return errors.New("missing -manifest")
	}
	if *format != "text" && *format != "json" {
		return errors.New("unknown -format " + *format)
	}

	m, err := loadManifest(*manifestPath)
	if err != nil {
		return err
	}

	var opts []aop.CompileOption
	if *legacy {
		opts = append(opts, aop.LegacyThreeSegment())
	}
	plans, err := buildPlan(m, opts...)
	if err != nil {
		return err
	}

	w := stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
		*noColor = true
	}

	if *format == "json" {
		return writeJSON(w, plans)
	}
	return writeText(w, plans, newPalette(*noColor))
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		die(err.Error())
	}
}

func die(msg string) {
	_, _ = os.Stderr.WriteString("weaveplan: " + msg + "\n")
	os.Exit(1)
}
