package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/teris-io/cli"

	"github.com/koto-lang/koto-go/ast"
	"github.com/koto-lang/koto-go/constant"
	"github.com/koto-lang/koto-go/internal/klog"
	"github.com/koto-lang/koto-go/parser"
)

func astCommand() cli.Command {
	return cli.NewCommand("ast", "Parse a script and print a JSON summary of its AST").
		WithArg(cli.NewArg("path", "Path to the .koto source file")).
		WithOption(cli.NewOption("debug-panic", "Panic immediately on the first parser error").WithType(cli.TypeBool)).
		WithOption(cli.NewOption("verbose", "Enable debug logging").WithType(cli.TypeBool)).
		WithAction(astAction)
}

func astAction(args []string, options map[string]string) int {
	flags := pflag.NewFlagSet("ast", pflag.ContinueOnError)
	debugPanic := flags.Bool("debug-panic", false, "panic immediately on the first parser error")
	verbose := flags.Bool("verbose", false, "enable debug logging")
	if err := flags.Parse(args); err != nil {
		return fail("%v", err)
	}
	if _, ok := options["debug-panic"]; ok {
		*debugPanic = true
	}
	if _, ok := options["verbose"]; ok {
		*verbose = true
	}

	positional := flags.Args()
	if len(positional) < 1 {
		return fail("ast requires a source file path")
	}

	log := klog.Discard()
	if *verbose {
		log = klog.New(os.Stderr, zerologDebugLevel).WithComponent("ast")
	}

	source, err := os.ReadFile(positional[0])
	if err != nil {
		return fail("reading %s: %v", positional[0], err)
	}

	parser.SetDebugPanicOnError(*debugPanic)
	arena, pool, perr := parser.ParseSource(string(source))
	if perr != nil {
		return fail("parse error: %v", perr)
	}
	log.Debugf("parsed %d bytes into %d AST nodes", len(source), arena.Len())

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return printAST(enc, arena, pool)
}

func printAST(enc *json.Encoder, arena *ast.Arena, pool *constant.Pool) int {
	type dump struct {
		EntryPoint ast.Index `json:"entry_point"`
		NodeCount  int       `json:"node_count"`
		Numbers    int       `json:"constant_numbers"`
		Strings    int       `json:"constant_strings"`
	}
	numbers, strings := 0, 0
	for i := 0; i < pool.Len(); i++ {
		if pool.KindOf(constant.Index(i)) == constant.KindNumber {
			numbers++
		} else {
			strings++
		}
	}
	if err := enc.Encode(dump{
		EntryPoint: arena.EntryPoint(),
		NodeCount:  arena.Len(),
		Numbers:    numbers,
		Strings:    strings,
	}); err != nil {
		return fail("encoding AST summary: %v", err)
	}
	return 0
}
