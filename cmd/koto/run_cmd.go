package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/teris-io/cli"

	"github.com/koto-lang/koto-go/internal/klog"
	"github.com/koto-lang/koto-go/koto"
	"github.com/koto-lang/koto-go/parser"
)

func runCommand() cli.Command {
	return cli.NewCommand("run", "Parse and evaluate a script's top-level expression").
		WithArg(cli.NewArg("path", "Path to the .koto source file")).
		WithOption(cli.NewOption("verbose", "Enable debug logging").WithType(cli.TypeBool)).
		WithOption(cli.NewOption("debug-panic", "Panic immediately on the first parser error").WithType(cli.TypeBool)).
		WithOption(cli.NewOption("max-iterator-depth", "Bound adaptor nesting (0 = unbounded)").WithType(cli.TypeString)).
		WithAction(runAction)
}

func runAction(args []string, options map[string]string) int {
	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	verbose := flags.Bool("verbose", false, "enable debug logging")
	debugPanic := flags.Bool("debug-panic", false, "panic immediately on the first parser error")
	maxIteratorDepth := flags.Int("max-iterator-depth", 0, "bound adaptor nesting (0 = unbounded)")
	if err := flags.Parse(args); err != nil {
		return fail("%v", err)
	}
	if _, ok := options["verbose"]; ok {
		*verbose = true
	}
	if _, ok := options["debug-panic"]; ok {
		*debugPanic = true
	}
	if v, ok := options["max-iterator-depth"]; ok {
		fmt.Sscanf(v, "%d", maxIteratorDepth)
	}

	positional := flags.Args()
	if len(positional) < 1 {
		return fail("run requires a source file path")
	}

	log := klog.Discard()
	if *verbose {
		log = klog.New(os.Stderr, zerologDebugLevel).WithComponent("run")
	}

	source, err := os.ReadFile(positional[0])
	if err != nil {
		return fail("reading %s: %v", positional[0], err)
	}

	vm := koto.NewSimpleVM(koto.Options{
		DebugPanicOnError: *debugPanic,
		MaxIteratorDepth:  *maxIteratorDepth,
	})
	arena, pool, perr := parser.ParseSource(string(source))
	if perr != nil {
		return fail("parse error: %v", perr)
	}
	log.Debugf("parsed %d bytes into %d AST nodes", len(source), arena.Len())

	result, err := evalTopLevel(vm, arena, pool, arena.EntryPoint())
	if err != nil {
		return fail("%v", err)
	}
	fmt.Fprintln(vm.Stdout(), result.String())
	return 0
}
