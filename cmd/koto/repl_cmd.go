package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/teris-io/cli"

	"github.com/koto-lang/koto-go/internal/klog"
	"github.com/koto-lang/koto-go/internal/repl"
	"github.com/koto-lang/koto-go/koto"
	"github.com/koto-lang/koto-go/parser"
)

func replCommand() cli.Command {
	return cli.NewCommand("repl", "Start an interactive session").
		WithOption(cli.NewOption("verbose", "Enable debug logging").WithType(cli.TypeBool)).
		WithOption(cli.NewOption("watch", "Reload and re-evaluate the given file on every save").WithType(cli.TypeString)).
		WithOption(cli.NewOption("debug-panic", "Panic immediately on the first parser error").WithType(cli.TypeBool)).
		WithOption(cli.NewOption("max-iterator-depth", "Bound adaptor nesting (0 = unbounded)").WithType(cli.TypeString)).
		WithAction(replAction)
}

func replAction(args []string, options map[string]string) int {
	flags := pflag.NewFlagSet("repl", pflag.ContinueOnError)
	verbose := flags.Bool("verbose", false, "enable debug logging")
	watch := flags.String("watch", "", "reload and re-evaluate the given file on every save")
	debugPanic := flags.Bool("debug-panic", false, "panic immediately on the first parser error")
	maxIteratorDepth := flags.Int("max-iterator-depth", 0, "bound adaptor nesting (0 = unbounded)")
	if err := flags.Parse(args); err != nil {
		return fail("%v", err)
	}
	if _, ok := options["verbose"]; ok {
		*verbose = true
	}
	if v, ok := options["watch"]; ok {
		*watch = v
	}
	if _, ok := options["debug-panic"]; ok {
		*debugPanic = true
	}
	if v, ok := options["max-iterator-depth"]; ok {
		fmt.Sscanf(v, "%d", maxIteratorDepth)
	}

	log := klog.Discard()
	if *verbose {
		log = klog.New(os.Stderr, zerologDebugLevel).WithComponent("repl")
	}

	vmOptions := koto.Options{
		DebugPanicOnError: *debugPanic,
		MaxIteratorDepth:  *maxIteratorDepth,
	}

	session, err := repl.New(repl.Config{Log: log, Options: vmOptions}, evalSource)
	if err != nil {
		return fail("%v", err)
	}
	defer session.Close()

	if *watch != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		watcher := repl.NewWatcher(*watch, 500*time.Millisecond, 1, log)
		go func() {
			_ = watcher.Run(ctx, func(source string) {
				arena, pool, perr := parser.ParseSource(source)
				if perr != nil {
					fmt.Fprintln(os.Stderr, perr)
					return
				}
				vm := koto.NewSimpleVM(vmOptions)
				result, err := evalTopLevel(vm, arena, pool, arena.EntryPoint())
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					return
				}
				fmt.Fprintf(os.Stdout, "[reload] %s\n", result.String())
			})
		}()
	}

	if err := session.Run(); err != nil {
		return fail("%v", err)
	}
	return 0
}

func evalSource(vm *koto.SimpleVM, source string) (koto.Value, error) {
	arena, pool, perr := parser.ParseSource(source)
	if perr != nil {
		return koto.Null, perr
	}
	return evalTopLevel(vm, arena, pool, arena.EntryPoint())
}
