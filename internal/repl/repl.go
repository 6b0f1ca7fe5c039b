// Package repl implements koto-go's interactive line-editing driver
// (SPEC_FULL.md "AMBIENT STACK": "cmd/koto and internal/repl still
// exist as thin, real driver code exercising the parser and iterator
// module end to end"). Continuation detection reuses the parser's own
// "expects more input" signal rather than a second grammar.
package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/koto-lang/koto-go/internal/klog"
	"github.com/koto-lang/koto-go/koto"
	"github.com/koto-lang/koto-go/parser"
)

// REPL drives a readline.Instance, accumulating lines until the
// parser reports a complete program, then evaluating it with vm.
type REPL struct {
	rl  *readline.Instance
	vm  *koto.SimpleVM
	log klog.Logger

	// Eval is injected so main.go can supply the same evaluator the
	// `run` subcommand uses without this package depending on cmd/koto.
	Eval func(vm *koto.SimpleVM, source string) (koto.Value, error)
}

// Config customises the prompt and the SimpleVM the session evaluates
// against. Stdout and Continue are not read by New or Run.
type Config struct {
	Prompt   string
	Continue string
	Stdout   io.Writer
	Log      klog.Logger
	Options  koto.Options
}

// New builds a REPL. Results are always written to the readline
// instance's own standard output; cfg.Stdout is ignored.
func New(cfg Config, eval func(vm *koto.SimpleVM, source string) (koto.Value, error)) (*REPL, error) {
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = "koto> "
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     "",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("repl: %w", err)
	}
	return &REPL{rl: rl, vm: koto.NewSimpleVM(cfg.Options), log: cfg.Log, Eval: eval}, nil
}

// Close releases the underlying line editor.
func (r *REPL) Close() error { return r.rl.Close() }

// Run reads lines until EOF or an unrecoverable read error,
// accumulating a pending buffer across "needs more input" parse
// errors and evaluating each complete statement as it's entered.
func (r *REPL) Run() error {
	var pending strings.Builder
	for {
		line, err := r.rl.Readline()
		if err == readline.ErrInterrupt {
			pending.Reset()
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if pending.Len() > 0 {
			pending.WriteByte('\n')
		}
		pending.WriteString(line)

		source := pending.String()
		if _, _, perr := parser.ParseSource(source); perr != nil {
			if needsMoreInput(perr) {
				r.rl.SetPrompt("    ... ")
				continue
			}
			fmt.Fprintln(r.rl.Stderr(), perr)
			pending.Reset()
			r.rl.SetPrompt("koto> ")
			continue
		}

		result, err := r.Eval(r.vm, source)
		if err != nil {
			fmt.Fprintln(r.rl.Stderr(), err)
		} else {
			fmt.Fprintln(r.rl.Stdout(), result.String())
		}
		pending.Reset()
		r.rl.SetPrompt("koto> ")
	}
}

// needsMoreInput reports whether perr looks like the parser ran out
// of tokens mid-construct rather than hitting a genuine syntax error,
// the signal the REPL uses to keep prompting for continuation lines
// instead of reporting failure.
func needsMoreInput(perr error) bool {
	return strings.Contains(perr.Error(), "end of input")
}
