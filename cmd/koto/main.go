// Command koto is the thin embedding host exercised by the repl and
// iterator module end to end (SPEC_FULL.md "ambient rule": the core
// parser/iterator packages carry no CLI of their own, so a driver
// binary is needed to give the domain-stack wiring above a concrete
// caller). It is not a second compiler: RunFunction/RunBinaryOp are
// backed by koto.SimpleVM, sufficient to drive `ast` and `run`
// end to end for the expression subset SimpleVM understands.
package main

import (
	"fmt"
	"os"

	"github.com/teris-io/cli"
)

func main() {
	app := cli.New("koto-go: an embeddable dynamic scripting language").
		WithCommand(runCommand()).
		WithCommand(astCommand()).
		WithCommand(replCommand()).
		WithCommand(versionCommand())

	os.Exit(app.Run(os.Args, os.Stdout))
}

func fail(format string, args ...any) int {
	fmt.Fprintf(os.Stderr, "koto: "+format+"\n", args...)
	return 1
}
