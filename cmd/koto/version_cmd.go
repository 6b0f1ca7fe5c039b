package main

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/teris-io/cli"
	"golang.org/x/mod/semver"
)

// version is koto-go's own release tag, compared with
// golang.org/x/mod/semver against a caller-supplied -min-version flag
// at runtime.
const version = "v0.1.0"

func versionCommand() cli.Command {
	return cli.NewCommand("version", "Print the koto-go version").
		WithOption(cli.NewOption("min-version", "Fail if koto-go's version is older than this").WithType(cli.TypeString)).
		WithAction(versionAction)
}

func versionAction(args []string, options map[string]string) int {
	flags := pflag.NewFlagSet("version", pflag.ContinueOnError)
	minVersion := flags.String("min-version", "", "fail if koto-go's version is older than this")
	if err := flags.Parse(args); err != nil {
		return fail("%v", err)
	}
	if v, ok := options["min-version"]; ok {
		*minVersion = v
	}

	if *minVersion != "" {
		if !semver.IsValid(*minVersion) {
			return fail("-min-version %q is not a valid semantic version", *minVersion)
		}
		if semver.Compare(version, *minVersion) < 0 {
			return fail("koto-go %s is older than the required %s", version, *minVersion)
		}
	}

	fmt.Println(version)
	return 0
}
