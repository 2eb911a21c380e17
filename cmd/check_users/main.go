package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/consol-monitoring/monitoring-plugins-go/pkg/checkusers"
	"github.com/consol-monitoring/monitoring-plugins-go/pkg/plugin"
	flag "github.com/spf13/pflag"
)

const VERSION = "0.1"

// Build contains the current git commit id
// compile passing -ldflags "-X main.Build <build sha1>" to set the id.
var Build string

func main() {
	flags := flag.NewFlagSet("check_users", flag.ContinueOnError)
	warning := flags.Int64P("warning", "w", 0, "number of logged in users resulting in a warning state")
	critical := flags.Int64P("critical", "c", 0, "number of logged in users resulting in a critical state")
	timeout := flags.Int64P("timeout", "t", 5, "timeout for the user enumeration in seconds")
	verbose := flags.BoolP("verbose", "v", false, "enable debug output on stderr")
	version := flags.BoolP("version", "V", false, "print version and exit")
	flags.Usage = func() { usage(flags) }
	flags.SetOutput(os.Stderr)

	err := flags.Parse(os.Args[1:])
	switch {
	case errors.Is(err, flag.ErrHelp):
		os.Exit(int(plugin.StateUnknown))
	case err != nil:
		// pflag already printed the error along with the usage
		os.Exit(int(plugin.StateUnknown))
	}

	if *version {
		fmt.Fprintf(os.Stdout, "check_users v%s (Build: %s)\n", VERSION, Build)
		os.Exit(int(plugin.StateUnknown))
	}

	if *verbose {
		plugin.SetLogLevel("debug")
	}

	if !flags.Changed("warning") || !flags.Changed("critical") {
		usage(flags)
		plugin.Unknown("both -w and -c are required").PrintExit()
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*timeout)*time.Second)
	defer cancel()

	check := &checkusers.Check{
		Warning:  *warning,
		Critical: *critical,
	}
	check.Run(ctx).PrintExit()
}

func usage(flags *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, "usage: check_users -w <max_users> -c <max_users>\n\n")
	fmt.Fprintf(os.Stderr, "checks the number of currently logged in users\n\noptions:\n")
	flags.PrintDefaults()
}
