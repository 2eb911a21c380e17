package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/consol-monitoring/monitoring-plugins-go/pkg/checknginx"
	"github.com/consol-monitoring/monitoring-plugins-go/pkg/counter"
	"github.com/consol-monitoring/monitoring-plugins-go/pkg/plugin"
	flag "github.com/spf13/pflag"
)

const VERSION = "0.1"

// Build contains the current git commit id
// compile passing -ldflags "-X main.Build <build sha1>" to set the id.
var Build string

func main() {
	flags := flag.NewFlagSet("check_nginx_status", flag.ContinueOnError)
	hostname := flags.StringP("hostname", "H", "localhost", "host running the nginx status module")
	port := flags.Int64P("port", "p", 0, "port of the status endpoint (required)")
	url := flags.StringP("url", "u", checknginx.DefaultURL, "path of the stub status page")
	warning := flags.StringP("warning", "w", "", "warning range for active connections")
	critical := flags.StringP("critical", "c", "", "critical range for active connections")
	noKeepalives := flags.Bool("no-keepalives", false, "every request consumes its own connection, handled must not drop below requests")
	timeout := flags.Int64P("timeout", "t", checknginx.DefaultTimeout, "timeout for the status page fetch in seconds")
	stateDir := flags.StringP("statedir", "d", "", "directory for the state files (default system temp dir)")
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
		fmt.Fprintf(os.Stdout, "check_nginx_status v%s (Build: %s)\n", VERSION, Build)
		os.Exit(int(plugin.StateUnknown))
	}

	if *verbose {
		plugin.SetLogLevel("debug")
	}

	if !flags.Changed("port") {
		usage(flags)
		plugin.Unknown("-p is required").PrintExit()
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*timeout)*time.Second)
	defer cancel()

	check := &checknginx.Check{
		Hostname:     *hostname,
		Port:         *port,
		URL:          *url,
		Warning:      *warning,
		Critical:     *critical,
		NoKeepalives: *noKeepalives,
		Timeout:      *timeout,
		Store:        counter.NewFileStore(*stateDir),
	}
	check.Run(ctx).PrintExit()
}

func usage(flags *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, "usage: check_nginx_status -H <hostname> -p <port> [-u <url>] [-w <range>] [-c <range>]\n\n")
	fmt.Fprintf(os.Stderr, "checks the nginx stub status page and computes connection and request rates\n\noptions:\n")
	flags.PrintDefaults()
}
