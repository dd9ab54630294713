// Command vantage-log views and analyzes protocol capture files.
//
// Capture files are written by the client when a capture file is
// configured, for example with the -capture flag of vantage-shell.
//
// Usage:
//
//	vantage-log <command> [flags] <file.vlog>
//
// Commands:
//
//	view     View capture file in human-readable format
//	export   Export capture file to JSON or CSV format
//	stats    Show statistics about the capture file
//
// Examples:
//
//	# View all events
//	vantage-log view session.vlog
//
//	# View only Host Command traffic sent to the controller
//	vantage-log view -service hostcmd -direction out session.vlog
//
//	# View lines mentioning a method
//	vantage-log view -contains Load.GetLevel session.vlog
//
//	# Export to CSV
//	vantage-log export -format csv -o session.csv session.vlog
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vantage-controls/vantage-go/cmd/vantage-log/commands"
	"github.com/vantage-controls/vantage-go/pkg/log"
)

const usage = `vantage-log - Vantage Protocol Capture Analyzer

Usage:
  vantage-log <command> [flags] <file.vlog>

Commands:
  view     View capture file in human-readable format
  export   Export capture file to JSON or CSV format
  stats    Show statistics about the capture file

Use "vantage-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `vantage-log view - View capture file in human-readable format

Usage:
  vantage-log view [flags] <file.vlog>

Flags:
`)
		fs.PrintDefaults()
	}

	service := fs.String("service", "", "Filter by service (hostcmd, aci)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (line, state, error)")
	connID := fs.String("conn-id", "", "Filter by connection ID")
	contains := fs.String("contains", "", "Show only lines containing this text")
	since := fs.String("since", "", "Show events at or after this RFC 3339 time")
	until := fs.String("until", "", "Show events before this RFC 3339 time")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	filter := log.Filter{ConnectionID: *connID, Contains: *contains}

	if *service != "" {
		s, err := commands.ParseServiceFlag(*service)
		exitOnError(err)
		filter.Service = &s
	}
	if *direction != "" {
		d, err := commands.ParseDirectionFlag(*direction)
		exitOnError(err)
		filter.Direction = &d
	}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		exitOnError(err)
		filter.Category = &c
	}
	if *since != "" {
		t, err := time.Parse(time.RFC3339, *since)
		exitOnError(err)
		filter.TimeStart = &t
	}
	if *until != "" {
		t, err := time.Parse(time.RFC3339, *until)
		exitOnError(err)
		filter.TimeEnd = &t
	}

	exitOnError(commands.RunView(path, filter, os.Stdout))
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `vantage-log export - Export capture file to JSON or CSV format

Usage:
  vantage-log export [flags] <file.vlog>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	exitOnError(commands.RunExport(path, *format, *output))
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `vantage-log stats - Show statistics about the capture file

Usage:
  vantage-log stats <file.vlog>
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	exitOnError(commands.RunStats(path, os.Stdout))
}

func requirePath(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: capture file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
