package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
)

// Output formats for the reconcile command
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// ReconcileFlags are the flags of the reconcile command
type ReconcileFlags struct {
	JobPath    string
	ConfigPath string
	Format     string
	Fuzzy      bool
	NoFuzzy    bool
	NoStore    bool
	Verbose    bool
}

// ParseReconcileFlags parses reconcile flags from args
func ParseReconcileFlags(args []string, stderr io.Writer) (*ReconcileFlags, error) {
	flags := &ReconcileFlags{}
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&flags.JobPath, "job", "", "Job file describing both sources and the matching rules (required)")
	fs.StringVar(&flags.ConfigPath, "config", "config.yaml", "Configuration file path (falls back to environment)")
	fs.StringVar(&flags.Format, "format", FormatTable, "Output format: table or json")
	fs.BoolVar(&flags.Fuzzy, "fuzzy", false, "Force the AI description matching pass on")
	fs.BoolVar(&flags.NoFuzzy, "no-fuzzy", false, "Force the AI description matching pass off")
	fs.BoolVar(&flags.NoStore, "no-store", false, "Do not record the run in the database")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if flags.JobPath == "" && fs.NArg() == 1 {
		flags.JobPath = fs.Arg(0)
	}

	switch {
	case flags.JobPath == "":
		return nil, errors.New("a job file is required (-job path/to/job.yaml)")
	case flags.Fuzzy && flags.NoFuzzy:
		return nil, errors.New("-fuzzy and -no-fuzzy are mutually exclusive")
	case flags.Format != FormatTable && flags.Format != FormatJSON:
		return nil, fmt.Errorf("unknown format %q", flags.Format)
	}
	return flags, nil
}

// fuzzyOverride returns the forced fuzzy setting, if any
func (f *ReconcileFlags) fuzzyOverride() (bool, bool) {
	switch {
	case f.Fuzzy:
		return true, true
	case f.NoFuzzy:
		return false, true
	}
	return false, false
}

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	ConfigPath string
	Port       int
	ReadOnly   bool
	Verbose    bool
}

// ParseServeFlags parses command line flags for the serve command.
// A zero port keeps the configured one.
func ParseServeFlags(args []string, stderr io.Writer) (*ServeFlags, error) {
	flags := &ServeFlags{}
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&flags.ConfigPath, "config", "config.yaml", "Configuration file path (falls back to environment)")
	fs.IntVar(&flags.Port, "port", 0, "Port to listen on (default from config)")
	fs.BoolVar(&flags.ReadOnly, "read-only", false, "Serve recorded runs only, without POST /api/reconciliations")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}
