package cli

import (
	"annotcheck/internal/shared/version"
	"flag"
)

var versionString = version.Version

const defaultConfigPath = "annotcheck.toml"

type cliOptions struct {
	configPath string
	once       bool
	ui         bool
	format     string
	history    bool
	since      string
	historyTSV string
	trendJSON  string
	fail       bool
	verbose    bool
	version    bool
	args       []string
}

func parseOptions(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("annotcheck", flag.ContinueOnError)

	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.BoolVar(&opts.once, "once", false, "Run single scan and exit")
	fs.BoolVar(&opts.ui, "ui", false, "Enable terminal UI mode")
	fs.StringVar(&opts.format, "format", "", "Report format written to stdout: text, sarif, tsv or json (overrides output.format)")
	fs.BoolVar(&opts.history, "history", false, "Print recorded runs and the diagnostic trend, then exit")
	fs.StringVar(&opts.since, "since", "", "Include recorded runs at/after this timestamp (RFC3339 or YYYY-MM-DD)")
	fs.StringVar(&opts.historyTSV, "history-tsv", "", "Write recorded runs as TSV to this path (requires --history)")
	fs.StringVar(&opts.trendJSON, "trend-json", "", "Write the trend summary as JSON to this path (requires --history)")
	fs.BoolVar(&opts.fail, "fail", false, "Exit with status 1 when the scan reports diagnostics (implies --once)")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	return opts, nil
}
