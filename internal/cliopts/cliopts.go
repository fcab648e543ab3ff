// Package cliopts defines the command-line surface using kingpin: a
// cliCommand holding the raw flag/arg pointers, and a Validate() step
// that applies checks kingpin itself cannot express and folds in
// BDF_* environment fallbacks.
package cliopts

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/alecthomas/kingpin.v2"
)

// Options is the fully validated, ready-to-run configuration for a scan.
type Options struct {
	TargetDir string `json:"target_dir"`
	Jobs      int    `json:"jobs"`
	MinSize   int64  `json:"min_size"`
	Verbosity int    `json:"verbosity"`
	JSONStats bool   `json:"json_stats"`
}

// cliCommand holds the raw kingpin flag/arg pointers before validation.
type cliCommand struct {
	app       *kingpin.Application
	targetDir *string
	jobs      *int
	minSize   *int64
	verbose   *int
	jsonStats *bool
}

// New builds the kingpin application and its single implicit command:
// there is exactly one operation (scan target_dir for reflink
// candidates), so there is no subcommand dispatch.
func New(name, version string) *cliCommand {
	app := kingpin.New(name, "Find same-content files that are not yet sharing extents and emit reflink candidates.")
	app.Version(version).Author("bdf")
	app.HelpFlag.Short('h')
	app.VersionFlag.Short('V')

	c := new(cliCommand)
	c.app = app

	c.targetDir = app.Arg("target_dir", "directory to scan").Required().String()
	c.jobs = app.Flag("jobs", "hashing worker count (default: number of CPUs)").
		Short('j').Default(envOr("BDF_JOBS", "0")).Int()
	c.minSize = app.Flag("min-size", "ignore files smaller than this many bytes").
		Default(envOr("BDF_MIN_SIZE", "1")).Int64()
	c.verbose = app.Flag("verbose", "increase log verbosity, repeatable").Short('v').Counter()
	c.jsonStats = app.Flag("json-stats", "print the run summary as JSON instead of plain text").
		Default(envOr("BDF_JSON_STATS", "false")).Bool()

	return c
}

// Parse parses args (normally os.Args[1:]) and validates the result.
func Parse(name, version string, args []string) (*Options, error) {
	c := New(name, version)
	if _, err := c.app.Parse(args); err != nil {
		return nil, err
	}
	return c.Validate()
}

// Validate converts the raw kingpin values into Options, applying
// checks kingpin's flag constraints cannot express and the BDF_VERBOSE
// and BDF_JSON_STATS env-var fallbacks that the flag defaults alone do
// not cover.
func (c *cliCommand) Validate() (*Options, error) {
	if *c.targetDir == "" {
		return nil, fmt.Errorf("target_dir must not be empty")
	}
	if *c.minSize < 0 {
		return nil, fmt.Errorf("--min-size must not be negative, got %d", *c.minSize)
	}

	jobs := *c.jobs
	if jobs < 0 {
		return nil, fmt.Errorf("--jobs must not be negative, got %d", jobs)
	}
	if jobs == 0 {
		jobs = runtime.NumCPU()
	}

	verbosity := *c.verbose
	if verbosity == 0 {
		if v, ok := envToInt("BDF_VERBOSE"); ok {
			verbosity = v
		}
	}

	opts := &Options{
		TargetDir: *c.targetDir,
		Jobs:      jobs,
		MinSize:   *c.minSize,
		Verbosity: verbosity,
		JSONStats: *c.jsonStats,
	}

	if envToBool("BDF_JSON_STATS") {
		opts.JSONStats = true
	}

	return opts, nil
}

// envOr returns environment variable envKey's value if set and
// non-empty, otherwise defaultValue.
func envOr(envKey, defaultValue string) string {
	val, ok := os.LookupEnv(envKey)
	if !ok || val == "" {
		return defaultValue
	}
	return val
}

// envToBool reports whether envKey is set to a truthy value ("1" or
// "true", case-insensitive). Any other value, including unset, is
// false.
func envToBool(envKey string) bool {
	val, ok := os.LookupEnv(envKey)
	if !ok {
		return false
	}
	return val == "1" || strings.ToLower(val) == "true"
}

// envToInt parses envKey as an integer, returning ok=false if unset or
// malformed.
func envToInt(envKey string) (int, bool) {
	val, ok := os.LookupEnv(envKey)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return i, true
}
