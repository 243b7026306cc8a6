// Command claudegrep is a thin CLI front-end over internal/engine: it
// parses flags, loads project configuration, runs one search, and
// formats the results (§6.3). The interactive terminal UI named in the
// purpose statement is a separate client and is not built here.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/holon-run/claudegrep/internal/cglog"
	"github.com/holon-run/claudegrep/internal/claudegrepconfig"
	"github.com/holon-run/claudegrep/internal/corpusmetrics"
	"github.com/holon-run/claudegrep/internal/discovery"
	"github.com/holon-run/claudegrep/internal/engine"
	"github.com/holon-run/claudegrep/internal/output"
	"github.com/holon-run/claudegrep/internal/query"
)

const defaultPattern = "**/*.jsonl"

var (
	flagPattern     string
	flagRole        string
	flagSessionID   string
	flagMaxResults  int
	flagBefore      string
	flagAfter       string
	flagFormat      string
	flagNoColor     bool
	flagVerbose     bool
	flagFullText    bool
	flagProject     string
	flagInteractive bool
	flagHelpQuery   bool
)

var rootCmd = &cobra.Command{
	Use:   "claudegrep <query>",
	Short: "Search Claude Code session transcripts with a boolean query language",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSearch,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&flagPattern, "pattern", defaultPattern, "glob pattern(s) of transcript files to search, comma-separated")
	flags.StringVar(&flagRole, "role", "", "restrict to one role: user, assistant, system, or summary")
	flags.StringVar(&flagSessionID, "session-id", "", "restrict to one session id")
	flags.IntVar(&flagMaxResults, "max-results", 0, "maximum results returned (0 uses the configured default)")
	flags.StringVar(&flagBefore, "before", "", "restrict to records at or before this RFC3339 timestamp")
	flags.StringVar(&flagAfter, "after", "", "restrict to records at or after this RFC3339 timestamp")
	flags.StringVar(&flagFormat, "format", "", "output format: text, json, or jsonl")
	flags.BoolVar(&flagNoColor, "no-color", false, "disable terminal styling in text output")
	flags.BoolVar(&flagVerbose, "verbose", false, "emit progress logging and decode-failure counts to stderr")
	flags.BoolVar(&flagFullText, "full-text", false, "do not truncate result bodies in text output")
	flags.StringVar(&flagProject, "project", "", "restrict discovery to this project's conventional session directory")
	flags.BoolVar(&flagInteractive, "interactive", false, "launch the interactive terminal UI (separate client, not built here)")
	flags.BoolVar(&flagHelpQuery, "help-query", false, "print the query language grammar and exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a returned error to §6.3's exit code contract: 2 for
// a query parse error, 1 for anything else unexpected.
func exitCodeFor(err error) int {
	var parseErr *query.ParseError
	if isParseError(err, &parseErr) {
		return 2
	}
	return 1
}

func isParseError(err error, target **query.ParseError) bool {
	for err != nil {
		if pe, ok := err.(*query.ParseError); ok {
			*target = pe
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

func runSearch(cmd *cobra.Command, args []string) error {
	if flagInteractive {
		fmt.Println("interactive mode is a separate client, not built here")
		return nil
	}
	if flagHelpQuery {
		printQueryHelp()
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("claudegrep: a query argument is required unless --interactive or --help-query is given")
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("claudegrep: resolve working directory: %w", err)
	}
	projectCfg, err := claudegrepconfig.Load(cwd)
	if err != nil {
		return err
	}
	cliCfg := claudegrepconfig.Config{
		Format:     flagFormat,
		MaxResults: flagMaxResults,
		NoColor:    flagNoColor,
		Verbose:    flagVerbose,
	}
	resolved, err := claudegrepconfig.Resolve(projectCfg, cliCfg)
	if err != nil {
		return err
	}

	logger, err := cglog.New(resolved.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	q, err := query.Compile(args[0])
	if err != nil {
		return err
	}

	recorder := &corpusmetrics.Recorder{}
	opts := engine.Options{
		MaxResults:      resolved.MaxResults,
		Role:            flagRole,
		HasRole:         flagRole != "",
		SessionID:       flagSessionID,
		HasSessionID:    flagSessionID != "",
		Before:          flagBefore,
		HasBefore:       flagBefore != "",
		After:           flagAfter,
		HasAfter:        flagAfter != "",
		ProjectPath:     flagProject,
		HasProject:      flagProject != "",
		Verbose:         resolved.Verbose,
		Layout:          discovery.ClaudeLayout{},
		Logf:            logger.AsEngineLogf(),
		OnDecodeFailure: recorder.Record,
	}

	results, elapsed, total, err := engine.Search(cmd.Context(), flagPattern, q, opts)
	if err != nil {
		return err
	}

	formatter, ok := output.Get(resolved.Format)
	if !ok {
		return fmt.Errorf("claudegrep: unknown --format %q (want one of %s)", resolved.Format, strings.Join(output.Names(), ", "))
	}
	meta := output.Metadata{
		DurationMS:    elapsed.Milliseconds(),
		TotalCount:    total,
		ReturnedCount: len(results),
	}
	if err := formatter.Format(os.Stdout, results, meta, output.Options{
		FullText: flagFullText,
		NoColor:  resolved.NoColor,
	}); err != nil {
		return err
	}

	if resolved.Verbose {
		snap := corpusmetrics.Collect(recorder, nil)
		logger.Warnf("done in %s, %d/%d results, %d decode failure(s)", elapsed, len(results), total, snap.DecodeFailures)
	}
	return nil
}

func printQueryHelp() {
	rows := []struct{ query, semantics string }{
		{"error", "Case-insensitive substring `error`"},
		{`"hello world"`, "Case-insensitive substring including the space"},
		{"/^Error:.*\\d+/m", "Regex anchored per line, numeric suffix"},
		{"error AND /failed.*connection/i", "Conjunction"},
		{"(warning OR error) AND NOT timeout", "Disjunction, negation, grouping"},
	}
	fmt.Println("Query language grammar:")
	for _, r := range rows {
		fmt.Printf("  %-38s %s\n", r.query, r.semantics)
	}
}
