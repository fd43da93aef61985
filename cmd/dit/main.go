package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ratherlargerobot/dit/pkg/config"
	"github.com/ratherlargerobot/dit/pkg/dit"
	"github.com/ratherlargerobot/dit/pkg/logging"
	"github.com/ratherlargerobot/dit/pkg/pipeline"
)

// rootConfiguration holds every flag's bound value.
var rootConfiguration struct {
	configPath string
	excludes   []string
	logLevel   string
	noColor    bool
	stats      bool
	version    bool
}

var rootCommand = &cobra.Command{
	Use:   "dit read <src...> write <dest...>",
	Short: "dit replicates files from one or more read paths into one or more write paths",
	RunE:  rootMain,
	// Argument validation is handled inside rootMain: "read"/"write" are
	// positional mode-switch tokens, not subcommand names, so Cobra must be
	// told not to try to resolve them as subcommands.
	Args: cobra.ArbitraryArgs,
}

func init() {
	flags := rootCommand.Flags()
	flags.StringVarP(&rootConfiguration.configPath, "config", "c", "", "load read/write paths and excludes from a YAML manifest")
	flags.StringArrayVarP(&rootConfiguration.excludes, "exclude", "x", nil, "glob pattern for sub-paths to skip (repeatable)")
	flags.StringVar(&rootConfiguration.logLevel, "log-level", "info", "one of disabled|error|warn|info|debug|trace")
	flags.BoolVar(&rootConfiguration.noColor, "no-color", false, "disable ANSI color in output")
	flags.BoolVar(&rootConfiguration.stats, "stats", false, "print a final summary line")
	flags.BoolVarP(&rootConfiguration.version, "version", "V", false, "show version information")

	cobra.EnableCommandSorting = false
	cobra.MousetrapHelpText = ""
}

func rootMain(command *cobra.Command, arguments []string) error {
	if rootConfiguration.version {
		fmt.Println(dit.Version)
		return nil
	}

	level, ok := logging.NameToLevel(rootConfiguration.logLevel)
	if !ok {
		return errors.Errorf("invalid --log-level value '%s'", rootConfiguration.logLevel)
	}

	useColor := !rootConfiguration.noColor && isatty.IsTerminal(os.Stderr.Fd())
	color.NoColor = !useColor
	logger := logging.NewRoot(level, os.Stdout, os.Stderr, useColor)

	paths, err := dit.ParseCLIPaths(arguments)
	excludes := rootConfiguration.excludes

	if rootConfiguration.configPath != "" {
		manifest, loadErr := config.Load(rootConfiguration.configPath)
		if loadErr != nil {
			return loadErr
		}
		manifestPaths, rwErr := manifest.ReadWritePaths()
		if rwErr != nil {
			return rwErr
		}
		if err != nil {
			if len(arguments) > 0 {
				return err
			}
			// No positional paths were given at all; the manifest alone is
			// allowed to supply them.
			paths = manifestPaths
		} else {
			paths = paths.Merge(manifestPaths)
		}
		excludes = append(append([]string{}, manifest.Exclude...), excludes...)
	} else if err != nil {
		return err
	}

	if len(paths.ReadPaths) == 0 || len(paths.WritePaths) == 0 {
		return errors.New("at least one read path and one write path are required")
	}

	var stats pipeline.Stats
	result, err := dit.Copy(dit.CopyOptions{
		Paths:    paths,
		Excludes: excludes,
		Logger:   logger,
		Stats:    &stats,
	})
	if err != nil {
		return err
	}

	if rootConfiguration.stats {
		printStats(result, &stats)
	}

	switch result {
	case pipeline.MergeOk:
		return nil
	case pipeline.MergeConflict:
		os.Exit(2)
	default:
		os.Exit(1)
	}
	return nil
}

func printStats(result pipeline.MergeResult, stats *pipeline.Stats) {
	fmt.Printf(
		"%s: %d file(s) copied (%s), %d conflict(s)\n",
		result,
		stats.FilesCopied.Load(),
		humanize.Bytes(uint64(stats.BytesCopied.Load())),
		stats.Conflicts.Load(),
	)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dit:", err)
		os.Exit(1)
	}
}
