package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strings"

	"github.com/rgehrsitz/firesim/internal/calculation"
	"github.com/rgehrsitz/firesim/internal/config"
	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/rgehrsitz/firesim/internal/output"
	"github.com/spf13/cobra"
)

// simpleCLILogger implements calculation.Logger using the standard log package.
// Warnings and errors always print; debug and info lines only with debug set.
type simpleCLILogger struct {
	debug bool
}

func (l simpleCLILogger) Debugf(format string, args ...any) {
	if l.debug {
		log.Printf("DEBUG: "+format, args...)
	}
}

func (l simpleCLILogger) Infof(format string, args ...any) {
	if l.debug {
		log.Printf("INFO: "+format, args...)
	}
}

func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// settings holds the environment defaults; flags given on the command line win.
var settings config.Settings

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "firesim %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

// fileExists checks if a file exists
func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

var rootCmd = &cobra.Command{
	Use:   "firesim",
	Short: "FIRE portfolio projection CLI",
	Long: `Year-by-year projection of a multi-currency FIRE portfolio: expenses, rental
income, tax and bucket withdrawals against a safety buffer.

Environment:
  FIRESIM_CONFIG   input file used when none is given on the command line
  FIRESIM_FORMAT   default output format
  FIRESIM_DEBUG    log every simulated year
  FIRESIM_WORKERS  concurrent simulations for sweeps and top-up comparisons`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.LoadSettings()
		if err != nil {
			return err
		}
		settings = s
		return nil
	},
}

var calculateCmd = &cobra.Command{
	Use:   "calculate [input-file]",
	Short: "Project a plan year by year",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := loadParams(args)
		if err != nil {
			return err
		}
		if release, _ := cmd.Flags().GetBool("release-locked"); release {
			params.LockedReleaseToWaterfall = true
		}

		engine := newEngine(cmd, true)
		result, err := engine.RunSimulation(cmd.Context(), params)
		if err != nil {
			return err
		}

		formatName := stringFlag(cmd, "format", settings.Format)
		f := output.GetFormatterByName(formatName)
		if f == nil {
			return fmt.Errorf("unknown format %q (available: %s; aliases: %s)", formatName,
				strings.Join(output.AvailableFormatterNames(), ", "),
				strings.Join(output.AvailableFormatAliases(), ", "))
		}

		if save, _ := cmd.Flags().GetBool("save"); save {
			name, err := output.WriteFormatted(f, result, extensionFor(f))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", name)
			return nil
		}

		data, err := f.Format(result)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [input-file]",
	Short: "Validate a configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile, err := inputPath(args)
		if err != nil {
			return err
		}
		params, err := config.NewInputParser().LoadFromFile(inputFile)
		if err != nil {
			return err
		}
		for _, s := range params.OneTimeEvents.Skipped {
			fmt.Fprintf(cmd.OutOrStdout(), "Warning: one-time event #%d ignored: %s\n", s.Index, s.Reason)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file %s is valid\n", inputFile)
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init [output-file]",
	Short: "Write an example configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := "firesim.yaml"
		if len(args) == 1 {
			filename = args[0]
		}
		if force, _ := cmd.Flags().GetBool("force"); !force && fileExists(filename) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", filename)
		}
		if err := output.SaveConfiguration(config.CreateExampleConfiguration(), filename); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Example configuration written to %s\n", filename)
		return nil
	},
}

func init() {
	calculateCmd.Flags().StringP("format", "f", "console", "Output format (console, csv, json, html)")
	calculateCmd.Flags().Bool("debug", false, "Log every simulated year")
	calculateCmd.Flags().Bool("save", false, "Write the report to a timestamped file instead of stdout")
	calculateCmd.Flags().Bool("release-locked", false, "Let the withdrawal waterfall draw the locked bucket once it unlocks")

	initCmd.Flags().Bool("force", false, "Overwrite an existing file")

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd())
}

// inputPath picks the file named on the command line, else FIRESIM_CONFIG.
func inputPath(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if settings.ConfigFile != "" {
		return settings.ConfigFile, nil
	}
	return "", errors.New("no input file: pass one or set FIRESIM_CONFIG")
}

func loadParams(args []string) (*domain.ParameterSet, error) {
	inputFile, err := inputPath(args)
	if err != nil {
		return nil, err
	}
	return config.NewInputParser().LoadFromFile(inputFile)
}

// newEngine builds an engine that logs to stderr. Warnings print when warn is set
// or debugging is on; sweeps pass false since they rerun the same plan many times.
func newEngine(cmd *cobra.Command, warn bool) *calculation.CalculationEngine {
	engine := calculation.NewCalculationEngine()
	debugMode := settings.Debug
	if cmd.Flags().Lookup("debug") != nil && cmd.Flags().Changed("debug") {
		debugMode, _ = cmd.Flags().GetBool("debug")
	}
	if warn || debugMode {
		log.SetOutput(cmd.ErrOrStderr())
		engine.SetLogger(simpleCLILogger{debug: debugMode})
	}
	engine.Debug = debugMode
	return engine
}

// stringFlag returns the flag when set explicitly, else fallback when non-empty,
// else the flag's default.
func stringFlag(cmd *cobra.Command, name, fallback string) string {
	v, _ := cmd.Flags().GetString(name)
	if cmd.Flags().Changed(name) || fallback == "" {
		return v
	}
	return fallback
}

func extensionFor(f output.Formatter) string {
	if f.Name() == "console" {
		return "txt"
	}
	return f.Name()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
