// Package main provides the webhelpers command: it runs SVG merge jobs,
// executes helper scripts and exposes the value helpers on the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/opd-ai/go-webhelpers/internal/profiling"
	"github.com/opd-ai/go-webhelpers/pkg/webhelpers"
)

// Version is the current version of webhelpers.
// This default value can be overridden at build time using:
//
//	go build -ldflags "-X main.Version=x.y.z"
var Version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run executes the command line and flushes any profiles, including when
// the command fails.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root, flags := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if flags.profile != nil {
		if stopErr := flags.profile.Stop(); stopErr != nil {
			fmt.Fprintf(stderr, "Warning: failed to write profiles: %v\n", stopErr)
			err = errors.Join(err, stopErr)
		}
	}
	return err
}

type rootFlags struct {
	logLevel string
	logJSON  bool
	timeout  time.Duration
	strict   bool
	profiles profiling.Config
	profile  *profiling.Session
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *rootFlags) {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "webhelpers",
		Short: "Merge recolored SVG layers and run small web helpers",
		Long: `webhelpers composites SVG layers into a single image, optionally
swapping colors in each layer first, and exposes the value helpers
(color gradients, number formatting, identifiers) as subcommands.

Example:
  webhelpers merge badge.yaml
  webhelpers watch badge.yaml
  webhelpers color 0.4`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if !flags.profiles.Enabled() {
				return nil
			}
			session, err := profiling.Start(flags.profiles)
			if err != nil {
				return err
			}
			flags.profile = session
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.BoolVar(&flags.logJSON, "log-json", false, "Log JSON instead of text")
	pf.DurationVar(&flags.timeout, "timeout", webhelpers.DefaultTimeout, "Bound on each merge")
	pf.StringVar(&flags.profiles.CPUProfilePath, "cpuprofile", "", "Write CPU profile to file")
	pf.StringVar(&flags.profiles.MemProfilePath, "memprofile", "", "Write memory profile to file")

	root.AddCommand(
		newMergeCmd(flags),
		newWatchCmd(flags),
		newLuaCmd(flags),
		newColorCmd(),
		newAbbrevCmd(),
		newCommasCmd(),
		newGUIDCmd(),
	)
	return root, flags
}

// newClient builds a Client that logs to the command's error stream.
func newClient(cmd *cobra.Command, flags *rootFlags) (*webhelpers.Client, error) {
	level, err := webhelpers.ParseLevel(flags.logLevel)
	if err != nil {
		return nil, err
	}

	opts := webhelpers.DefaultOptions()
	opts.Timeout = flags.timeout
	opts.StrictJobs = flags.strict
	if flags.logJSON {
		opts.Logger = webhelpers.JSONLogger(cmd.ErrOrStderr(), level)
	} else {
		opts.Logger = webhelpers.TextLogger(cmd.ErrOrStderr(), level)
	}
	return webhelpers.New(opts)
}

func newMergeCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <job.yaml>",
		Short: "Run a merge job once",
		Long: `Loads a YAML job, merges its layers and writes the image to the job's
output path. Without an output path the data URL is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd, flags)
			if err != nil {
				return err
			}
			res, err := client.RunJobFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printJobResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	addStrictFlag(cmd, flags)
	return cmd
}

func addStrictFlag(cmd *cobra.Command, flags *rootFlags) {
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "Fail on job warnings such as an unknown output format")
}

func printJobResult(w io.Writer, res webhelpers.JobResult) {
	switch {
	case res.Output != "":
		fmt.Fprintf(w, "wrote %s (%d layers)\n", res.Output, res.Layers)
	case res.DataURL != "":
		fmt.Fprintln(w, res.DataURL)
	default:
		fmt.Fprintln(w, "no layers to merge")
	}
}

func newWatchCmd(flags *rootFlags) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <job.yaml>",
		Short: "Re-run a merge job whenever its file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd, flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()
			return client.WatchJob(cmd.Context(), args[0], debounce, func(res webhelpers.JobResult, err error) {
				if err != nil {
					fmt.Fprintf(errOut, "Error: %v\n", err)
					return
				}
				printJobResult(out, res)
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", webhelpers.DefaultWatchDebounce, "Quiet period before re-running")
	addStrictFlag(cmd, flags)
	return cmd
}

func newLuaCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "lua <script.lua>",
		Short: "Run a Lua script with the helpers table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd, flags)
			if err != nil {
				return err
			}
			res, err := client.RunScript(cmd.Context(), args[0], cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if res.Value != nil {
				fmt.Fprintln(cmd.OutOrStdout(), res.Value)
			}
			return nil
		},
	}
}

func newColorCmd() *cobra.Command {
	var stops []string

	cmd := &cobra.Command{
		Use:   "color <fraction>",
		Short: "Print the gradient color for a fraction in [0, 1]",
		Long: `Prints the color at a fraction of a piecewise-linear gradient. Without
--stop the red-yellow-green ramp is used. Stops may be given in any order.`,
		Example: `  webhelpers color 0.4
  webhelpers color 0.25 --stop 0=#0000ff --stop 1=white`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pct, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid fraction %q: %w", args[0], err)
			}
			if len(stops) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), webhelpers.ColorForPercentage(pct, nil))
				return nil
			}
			g, err := parseGradient(stops)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), g.Hex(pct))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&stops, "stop", nil, "Gradient stop as fraction=color (repeatable)")
	return cmd
}

// parseGradient builds a gradient from "fraction=color" specs. Fractions
// must be distinct.
func parseGradient(specs []string) (*webhelpers.Gradient, error) {
	g := new(webhelpers.Gradient)
	for _, spec := range specs {
		frac, clr, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("invalid stop %q: want fraction=color", spec)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(frac), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid stop fraction %q: %w", frac, err)
		}
		c, err := webhelpers.ParseColor(clr)
		if err != nil {
			return nil, fmt.Errorf("invalid stop color %q: %w", clr, err)
		}
		g.AddStop(f, c)
	}

	sorted := g.Stops()
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Fraction == sorted[i-1].Fraction {
			return nil, fmt.Errorf("duplicate stop fraction %v", sorted[i].Fraction)
		}
	}
	return g, nil
}

func newAbbrevCmd() *cobra.Command {
	var (
		maxPlaces   int
		forcePlaces int
		letter      string
		annotate    bool
	)

	cmd := &cobra.Command{
		Use:   "abbrev <number>",
		Short: "Abbreviate a number with a K/M/B/T suffix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid number %q: %w", args[0], err)
			}
			format := webhelpers.AbbreviateNumber
			if annotate {
				if letter == "" {
					return errors.New("--annotate requires --letter")
				}
				format = webhelpers.AnnotateNumber
			}
			fmt.Fprintln(cmd.OutOrStdout(), format(n, maxPlaces, forcePlaces, letter))
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&maxPlaces, "max-places", webhelpers.NoPlaces, "Maximum fraction digits (-1 for no limit)")
	f.IntVar(&forcePlaces, "force-places", webhelpers.NoPlaces, "Exact fraction digits (-1 to disable)")
	f.StringVar(&letter, "letter", "", "Force a suffix (K, M, B, T, q, Q)")
	f.BoolVar(&annotate, "annotate", false, "Divide by the scale of --letter without picking a suffix automatically")
	return cmd
}

func newCommasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commas <number>",
		Short: "Group the integer digits of a number with commas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid number %q: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), webhelpers.NumberWithCommas(n))
			return nil
		},
	}
}

func newGUIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guid",
		Short: "Print a random identifier",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), webhelpers.GUID())
		},
	}
}
