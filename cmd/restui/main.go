package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/restui/internal/cli"
	"github.com/studiowebux/restui/internal/config"
	"github.com/studiowebux/restui/internal/executor"
	"github.com/studiowebux/restui/internal/history"
	"github.com/studiowebux/restui/internal/keybinds"
	"github.com/studiowebux/restui/internal/logging"
	"github.com/studiowebux/restui/internal/mock"
	"github.com/studiowebux/restui/internal/tui"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "restui [app-file]",
	Short: "restui - declarative UIs over REST APIs",
	Long: `restui turns an app file (YAML or JSON) describing sections, fields and
actions into a live terminal UI bound to a REST backend.

Run with an app file to start the interactive UI. Use render and invoke
for scripts, serve to run a mock backend while designing an app.

Examples:
  restui shop.yaml                           # Start the interactive UI
  restui render shop.yaml -o json            # Print the mounted view once
  restui invoke shop.yaml create Create -i name=Chair --yes
  restui serve routes.yaml --port 8080       # Start a mock backend
  restui history --limit 20                  # Show recorded requests`,
	Version:       version,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runTUI(cmd, args[0])
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui <app-file>",
	Short: "Start the interactive UI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args[0])
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <app-file>",
	Short: "Mount an app and print its view once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRender(cmd, args[0])
	},
}

var invokeCmd = &cobra.Command{
	Use:   "invoke <app-file> <section> <action>",
	Short: "Mount an app and run one action",
	Long: `Mount an app, fill inputs and run one action of a section.

Inputs are key=value pairs; a value starting with @ attaches a file.
Use --row to run an action of a list row (0 based).`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInvoke(cmd, args[0], args[1], args[2])
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve [routes-file]",
	Short: "Run a mock backend from a routes file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "routes.yaml"
		if len(args) > 0 {
			path = args[0]
		}
		return runServe(cmd, path)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistory(cmd)
	},
}

var keybindsCmd = &cobra.Command{
	Use:   "keybinds",
	Short: "Show the interactive UI keybindings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runKeybinds(cmd)
	},
}

// Global flags
var (
	flagBaseURL         string
	flagTimeout         time.Duration
	flagInsecure        bool
	flagHistory         bool
	flagLogLevel        string
	flagNoMockInference bool
	flagVerbose         bool
)

// Flags for render/invoke
var (
	flagOutput string
	flagRow    int
	flagInputs []string
	flagYes    bool
)

// Flags for serve
var (
	flagInit bool
	flagPort int
	flagHost string
)

// Flags for history
var (
	flagApp   string
	flagLimit int
	flagClear bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagBaseURL, "base-url", "", "Backend base URL (overrides settings)")
	pf.DurationVar(&flagTimeout, "timeout", 0, "Request timeout, e.g. 10s (overrides settings)")
	pf.BoolVar(&flagInsecure, "insecure", false, "Skip TLS certificate verification")
	pf.BoolVar(&flagHistory, "history", false, "Record requests in the history database")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug/info/warn/error)")
	pf.BoolVar(&flagNoMockInference, "no-mock-inference", false, "Never synthesize data for sections whose read fails")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output")

	for _, c := range []*cobra.Command{renderCmd, invokeCmd} {
		c.Flags().StringVarP(&flagOutput, "output", "o", "text", "Output format (text/json/yaml)")
	}
	invokeCmd.Flags().IntVar(&flagRow, "row", -1, "List row of a row action (0 based)")
	invokeCmd.Flags().StringArrayVarP(&flagInputs, "input", "i", []string{}, "Set input (key=value), can be repeated")
	invokeCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Confirm actions without asking")

	serveCmd.Flags().BoolVar(&flagInit, "init", false, "Write a sample routes file and exit")
	serveCmd.Flags().IntVarP(&flagPort, "port", "p", 0, "Port (overrides the routes file)")
	serveCmd.Flags().StringVar(&flagHost, "host", "", "Host (overrides the routes file)")

	historyCmd.Flags().StringVar(&flagApp, "app", "", "Only entries of this app title")
	historyCmd.Flags().IntVarP(&flagLimit, "limit", "n", 50, "Maximum entries (0 for all)")
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete every entry")
	historyCmd.Flags().StringVarP(&flagOutput, "output", "o", "text", "Output format (text/json)")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(invokeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(keybindsCmd)
}

// loadSettings initializes the config dir and applies flags over the
// settings file
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	if err := config.Initialize(); err != nil {
		return config.Settings{}, fmt.Errorf("failed to initialize config: %w", err)
	}
	s, err := config.LoadSettings(config.GetSettingsFilePath())
	if err != nil {
		return config.Settings{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		s.BaseURL = flagBaseURL
	}
	if flags.Changed("timeout") {
		s.Timeout = flagTimeout
	}
	if flags.Changed("insecure") {
		s.Insecure = flagInsecure
	}
	if flags.Changed("history") {
		s.History = flagHistory
	}
	if flags.Changed("log-level") {
		s.LogLevel = flagLogLevel
	}
	if flagNoMockInference {
		s.MockInference = false
	}
	if flagVerbose {
		s.LogLevel = "debug"
	}
	return s, nil
}

// signalContext is cancelled on interrupt
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// runTUI starts the interactive UI; logs go to the log file
func runTUI(cmd *cobra.Command, appPath string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log, closer, err := logging.NewFile(s.LogLevel, config.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	keys, err := keybinds.LoadOrDefault(keybinds.GetDefaultConfigPath(config.ConfigDir))
	if err != nil {
		return err
	}

	confirmer := tui.NewConfirmer()
	env, err := cli.Open(cli.Options{
		AppPath:     appPath,
		Settings:    s,
		HistoryPath: config.HistoryFile,
		Log:         log,
		Confirm:     confirmer.Confirm,
	})
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := signalContext()
	defer cancel()
	return tui.Run(ctx, env.Runtime, confirmer, tui.Options{Keys: keys, Log: log})
}

// stderrLogger logs CLI commands to stderr
func stderrLogger(s config.Settings) (*logrus.Logger, error) {
	return logging.New(s.LogLevel, os.Stderr)
}

// runRender prints the mounted view once
func runRender(cmd *cobra.Command, appPath string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log, err := stderrLogger(s)
	if err != nil {
		return err
	}
	env, err := cli.Open(cli.Options{AppPath: appPath, Settings: s, HistoryPath: config.HistoryFile, Log: log})
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := signalContext()
	defer cancel()
	return cli.Render(ctx, env, os.Stdout, flagOutput)
}

// runInvoke runs one action and prints its section
func runInvoke(cmd *cobra.Command, appPath, section, action string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log, err := stderrLogger(s)
	if err != nil {
		return err
	}
	env, err := cli.Open(cli.Options{
		AppPath:     appPath,
		Settings:    s,
		HistoryPath: config.HistoryFile,
		Log:         log,
		Confirm:     cli.Confirmer(flagYes, os.Stdin, os.Stderr),
	})
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := signalContext()
	defer cancel()
	return cli.Invoke(ctx, env, os.Stdout, cli.InvokeOptions{
		Section: section,
		Action:  action,
		Row:     flagRow,
		Inputs:  flagInputs,
		Format:  flagOutput,
	})
}

// runServe starts the mock backend until interrupted
func runServe(cmd *cobra.Command, path string) error {
	if flagInit {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := mock.SaveConfig(mock.SampleConfig(), path); err != nil {
			return err
		}
		fmt.Printf("Wrote sample routes to %s\n", path)
		return nil
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("log-level") && !flagVerbose {
		s.LogLevel = "info"
	}
	log, err := stderrLogger(s)
	if err != nil {
		return err
	}

	cfg, err := mock.LoadConfig(path)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = flagPort
	}
	if cmd.Flags().Changed("host") {
		cfg.Host = flagHost
	}

	server := mock.NewServer(cfg, filepath.Dir(path), log)
	if err := server.Start(); err != nil {
		return err
	}
	fmt.Printf("Mock backend listening on %s (%d routes)\n", server.GetAddress(), len(cfg.Routes))

	ctx, cancel := signalContext()
	defer cancel()
	<-ctx.Done()

	stopCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	return server.Stop(stopCtx)
}

// runHistory lists or clears recorded requests
func runHistory(cmd *cobra.Command) error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	mgr, err := history.NewManager(config.HistoryFile, "")
	if err != nil {
		return err
	}
	defer mgr.Close()

	ctx, cancel := signalContext()
	defer cancel()

	if flagClear {
		if err := mgr.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("History cleared")
		return nil
	}

	entries, err := mgr.List(ctx, history.Filter{App: flagApp, Limit: flagLimit})
	if err != nil {
		return err
	}
	return writeHistory(os.Stdout, entries, flagOutput)
}

// writeHistory prints entries as a table or JSON
func writeHistory(w io.Writer, entries []history.Entry, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case "text", "":
		if len(entries) == 0 {
			_, err := fmt.Fprintln(w, "No history entries")
			return err
		}
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			status := strconv.Itoa(e.Status)
			if !e.OK && e.Error != "" {
				status += " " + e.Error
			}
			rows = append(rows, []string{
				e.Timestamp.Format("2006-01-02 15:04:05"),
				e.App,
				e.Method,
				e.URL,
				status,
				executor.FormatDuration(e.Duration),
			})
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("Time", "App", "Method", "URL", "Status", "Duration").
			Rows(rows...)
		_, err := fmt.Fprintln(w, t.String())
		return err

	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// runKeybinds prints the active keybindings as a keybinds file
func runKeybinds(cmd *cobra.Command) error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	path := keybinds.GetDefaultConfigPath(config.ConfigDir)
	keys, err := keybinds.LoadOrDefault(path)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(keybinds.ExportConfig(keys))
	if err != nil {
		return err
	}
	fmt.Printf("# %s\n%s", path, data)
	return nil
}
