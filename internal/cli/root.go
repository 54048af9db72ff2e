// Package cli implements the wprefs command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ihatemodels/wprefs/internal/config"
	"github.com/ihatemodels/wprefs/internal/logging"
	"github.com/ihatemodels/wprefs/internal/store"
	"github.com/ihatemodels/wprefs/internal/task"
	"github.com/ihatemodels/wprefs/internal/theme"
	"github.com/ihatemodels/wprefs/internal/ui/app"
	"github.com/ihatemodels/wprefs/internal/ui/styles"
	"github.com/ihatemodels/wprefs/internal/uiconfig"
)

// env is the state shared by every subcommand.
type env struct {
	version string
	cfgFile string
	v       *viper.Viper

	settings config.Settings
	logger   *log.Logger
	kv       store.KV
	sheet    *theme.Sheet
	applier  *theme.Applier
	prefs    *uiconfig.Store

	mu       sync.Mutex
	failures []error
}

// NewRootCmd builds the command tree. The returned close function flushes
// pending saves and releases the store; it must run after Execute.
func NewRootCmd(version string) (*cobra.Command, func() error) {
	e := &env{version: version, v: config.NewViper()}

	root := &cobra.Command{
		Use:   "wprefs",
		Short: "Inspect and change wallet UI preferences",
		Long: `wprefs reads and toggles the wallet front-end UI preferences:
the advanced IBC transfer control and the dark theme.

Run without arguments for the interactive settings screen.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			return e.open(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return e.runTUI(cmd)
			}
			return e.show(cmd, "text")
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&e.cfgFile, "config", "", "config file (default is <data-dir>/config.yaml)")
	flags.String("backend", store.BackendFile, "storage backend: file, bolt, postgres or memory")
	flags.String("data-dir", "", "directory for the file and bolt backends (default ~/.wprefs)")
	flags.String("dsn", "", "PostgreSQL DSN for the postgres backend")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "only log warnings and errors")
	flags.Bool("no-color", false, "disable colored log output")

	for key, flag := range map[string]string{
		"backend":  "backend",
		"data_dir": "data-dir",
		"dsn":      "dsn",
		"verbose":  "verbose",
		"quiet":    "quiet",
		"no_color": "no-color",
	} {
		_ = e.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newShowCmd(e),
		newSetCmd(e),
		newResetCmd(e),
		newCSSCmd(e),
		newVersionCmd(e),
	)
	return root, e.close
}

// Execute runs the CLI.
func Execute(version string) error {
	root, closeEnv := NewRootCmd(version)
	err := root.Execute()
	if cerr := closeEnv(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render("Error: "+err.Error()))
		return err
	}
	return nil
}

func (e *env) open(cmd *cobra.Command) error {
	settings, err := config.Load(e.v, e.cfgFile)
	if err != nil {
		return err
	}
	e.settings = settings
	e.logger = logging.New(cmd.ErrOrStderr(), logging.Options{
		Verbose: settings.Verbose,
		Quiet:   settings.Quiet,
		NoColor: settings.NoColor,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	kv, err := store.Open(ctx, settings.StoreSettings())
	if err != nil {
		return fmt.Errorf("opening %s store: %w", settings.Backend, err)
	}
	e.kv = kv
	e.logger.Debug("store opened", "backend", settings.Backend, "dir", settings.DataDir)

	e.sheet = theme.NewSheet()
	e.applier = theme.NewApplier(e.sheet)
	e.prefs = uiconfig.New(kv, e.applier,
		uiconfig.WithLogger(e.logger),
		uiconfig.WithRunner(task.NewRunner(ctx, e.recordFailure)))
	return nil
}

func (e *env) recordFailure(name string, err error) {
	e.logger.Warn("ui config task failed", "task", name, "error", err)
	e.mu.Lock()
	e.failures = append(e.failures, fmt.Errorf("%s: %w", name, err))
	e.mu.Unlock()
}

// settle waits for pending loads and saves and returns their failures.
func (e *env) settle() error {
	if e.prefs == nil {
		return nil
	}
	_ = e.prefs.Close()

	e.mu.Lock()
	defer e.mu.Unlock()
	err := errors.Join(e.failures...)
	e.failures = nil
	return err
}

func (e *env) close() error {
	err := e.settle()
	if e.kv != nil {
		if cerr := e.kv.Close(); cerr != nil && err == nil {
			err = cerr
		}
		e.kv = nil
	}
	return err
}

func (e *env) runTUI(cmd *cobra.Command) error {
	if err := e.settle(); err != nil {
		e.logger.Warn("continuing with default preferences", "error", err)
	}

	kb, err := config.LoadKeybindings(cmd.Context(), e.kv)
	if err != nil {
		e.logger.Warn("could not load keybindings, using defaults", "error", err)
		kb = config.DefaultKeybindings()
	}

	// Put the stored palette on the sheet before the first frame.
	e.applier.Apply(e.prefs.ShowDarkMode())

	m := app.New(e.prefs, e.sheet, kb, e.version)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running settings screen: %w", err)
	}
	return nil
}
