package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ihatemodels/wprefs/internal/store"
	"github.com/ihatemodels/wprefs/internal/theme"
	"github.com/ihatemodels/wprefs/internal/ui/styles"
	"github.com/ihatemodels/wprefs/internal/uiconfig"
)

// Flag names accepted by set.
const (
	flagAdvancedIBC = "advanced-ibc"
	flagDarkMode    = "dark-mode"
)

func newShowCmd(e *env) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.show(cmd, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	return cmd
}

func newSetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:       "set <advanced-ibc|dark-mode> <true|false>",
		Short:     "Change one preference and persist it",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{flagAdvancedIBC, flagDarkMode},
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("invalid value %q for %s: expected true or false", args[1], args[0])
			}

			// Stored values replace in-memory ones on load, so the
			// load must finish before the change is made.
			if err := e.settle(); err != nil {
				return err
			}

			switch args[0] {
			case flagAdvancedIBC:
				e.prefs.SetShowAdvancedIBCTransfer(value)
			case flagDarkMode:
				e.prefs.SetDarkMode(value)
			default:
				return fmt.Errorf("unknown preference %q (expected %s or %s)", args[0], flagAdvancedIBC, flagDarkMode)
			}

			if err := e.settle(); err != nil {
				return err
			}
			e.logger.Debug("preference saved", "name", args[0], "value", value)
			return writeText(cmd.OutOrStdout(), e.prefs.Options())
		},
	}
}

func newResetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the stored preferences so the defaults apply again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.settle(); err != nil {
				return err
			}
			err := e.kv.Delete(cmd.Context(), uiconfig.OptionsKey)
			switch {
			case errors.Is(err, store.ErrNotFound):
				e.logger.Debug("nothing stored", "key", uiconfig.OptionsKey)
			case err != nil:
				return fmt.Errorf("removing stored preferences: %w", err)
			default:
				e.logger.Debug("stored preferences removed", "key", uiconfig.OptionsKey)
			}
			return writeText(cmd.OutOrStdout(), uiconfig.DefaultOptions())
		},
	}
}

func newCSSCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "css",
		Short: "Print the theme stylesheet for the current preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.settle(); err != nil {
				return err
			}
			e.applier.Apply(e.prefs.ShowDarkMode())
			_, err := fmt.Fprint(cmd.OutOrStdout(), e.sheet.String())
			return err
		},
	}
}

func newVersionCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wprefs %s\n", e.version)
		},
	}
}

func (e *env) show(cmd *cobra.Command, output string) error {
	if err := e.settle(); err != nil {
		return err
	}
	opts := e.prefs.Options()
	out := cmd.OutOrStdout()

	switch output {
	case "text":
		return writeText(out, opts)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(opts.Record())
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(opts.Record()); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (expected text, json or yaml)", output)
	}
}

func writeText(w io.Writer, opts uiconfig.Options) error {
	palette := theme.PaletteFor(opts.ShowDarkMode)
	_, err := fmt.Fprintf(w, "%s %s\n%s %s %s\n",
		styles.Label.Render(fmt.Sprintf("%-14s", flagAdvancedIBC)), styles.Toggle(opts.ShowAdvancedIBCTransfer),
		styles.Label.Render(fmt.Sprintf("%-14s", flagDarkMode)), styles.Toggle(opts.ShowDarkMode),
		styles.Dim.Render("("+palette.Name+")"))
	return err
}
