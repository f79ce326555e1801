// cmd/writon/config.go
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"writon/internal/commands"
	"writon/internal/config"
	"writon/internal/db"
	"writon/internal/export"
	"writon/internal/input"
	"writon/internal/prefs"
	"writon/internal/provider"
)

// prefFields are the preferences "config set" accepts, named like the TUI's
// slash commands
var prefFields = []string{"provider", "key", "model", "mode", "case", "lang"}

func parsePref(field, value string) commands.Command {
	return commands.Parse("/" + field + " " + value)
}

func newConfigCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change saved preferences",
	}
	cmd.AddCommand(
		newConfigShowCmd(g),
		newConfigSetCmd(g),
		newConfigExportCmd(g),
		newConfigImportCmd(g),
		newConfigPathCmd(g),
		newConfigInitCmd(g),
	)
	return cmd
}

func newConfigShowCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the saved preferences and settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.open(false)
			if err != nil {
				return err
			}
			defer e.Close()

			cfg := e.prefs.Load()
			key := "not set"
			if strings.TrimSpace(cfg.APIKey) != "" {
				key = "set"
			}
			model := cfg.Model
			if model == "" {
				model = provider.ModelPlaceholder(cfg.Provider) + " (default)"
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "provider\t%s\n", provider.DisplayName(cfg.Provider))
			fmt.Fprintf(w, "key\t%s\n", key)
			fmt.Fprintf(w, "model\t%s\n", model)
			fmt.Fprintf(w, "mode\t%s\n", prefs.ModeLabel(cfg.Mode))
			fmt.Fprintf(w, "case\t%s\n", prefs.CaseLabel(cfg.CaseStyle))
			lang := cfg.TargetLanguage
			if lang == prefs.CustomLanguage {
				lang = cfg.CustomLanguage + " (custom)"
			}
			fmt.Fprintf(w, "lang\t%s\n", lang)
			fmt.Fprintf(w, "server\t%s\n", e.settings.Server.URL)
			fmt.Fprintf(w, "timeout\t%s\n", e.settings.RequestTimeout())
			fmt.Fprintf(w, "keyring\t%t\n", e.settings.Storage.Keyring)
			return w.Flush()
		},
	}
}

func newConfigSetCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "set <field> [value...]",
		Short: "Save a preference: " + strings.Join(prefFields, ", "),
		Long: `Save a preference. Fields match the TUI slash commands:

  writon config set provider anthropic
  writon config set key sk-ant-...        # a lone "-" reads the key from stdin
  writon config set model                 # empty restores the provider default
  writon config set lang Old Norse        # names outside the list become custom`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field := strings.ToLower(args[0])
			if !slices.Contains(prefFields, field) {
				return fmt.Errorf("unknown field %q, want one of: %s", args[0], strings.Join(prefFields, ", "))
			}
			value := strings.Join(args[1:], " ")
			if field == "key" && value == "-" {
				text, err := input.ReadInput(cmd.InOrStdin())
				if err != nil {
					return err
				}
				value = strings.TrimSpace(text)
			}

			e, err := g.open(false)
			if err != nil {
				return err
			}
			defer e.Close()

			ctrl := e.controller()
			defer ctrl.Close()

			if err := applyCommand(ctrl, parsePref(field, value)); err != nil {
				return err
			}
			if field == "key" {
				fmt.Fprintln(cmd.OutOrStdout(), "API key saved")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s saved\n", field)
			return nil
		},
	}
}

func newConfigExportCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "export [dir]",
		Short: "Export preferences without the API key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = input.ExpandHome(args[0])
			}

			e, err := g.open(false)
			if err != nil {
				return err
			}
			defer e.Close()

			path, err := export.WriteConfig(e.prefs.Load(), dir, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration exported successfully! %s\n", path)
			return nil
		},
	}
}

func newConfigImportCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import preferences from an exported file, keeping the saved key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.open(false)
			if err != nil {
				return err
			}
			defer e.Close()

			next, err := export.ReadConfig(input.ExpandHome(args[0]), e.prefs.Load())
			if err != nil {
				return fmt.Errorf("Failed to import configuration: %w", err)
			}
			e.prefs.Save(next)
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration imported successfully!")
			return nil
		},
	}
}

func newConfigPathCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where settings, data and logs live",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := db.DataDir()
			if err != nil {
				return err
			}
			dbPath := g.settings.Storage.DBPath
			if dbPath == "" {
				dbPath = filepath.Join(dir, "writon.db")
			}
			logPath := g.settings.Logging.File
			if logPath == "" {
				logPath = filepath.Join(dir, "writon.log")
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "settings\t%s\n", g.settingsPath())
			fmt.Fprintf(w, "database\t%s\n", dbPath)
			fmt.Fprintf(w, "log\t%s\n", logPath)
			return w.Flush()
		},
	}
}

func newConfigInitCmd(g *globals) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := g.settingsPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := config.Default().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
