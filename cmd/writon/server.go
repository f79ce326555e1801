// cmd/writon/server.go
package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"writon/internal/session"
)

func newHealthCmd(g *globals) *cobra.Command {
	var (
		provider string
		key      string
	)

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the server accepts your API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.open(false)
			if err != nil {
				return err
			}
			defer e.Close()

			ctrl := e.controller(session.WithoutPersistence())
			defer ctrl.Close()

			if provider != "" {
				if err := applyCommand(ctrl, parsePref("provider", provider)); err != nil {
					return err
				}
			}
			if key != "" {
				ctrl.SetAPIKey(key)
			}

			state := ctrl.CheckNow(cmd.Context())
			cfg := ctrl.Configuration()
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %s)\n", state.Text(), cfg.Provider, e.client.BaseURL())
			if state.Status != session.Connected {
				return fmt.Errorf("API key check failed: %s", state.Text())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&provider, "provider", "p", "", "Check this provider instead of the saved one")
	cmd.Flags().StringVar(&key, "key", "", "Check this key instead of the saved one")
	return cmd
}

func newUploadCmd(g *globals) *cobra.Command {
	var scratch bool

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Extract a file's text through the server",
		Long: `Send a file to the server's /upload endpoint and print the extracted text.
With --scratch the text is also stored as the TUI's unsaved input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.open(false)
			if err != nil {
				return err
			}
			defer e.Close()

			text, err := uploadText(cmd.Context(), e.client, args[0])
			if err != nil {
				return err
			}
			if scratch {
				e.prefs.SaveScratchNow(text)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&scratch, "scratch", false, "Load the text into the TUI input")
	return cmd
}

func newProvidersCmd(g *globals) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Show the providers, modes and case styles the server supports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.open(false)
			if err != nil {
				return err
			}
			defer e.Close()

			info, err := e.client.Providers(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			fmt.Fprintf(out, "Providers: %s\n", strings.Join(info.AvailableProviders, ", "))
			fmt.Fprintf(out, "Current:   %s\n", info.CurrentProvider)
			fmt.Fprintf(out, "Modes:     %s\n", strings.Join(info.SupportedModes, ", "))
			fmt.Fprintf(out, "Cases:     %s\n", strings.Join(info.SupportedCases, ", "))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
