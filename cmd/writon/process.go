// cmd/writon/process.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"writon/internal/api"
	"writon/internal/commands"
	"writon/internal/export"
	"writon/internal/input"
	"writon/internal/session"
)

// processFlags override saved preferences for a single run
type processFlags struct {
	mode     string
	provider string
	model    string
	caseName string
	lang     string
	key      string

	saveDir string
	asJSON  bool
	copy    bool
}

func (f *processFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.mode, "mode", "m", "", "grammar, translate, summarize or process")
	fl.StringVarP(&f.provider, "provider", "p", "", "groq, openai, google or anthropic")
	fl.StringVar(&f.model, "model", "", "Model name (empty uses the provider default)")
	fl.StringVarP(&f.caseName, "case", "c", "", "sentence, lower, upper or title")
	fl.StringVarP(&f.lang, "lang", "l", "", "Translation target language")
	fl.StringVar(&f.key, "key", "", "API key (default: saved key, or $WRITON_API_KEY)")
	fl.StringVarP(&f.saveDir, "save", "o", "", "Also write a text report into this directory")
	fl.BoolVar(&f.asJSON, "json", false, "Print the full result as JSON")
	fl.BoolVar(&f.copy, "copy", false, "Copy the processed text to the clipboard")
}

// apply routes each set flag through the slash-command parser so the CLI
// accepts exactly what the TUI accepts
func (f *processFlags) apply(cmd *cobra.Command, ctrl *session.Controller) error {
	key := f.key
	if key == "" {
		key = os.Getenv("WRITON_API_KEY")
	}
	if key != "" {
		ctrl.SetAPIKey(key)
	}

	overrides := []struct {
		flag, command string
	}{
		{"provider", "/provider " + f.provider},
		{"mode", "/mode " + f.mode},
		{"case", "/case " + f.caseName},
		{"lang", "/lang " + f.lang},
	}
	for _, o := range overrides {
		if !cmd.Flags().Changed(o.flag) {
			continue
		}
		if err := applyCommand(ctrl, commands.Parse(o.command)); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("model") {
		ctrl.SetModel(f.model)
	}
	return nil
}

// applyCommand applies a preference command to the controller
func applyCommand(ctrl *session.Controller, c commands.Command) error {
	switch c := c.(type) {
	case commands.ParseError:
		return fmt.Errorf("%s", c.Message)
	case commands.SetMode:
		ctrl.SetMode(c.Mode)
	case commands.SetProvider:
		ctrl.SetProvider(c.Provider)
	case commands.SetModel:
		ctrl.SetModel(c.Model)
	case commands.SetKey:
		ctrl.SetAPIKey(c.Key)
	case commands.SetCase:
		ctrl.SetCaseStyle(c.Style)
	case commands.SetLanguage:
		ctrl.SetTargetLanguage(c.Target)
		if c.Custom != "" {
			ctrl.SetCustomLanguage(c.Custom)
		}
	default:
		return fmt.Errorf("not a preference: %s", c.Type())
	}
	return nil
}

// emit prints the result and performs the optional save and copy
func (f *processFlags) emit(cmd *cobra.Command, r *api.ProcessResult) error {
	out := cmd.OutOrStdout()
	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, r.ProcessedText)
	}

	if f.saveDir != "" {
		path, err := export.WriteReport(&export.Report{
			Original:       r.OriginalText,
			Processed:      r.ProcessedText,
			Mode:           r.Mode,
			CaseStyle:      r.CaseStyle,
			Provider:       r.Provider,
			TargetLanguage: r.TargetLanguage,
		}, input.ExpandHome(f.saveDir))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", path)
	}

	if f.copy {
		if err := clipboard.WriteAll(r.ProcessedText); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
	}
	return nil
}

func newProcessCmd(g *globals) *cobra.Command {
	var (
		flags processFlags
		file  string
	)

	cmd := &cobra.Command{
		Use:   "process [text...]",
		Short: "Process text once and print the result",
		Long: `Process text given as arguments, read from a file with -f, or piped on stdin.

Flags override the saved preferences for this run only; use "writon config set"
to change them permanently. Files that are not plain text (PDF, DOCX...) are
sent to the server's /upload endpoint for extraction first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.open(false)
			if err != nil {
				return err
			}
			defer e.Close()

			text, err := readText(cmd, e.client, file, args)
			if err != nil {
				return err
			}

			ctrl := e.controller(session.WithoutPersistence())
			defer ctrl.Close()

			if err := flags.apply(cmd, ctrl); err != nil {
				return err
			}
			ctrl.SetText(text)

			result, err := ctrl.Submit(cmd.Context())
			if err != nil {
				return err
			}
			return flags.emit(cmd, result)
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the text from a file")
	return cmd
}

// readText picks the input: a file, the arguments, or stdin
func readText(cmd *cobra.Command, server uploader, file string, args []string) (string, error) {
	switch {
	case file != "":
		if input.NeedsUpload(file) {
			return uploadText(cmd.Context(), server, file)
		}
		return input.LoadFile(file)
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		in := cmd.InOrStdin()
		if f, ok := in.(*os.File); ok {
			if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
				return "", fmt.Errorf("no text given: pass it as arguments, with -f, or on stdin")
			}
		}
		return input.ReadInput(in)
	}
}

type uploader interface {
	UploadFile(ctx context.Context, name string, r io.Reader) (*api.UploadResult, error)
}

// uploadText sends a file to /upload and returns the extracted text
func uploadText(ctx context.Context, server uploader, path string) (string, error) {
	f, name, err := input.OpenForUpload(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	result, err := server.UploadFile(ctx, name, f)
	if err != nil {
		return "", err
	}
	return result.Content, nil
}
