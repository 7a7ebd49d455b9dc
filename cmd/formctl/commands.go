package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"formassist/internal/catalog"
	"formassist/internal/form"
	"formassist/internal/model"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	catalogDir string
}

func (o *rootOptions) loadCatalog() (*catalog.Catalog, error) {
	if o.catalogDir == "" {
		return catalog.Embedded()
	}
	return catalog.Load(os.DirFS(o.catalogDir))
}

// sessionFlags are shared by commands that rebuild a session from a file
type sessionFlags struct {
	moduleID string
	lang     string
	progress string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.moduleID, "module", "", "module id (default: the module named in the progress file)")
	cmd.Flags().StringVar(&f.lang, "lang", "", "output language: en, cy or pl")
	cmd.Flags().StringVar(&f.progress, "progress", "", "progress entries or a JSON export (\"-\" for stdin)")
}

// load restores a store from the progress file. The file is either a JSON
// array of progress entries or a structured export document.
func (f *sessionFlags) load(cmd *cobra.Command, cat *catalog.Catalog) (*model.Module, *form.Store, error) {
	var entries []model.ProgressEntry
	moduleID, lang := f.moduleID, f.lang

	if f.progress != "" {
		data, err := readInput(cmd, f.progress)
		if err != nil {
			return nil, nil, err
		}
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &entries); err != nil {
				return nil, nil, fmt.Errorf("parse progress: %w", err)
			}
		} else {
			doc, err := form.ParseDocument(trimmed)
			if err != nil {
				return nil, nil, err
			}
			entries = form.DocumentProgress(doc)
			if moduleID == "" {
				moduleID = doc.ModuleID
			}
			if lang == "" {
				lang = string(doc.Locale)
			}
		}
	}

	if moduleID == "" {
		return nil, nil, fmt.Errorf("--module is required")
	}
	m, ok := cat.Get(moduleID)
	if !ok {
		return nil, nil, fmt.Errorf("unknown module %q", moduleID)
	}

	locale := model.DefaultLocale
	if lang != "" {
		locale = form.MatchLocale(lang)
	}
	store := form.NewStore(m, locale)
	store.Restore(entries)
	return m, store, nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check module definitions for broken references and missing text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			problems := catalog.Validate(cat)
			for _, p := range problems {
				fmt.Fprintln(cmd.OutOrStdout(), p.String())
			}
			if len(problems) > 0 {
				return fmt.Errorf("%d problem(s) in %d module(s)", len(problems), cat.Len())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d module(s) ok\n", cat.Len())
			return nil
		},
	}
}

func newPromptCmd(opts *rootOptions) *cobra.Command {
	var flags sessionFlags
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the review prompt for saved progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			m, store, err := flags.load(cmd, cat)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), form.BuildReviewPrompt(m, store.Locale(), store))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		flags      sessionFlags
		format     string
		reviewPath string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render saved progress as a JSON document or a Markdown transcript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			m, store, err := flags.load(cmd, cat)
			if err != nil {
				return err
			}

			var review *model.ReviewRecord
			if reviewPath != "" {
				data, err := readInput(cmd, reviewPath)
				if err != nil {
					return err
				}
				var r model.ReviewRecord
				if err := json.Unmarshal(data, &r); err != nil {
					return fmt.Errorf("parse review: %w", err)
				}
				review = &r
			}

			switch model.ExportFormat(format) {
			case model.ExportJSON:
				data, err := form.MarshalDocument(form.BuildDocument(m, store.Locale(), store, review))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			case model.ExportTranscript:
				fmt.Fprint(cmd.OutOrStdout(), form.Transcript(m, store.Locale(), store, review))
			default:
				return fmt.Errorf("unknown format %q (want json or transcript)", format)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", string(model.ExportJSON), "json or transcript")
	cmd.Flags().StringVar(&reviewPath, "review", "", "normalized review JSON to include")
	return cmd
}

func newNormalizeCmd(opts *rootOptions) *cobra.Command {
	var (
		moduleID string
		lang     string
	)
	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Normalize a raw review response against the default review",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			if _, ok := cat.Get(moduleID); !ok {
				return fmt.Errorf("unknown module %q", moduleID)
			}

			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			raw, err := readInput(cmd, path)
			if err != nil {
				return err
			}

			review, warnings := form.NormalizeReview(moduleID, form.MatchLocale(lang), raw)
			for _, w := range warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
			}
			out, err := json.MarshalIndent(review, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&moduleID, "module", "", "module id")
	cmd.Flags().StringVar(&lang, "lang", string(model.DefaultLocale), "review language")
	_ = cmd.MarkFlagRequired("module")
	return cmd
}
