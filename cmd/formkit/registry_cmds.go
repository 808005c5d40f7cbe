package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formkit/internal/prompt"
	"github.com/goliatone/go-formkit/pkg/registry"
	"github.com/goliatone/go-formkit/pkg/render"
)

var errValidationFailed = errors.New("validation failed")

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the registrations built from the stored document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.openRegistry()
			if err != nil {
				return err
			}
			regs, err := svc.Load(commandContext(cmd))
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.writeJSON(cmd.OutOrStdout(), regs)
			}
			if !svc.Enabled() {
				fmt.Fprintln(cmd.OutOrStdout(), "registry disabled")
				return nil
			}
			return printRegistrations(cmd.OutOrStdout(), regs)
		},
	}
}

func printRegistrations(w io.Writer, regs registry.Registrations) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Post types (%d)\n", len(regs.PostTypes))
	for _, pt := range regs.PostTypes {
		fmt.Fprintf(tw, "  %s\t%s\tslug=%s\ttaxonomies=%s\n", pt.ID, pt.Plural, pt.Slug, strings.Join(pt.Taxonomies, ","))
	}
	fmt.Fprintf(tw, "Taxonomies (%d)\n", len(regs.Taxonomies))
	for _, tax := range regs.Taxonomies {
		fmt.Fprintf(tw, "  %s\t%s\tslug=%s\tpost_types=%s\n", tax.ID, tax.Plural, tax.Slug, strings.Join(tax.PostTypes, ","))
	}
	fmt.Fprintf(tw, "Meta boxes (%d)\n", len(regs.MetaBoxes))
	for _, box := range regs.MetaBoxes {
		fmt.Fprintf(tw, "  %s\t%s\tcontext=%s\tscreens=%s\n", box.ID, box.Title, box.Context, strings.Join(box.Screens, ","))
	}
	return tw.Flush()
}

func (a *app) validateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the stored document or a document file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var doc registry.Document
			if file != "" {
				raw, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read %s: %w", file, err)
				}
				if doc, err = registry.Decode(raw); err != nil {
					return err
				}
			} else {
				svc, err := a.openRegistry()
				if err != nil {
					return err
				}
				if doc, err = svc.Document(commandContext(cmd)); err != nil {
					return err
				}
			}

			errs := registry.Validate(doc)
			if a.jsonOutput {
				if err := a.writeJSON(cmd.OutOrStdout(), render.FromValidation(errs)); err != nil {
					return err
				}
			} else {
				for _, fe := range errs {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", fe.Field, fe.Message)
				}
			}
			if errs.Failed() {
				return fmt.Errorf("%w: %d error(s)", errValidationFailed, len(errs))
			}
			if !a.jsonOutput {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "validate this file instead of the stored document")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored document with a JSON, YAML or serialized file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			doc, err := registry.Decode(raw)
			if err != nil {
				return err
			}
			return a.save(cmd, doc)
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored document as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.openRegistry()
			if err != nil {
				return err
			}
			doc, err := svc.Document(commandContext(cmd))
			if err != nil {
				return err
			}

			var payload []byte
			switch strings.ToLower(format) {
			case "json":
				payload, err = doc.EncodeJSON()
				payload = append(payload, '\n')
			case "yaml", "yml":
				payload, err = doc.EncodeYAML()
			default:
				return fmt.Errorf("unknown format %q (json or yaml)", format)
			}
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(payload)
				return err
			}
			if err := os.WriteFile(output, payload, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			a.logger.WithField("file", output).Info("exported document")
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "add <post_types|taxonomies|meta_boxes>",
		Short:     "Interactively add a post type, taxonomy or meta box",
		Args:      cobra.ExactArgs(1),
		ValidArgs: registry.Collections,
		RunE: func(cmd *cobra.Command, args []string) error {
			collection := args[0]
			svc, err := a.openRegistry()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			doc, err := svc.Document(ctx)
			if err != nil {
				return err
			}

			entry, err := prompt.NewWizard(a.newDriver()).Entry(ctx, collection)
			if errors.Is(err, prompt.ErrAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "aborted")
				return nil
			}
			if err != nil {
				return err
			}

			key := doc.Append(collection, entry)
			a.logger.WithFields(logrus.Fields{"collection": collection, "key": key}).Debug("appended entry")
			return a.save(cmd, doc)
		},
	}
}

// save stores doc through the registry service and reports the outcome.
// Validation problems are printed but do not fail the command; the document
// is saved either way.
func (a *app) save(cmd *cobra.Command, doc registry.Document) error {
	svc, err := a.openRegistry()
	if err != nil {
		return err
	}
	result, err := svc.Update(commandContext(cmd), map[string]any{svc.OptionName(): doc.Raw()})
	if err != nil {
		return err
	}
	if a.jsonOutput {
		return a.writeJSON(cmd.OutOrStdout(), result)
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Message)
	for _, fe := range result.Errors {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", fe.Field, fe.Message)
	}
	return nil
}
