package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formkit/pkg/render/template"
)

func (a *app) renderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render <template>",
		Short: "Render a pongo2 template with the stored document and its registrations",
		Long: `The template sees:

  document       the stored document as saved
  registrations  post_types, taxonomies and meta_boxes as registered
  supports       the admin "supports" choices
  errors         validation errors (use with the field_errors filter)
  menu, option   configuration values`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.openRegistry()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			doc, err := svc.Document(ctx)
			if err != nil {
				return err
			}
			regs, err := svc.Load(ctx)
			if err != nil {
				return err
			}

			engine, err := newTemplateEngine(args[0], svc.Menu(), svc.OptionName())
			if err != nil {
				return err
			}
			_, err = engine.RenderView(filepath.Base(args[0]), template.NewView(doc, regs), cmd.OutOrStdout())
			return err
		},
	}
}

func newTemplateEngine(path, menu, option string) (*template.Engine, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve template: %w", err)
	}
	opts := []template.Option{
		template.WithBaseDir(filepath.Dir(abs)),
		template.WithAdmin(menu, option),
	}
	if ext := filepath.Ext(abs); ext != "" {
		opts = append(opts, template.WithExtension(ext))
	}
	return template.New(opts...)
}
