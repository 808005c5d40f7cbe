// Package prompt collects registration entries interactively for the CLI.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted signals the user aborted input (e.g. Ctrl+C).
var ErrAborted = errors.New("prompt: aborted")

// Field describes the document field a prompt fills. Key is the stored key
// the answer ends up under.
type Field struct {
	Key      string
	Label    string
	Help     string
	Default  string
	Validate func(string) error
}

// Driver asks for field values. Tests replace the terminal with scripted
// answers keyed by Field.Key.
type Driver interface {
	Text(ctx context.Context, field Field) (string, error)
	Flag(ctx context.Context, field Field, def bool) (bool, error)
	// Choose returns the index of the picked option.
	Choose(ctx context.Context, field Field, options []string) (int, error)
	// ChooseMany returns the indices of the picked options in option order.
	ChooseMany(ctx context.Context, field Field, options []string, defaults []int) ([]int, error)
	Info(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out io.Writer
}

// NewSurveyDriver returns a Driver backed by the terminal. Info messages go
// to out, or stdout when out is nil.
func NewSurveyDriver(out io.Writer) Driver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{out: out}
}

func (d *surveyDriver) Text(ctx context.Context, field Field) (string, error) {
	var out string
	prompt := &survey.Input{Message: field.Label, Help: field.Help, Default: field.Default}
	var opts []survey.AskOpt
	if field.Validate != nil {
		validate := field.Validate
		opts = append(opts, survey.WithValidator(func(ans any) error {
			text, _ := ans.(string)
			return validate(text)
		}))
	}
	if err := ask(ctx, prompt, &out, opts...); err != nil {
		return "", err
	}
	return out, nil
}

func (d *surveyDriver) Flag(ctx context.Context, field Field, def bool) (bool, error) {
	var out bool
	prompt := &survey.Confirm{Message: field.Label, Help: field.Help, Default: def}
	if err := ask(ctx, prompt, &out); err != nil {
		return false, err
	}
	return out, nil
}

func (d *surveyDriver) Choose(ctx context.Context, field Field, options []string) (int, error) {
	var out int
	prompt := &survey.Select{Message: field.Label, Help: field.Help, Options: options}
	if field.Default != "" {
		prompt.Default = field.Default
	}
	if err := ask(ctx, prompt, &out); err != nil {
		return -1, err
	}
	return out, nil
}

func (d *surveyDriver) ChooseMany(ctx context.Context, field Field, options []string, defaults []int) ([]int, error) {
	var out []int
	prompt := &survey.MultiSelect{Message: field.Label, Help: field.Help, Options: options}
	if len(defaults) > 0 {
		prompt.Default = defaults
	}
	if err := ask(ctx, prompt, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

// ask runs one survey prompt. Select answers written to ints hold the option
// index.
func ask(ctx context.Context, prompt survey.Prompt, out any, opts ...survey.AskOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := survey.AskOne(prompt, out, opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return ErrAborted
		}
		return err
	}
	return nil
}
