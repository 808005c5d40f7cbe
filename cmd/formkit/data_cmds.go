package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formkit/pkg/conditional"
	"github.com/goliatone/go-formkit/pkg/data"
)

func (a *app) castCmd() *cobra.Command {
	var rawJSON bool
	cmd := &cobra.Command{
		Use:   "cast <value> <type>",
		Short: "Convert a value to int, float, string, bool, json, serialize, array or object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, ok := data.ParseTarget(args[1])
			if !ok {
				return fmt.Errorf("unknown type %q", args[1])
			}
			var value any = args[0]
			if rawJSON {
				if err := json.Unmarshal([]byte(args[0]), &value); err != nil {
					return fmt.Errorf("decode value: %w", err)
				}
			}
			return a.printValue(cmd.OutOrStdout(), data.Cast(value, target))
		},
	}
	cmd.Flags().BoolVar(&rawJSON, "raw-json", false, "decode the value as JSON before casting")
	return cmd
}

func (a *app) walkCmd() *cobra.Command {
	var def string
	cmd := &cobra.Command{
		Use:   "walk <path> [json]",
		Short: "Resolve a dotted path in a JSON value or the stored document",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var container any
			if len(args) == 2 {
				if err := json.Unmarshal([]byte(args[1]), &container); err != nil {
					return fmt.Errorf("decode container: %w", err)
				}
			} else {
				svc, err := a.openRegistry()
				if err != nil {
					return err
				}
				doc, err := svc.Document(commandContext(cmd))
				if err != nil {
					return err
				}
				container = doc.Raw()
			}

			var fallback any
			if cmd.Flags().Changed("default") {
				fallback = def
			}
			return a.printValue(cmd.OutOrStdout(), data.Walk(args[0], container, fallback))
		},
	}
	cmd.Flags().StringVar(&def, "default", "", "value returned when the path is missing")
	return cmd
}

func (a *app) conditionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conditions <rule>...",
		Short: "Render a data-tr-conditions attribute",
		Long: `Each rule is "field", "field value" or "field operator value", optionally
prefixed with "and" or "or". Values that parse as JSON keep their type.

  formkit conditions "age > 18" "or vip"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := conditional.New()
			for _, arg := range args {
				if err := addRule(rules, arg); err != nil {
					return err
				}
			}
			if a.jsonOutput {
				encoded, err := rules.Encode()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), encoded)
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), rules.Attribute())
			return err
		},
	}
}

// addRule parses one rule expression and appends it to rules.
func addRule(rules *conditional.RuleSet, expr string) error {
	tokens := strings.Fields(expr)
	conjunction := conditional.And
	if len(tokens) > 0 {
		switch strings.ToLower(tokens[0]) {
		case "and":
			tokens = tokens[1:]
		case "or":
			conjunction = conditional.Or
			tokens = tokens[1:]
		}
	}

	var predicate conditional.Predicate
	switch len(tokens) {
	case 1:
		predicate = conditional.Truthy()
	case 2:
		predicate = conditional.Equals(ruleValue(tokens[1]))
	case 3:
		predicate = conditional.Compare(tokens[1], ruleValue(tokens[2]))
	default:
		return fmt.Errorf("invalid rule %q", expr)
	}
	rules.WhenJoined(tokens[0], predicate, conjunction)
	return nil
}

func ruleValue(token string) any {
	var value any
	if err := json.Unmarshal([]byte(token), &value); err == nil {
		return value
	}
	return token
}

// printValue writes strings as-is and everything else as JSON.
func (a *app) printValue(w io.Writer, value any) error {
	if text, ok := value.(string); ok && !a.jsonOutput {
		_, err := fmt.Fprintln(w, text)
		return err
	}
	return a.writeJSON(w, value)
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the formkit version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "formkit %s\n", version)
			return err
		},
	}
}
