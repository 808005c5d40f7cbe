package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-formkit/internal/prompt"
	"github.com/goliatone/go-formkit/pkg/registry"
	"github.com/goliatone/go-formkit/pkg/store"
)

// app carries state shared by every command.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath  string
	storeDriver string
	storePath   string
	optionName  string
	logLevel    string
	jsonOutput  bool

	cfg     Config
	logger  *logrus.Logger
	store   store.Store
	service *registry.Service

	newDriver func() prompt.Driver
}

func newApp(stdout, stderr io.Writer) *app {
	a := &app{stdout: stdout, stderr: stderr}
	a.newDriver = func() prompt.Driver { return prompt.NewSurveyDriver(a.stderr) }
	return a
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "formkit",
		Short:         "Manage registered post types, taxonomies and meta boxes",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.teardown()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default: ./formkit.yaml or ./.formkit/formkit.yaml)")
	flags.StringVar(&a.storeDriver, "store-driver", "", "option store driver: file or sqlite")
	flags.StringVar(&a.storePath, "store-path", "", "option store path")
	flags.StringVar(&a.optionName, "option", "", "option name holding the registration document")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&a.jsonOutput, "json", false, "output as JSON")

	root.AddCommand(
		a.showCmd(),
		a.validateCmd(),
		a.importCmd(),
		a.exportCmd(),
		a.addCmd(),
		a.castCmd(),
		a.walkCmd(),
		a.conditionsCmd(),
		a.renderCmd(),
		a.versionCmd(),
	)
	return root
}

// setup resolves configuration and the logger. The store is opened lazily by
// commands that need it.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.configPath, func(v *viper.Viper) error {
		bindings := map[string]string{
			cfgKeyStoreDriver: "store-driver",
			cfgKeyStorePath:   "store-path",
			cfgKeyOptionName:  "option",
			cfgKeyLogLevel:    "log-level",
		}
		for key, name := range bindings {
			flag := cmd.Flags().Lookup(name)
			if flag == nil || !flag.Changed {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger := logrus.New()
	logger.SetOutput(a.stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger.SetLevel(level)
	a.logger = logger
	return nil
}

// openRegistry opens the configured store and returns the registry service.
func (a *app) openRegistry() (*registry.Service, error) {
	if a.service != nil {
		return a.service, nil
	}
	st, err := store.Open(a.cfg.StoreDriver, a.cfg.StorePath)
	if err != nil {
		return nil, err
	}
	a.store = st
	a.logger.WithFields(logrus.Fields{
		"driver": a.cfg.StoreDriver,
		"path":   a.cfg.StorePath,
	}).Debug("opened option store")

	a.service = registry.New(st,
		registry.WithOptionName(a.cfg.OptionName),
		registry.WithEnabled(a.cfg.Enabled),
		registry.WithMenu(a.cfg.Menu),
		registry.WithLogger(a.logger),
	)
	return a.service, nil
}

func (a *app) teardown() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	a.service = nil
	return err
}

func (a *app) writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
