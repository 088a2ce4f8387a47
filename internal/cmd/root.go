package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/turbolytics/arquivo/internal/client"
	"github.com/turbolytics/arquivo/internal/config"
	"github.com/turbolytics/arquivo/internal/logging"
	"github.com/turbolytics/arquivo/internal/period"
	"github.com/turbolytics/arquivo/internal/session"
)

const envPrefix = "ARQUIVO"

// app carries the flag and environment bindings shared by every command.
type app struct {
	v *viper.Viper
}

func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	var cmd = &cobra.Command{
		Use:   "arquivo",
		Short: "Lists, inspects, uploads and exports files sent to the arquivo backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Path to config file")
	cmd.PersistentFlags().String("api-url", "", "Base URL of the arquivo backend")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	a.v.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	a.v.BindPFlag("api_url", cmd.PersistentFlags().Lookup("api-url"))
	a.v.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	cmd.AddCommand(newListCommand(a))
	cmd.AddCommand(newShowCommand(a))
	cmd.AddCommand(newUploadCommand(a))
	cmd.AddCommand(newExportCommand(a))
	cmd.AddCommand(newServeCommand(a))
	cmd.AddCommand(newLoginCommand(a))
	cmd.AddCommand(newLogoutCommand(a))
	cmd.AddCommand(newTUICommand(a))
	cmd.AddCommand(newPeriodCommand())

	return cmd
}

// loadDotEnv reads a .env file from the working directory when present.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: reading .env: %v\n", err)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.OnInitialize(loadDotEnv)

	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// config reads the config file and applies flag and environment overrides.
func (a *app) config() (*config.Arquivo, error) {
	c, err := config.NewFromFile(a.v.GetString("config"))
	if err != nil {
		return nil, err
	}
	if u := a.v.GetString("api_url"); u != "" {
		c.API.BaseURL = u
	}
	if lvl := a.v.GetString("log_level"); lvl != "" {
		c.Logger.Level = lvl
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (a *app) logger(c *config.Arquivo, name string) (*zap.Logger, error) {
	logger, err := logging.New(c.Logger.Level)
	if err != nil {
		return nil, err
	}
	return logger.Named("arquivo." + name), nil
}

// setup loads config and builds the named logger for a command.
func (a *app) setup(name string) (*config.Arquivo, *zap.Logger, error) {
	c, err := a.config()
	if err != nil {
		return nil, nil, err
	}
	l, err := a.logger(c, name)
	if err != nil {
		return nil, nil, err
	}
	return c, l, nil
}

func newClient(c *config.Arquivo, l *zap.Logger) (*client.Client, error) {
	mode, err := period.ParseMode(c.API.DateMode)
	if err != nil {
		return nil, err
	}
	return client.New(
		c.API.BaseURL,
		client.WithLogger(l),
		client.WithTimeout(c.API.Timeout),
		client.WithDateMode(mode),
	)
}

func newStore(c *config.Arquivo, l *zap.Logger) *session.Store {
	return session.NewStore(c.Session.Path, session.WithLogger(l))
}

// withSession attaches the saved session to ctx. Without a saved session the
// context is returned unchanged and requests go out anonymously.
func withSession(ctx context.Context, c *config.Arquivo, l *zap.Logger) (context.Context, error) {
	sess, err := newStore(c, l).Load(ctx, time.Now())
	switch {
	case errors.Is(err, session.ErrNoSession):
		return ctx, nil
	case errors.Is(err, session.ErrExpired):
		return ctx, fmt.Errorf("session of %s expired, run arquivo login again: %w", sess.User, err)
	case err != nil:
		return ctx, fmt.Errorf("loading session: %w", err)
	}
	return session.WithContext(ctx, sess), nil
}

func periodFlags(cmd *cobra.Command, start, end *string) {
	cmd.Flags().StringVar(start, "start", "", "First day of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(end, "end", "", "Last day of the period (YYYY-MM-DD)")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")
}
