package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jongo-go/jongo"
	"github.com/jongo-go/jongo/pkg/logger"
)

type globalFlags struct {
	configFile string
	uri        string
	database   string
	logLevel   string
}

// app carries what subcommands share once the configuration is loaded.
type app struct {
	flags globalFlags
	cfg   *Config
	log   *logger.LogData
}

// Execute runs the CLI with args, stopping on SIGINT or SIGTERM.
func Execute(ctx context.Context, args []string) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "jongo",
		Short: "Render and run MongoDB query templates",
		Long: `jongo resolves shell-style query templates such as {age:{$gt:#}} with
positional parameters and runs them against a MongoDB collection.

Parameters are read as Extended JSON values; anything that does not parse is
taken as a string.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.load,
		PersistentPostRunE: a.close,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.flags.configFile, "config", "c", "", "YAML configuration file")
	flags.StringVar(&a.flags.uri, "uri", "", "MongoDB connection string (overrides $JONGO_MONGODB_URI)")
	flags.StringVarP(&a.flags.database, "database", "d", "", "database name (overrides $JONGO_DATABASE)")
	flags.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(newRenderCmd(a), newFindCmd(a), newCountCmd(a))
	return cmd
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(a.flags.configFile)
	if err != nil {
		return err
	}
	if a.flags.uri != "" {
		cfg.URI = a.flags.uri
	}
	if a.flags.database != "" {
		cfg.Database = a.flags.database
	}
	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
		if err := cfg.validate(); err != nil {
			return err
		}
	}

	build := logger.NewBuild().WithLevel(cfg.logLevel()).FromBuffer(cmd.ErrOrStderr())
	if cfg.Log.File != "" {
		build = build.FromPath(cfg.Log.File)
	}
	a.log, err = build.Make()
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) close(*cobra.Command, []string) error {
	if a.log == nil {
		return nil
	}
	return a.log.Close()
}

func (a *app) jongoConfig() *jongo.Config {
	cfg := jongo.NewConfig()
	cfg.Logger = a.log.Handler()
	cfg.TemplateCacheSize = a.cfg.TemplateCacheSize
	return cfg
}

// collection connects to the configured server and returns the named collection
// with a function disconnecting the client.
func (a *app) collection(ctx context.Context, name string) (*jongo.Collection, func(), error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(a.cfg.URI))
	if err != nil {
		return nil, nil, err
	}
	disconnect := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			a.log.Handler().Warn("disconnect failed", "error", err)
		}
	}

	c, err := jongo.New(client.Database(a.cfg.Database), a.jongoConfig()).Collection(name)
	if err != nil {
		disconnect()
		return nil, nil, err
	}
	return c, disconnect, nil
}
