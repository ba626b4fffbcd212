// Inspire manages projects backed by git repositories: a bare repository
// holding the history and a satellite working copy per project.
//
// Configuration is read from an optional YAML file (--config) and
// INSPIRE_* environment variables. See internal/config for the keys.
//
// Usage:
//
//	inspire user create alice
//	inspire project create alice "My Project"
//	inspire tree alice "My Project"
//	inspire blob alice "My Project" images/1.png > 1.png
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/inspire/internal/config"
	"github.com/fyrsmithlabs/inspire/internal/gitstore"
	"github.com/fyrsmithlabs/inspire/internal/logging"
	"github.com/fyrsmithlabs/inspire/internal/objects"
	"github.com/fyrsmithlabs/inspire/internal/paths"
	"github.com/fyrsmithlabs/inspire/internal/project"
	"github.com/fyrsmithlabs/inspire/internal/telemetry"
)

// Version information (set via ldflags during build)
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run executes the command line in args and releases everything the
// command opened, whether or not it succeeded.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if closeErr := a.close(ctx, stderr); err == nil {
		err = closeErr
	}
	return err
}

// app holds the services every command runs against. It is built in the
// root command's PersistentPreRunE and torn down by run.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	telemetry *telemetry.Telemetry
	registry  *prometheus.Registry
	paths     *paths.Resolver
	resolver  *objects.Resolver
	projects  project.Manager
}

func newRootCmd(a *app) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "inspire",
		Short: "Manage git-backed inspire projects",
		Long: `inspire manages projects whose content lives in git repositories.

Each project owns a bare repository and a satellite working copy on disk.
Project metadata is stored in SQLite. Object commands read the bare
repository and accept full or abbreviated commit and tree hashes.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(logging.WithRunID(cmd.Context(), uuid.NewString()))
			return a.open(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("INSPIRE_CONFIG"), "path to YAML config file")

	root.AddCommand(
		newUserCmd(a),
		newProjectCmd(a),
		newTreeCmd(a),
		newCommitCmd(a),
		newBlobCmd(a),
		newFindCmd(a),
		newURLBaseCmd(a),
		newImagePathCmd(a),
	)
	return root
}

func (a *app) open(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logCfg, err := logging.FromAppConfig(cfg.Logging)
	if err != nil {
		return err
	}
	a.logger, err = logging.NewLogger(logCfg, global.GetLoggerProvider())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	a.telemetry, err = telemetry.New(ctx, telemetry.FromAppConfig(cfg.Telemetry))
	if err != nil {
		return err
	}
	if degraded, cause := a.telemetry.Degraded(); degraded {
		a.logger.Warn(ctx, "telemetry unavailable", zap.Error(cause))
	}

	resolverOpts := []objects.Option{objects.WithLogger(a.logger)}
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		resolverOpts = append(resolverOpts, objects.WithMetrics(objects.NewMetrics(a.registry)))
	}
	a.resolver = objects.NewResolver(resolverOpts...)

	a.paths = paths.New(paths.Config{
		Root:       cfg.Storage.Root,
		PublicRoot: cfg.Storage.PublicRoot,
	})

	a.projects, err = project.NewSQLiteManager(cfg.Database.Path, cfg.Storage.DataDir, a.logger)
	if err != nil {
		return err
	}

	a.logger.Debug(ctx, "inspire initialized",
		zap.String("data_dir", cfg.Storage.DataDir),
		zap.String("database", cfg.Database.Path),
		zap.Int("min_abbrev_len", cfg.Objects.MinAbbrevLen),
	)
	return nil
}

// close releases whatever open managed to build.
func (a *app) close(ctx context.Context, metricsOut io.Writer) error {
	logger := a.logger
	if logger == nil {
		logger = logging.NewNop()
	}

	if a.registry != nil {
		if err := writeMetrics(metricsOut, a.registry); err != nil {
			logger.Warn(ctx, "writing metrics failed", zap.Error(err))
		}
	}
	if err := a.telemetry.Shutdown(context.WithoutCancel(ctx)); err != nil {
		logger.Warn(ctx, "telemetry shutdown failed", zap.Error(err))
	}
	_ = logger.Sync()

	if a.projects != nil {
		if err := a.projects.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}

// repository opens the read side of the live project name owned by owner.
func (a *app) repository(ctx context.Context, owner, name string) (*project.Repository, error) {
	u, err := a.projects.GetUserByName(ctx, owner)
	if err != nil {
		return nil, err
	}
	p, err := a.projects.GetByName(ctx, u.ID, name)
	if err != nil {
		return nil, err
	}
	return project.NewRepository(p, a.paths, a.resolver,
		project.WithRepositoryLogger(a.logger),
		project.WithTracer(a.telemetry.Tracer("inspire.project")),
		project.WithHandleOptions(gitstore.WithMinPrefix(a.cfg.Objects.MinAbbrevLen)),
	), nil
}

// writeMetrics writes every gathered metric family in the Prometheus text
// format.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
