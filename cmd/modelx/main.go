package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hatlonely/modelx/log"
	"github.com/hatlonely/modelx/log/logger"
	"github.com/hatlonely/modelx/rdb"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type commandDeps struct {
	out        io.Writer
	configPath *string
	registerer prometheus.Registerer
}

func newRootCommand(out io.Writer) *cobra.Command {
	var configPath string
	deps := commandDeps{
		out:        out,
		configPath: &configPath,
		registerer: prometheus.NewRegistry(),
	}

	cmd := &cobra.Command{
		Use:           "modelx",
		Short:         "Persist declared models into a relational store",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: "  modelx demo\n" +
			"  modelx save --model User --data '{\"name\":\"John\",\"age\":25}'\n" +
			"  modelx find --model User --id 1 --config modelx.yaml",
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (yaml|toml|json|ini)")
	cmd.AddCommand(
		newDemoCommand(deps),
		newSaveCommand(deps),
		newFindCommand(deps),
	)
	return cmd
}

// withRepository 根据配置构建日志、存储与观测装饰器，fn 返回后关闭存储
func withRepository(ctx context.Context, deps commandDeps, options *Options, fn func(ctx context.Context, repo rdb.Repository) error) error {
	l, err := log.NewLoggerWithOptions(&options.Log)
	if err != nil {
		return errors.WithMessage(err, "NewLoggerWithOptions failed")
	}
	if closer, ok := l.(io.Closer); ok {
		defer closer.Close()
	}

	engine, err := rdb.NewEngineWithOptions(&options.Store, rdb.WithLogger(l))
	if err != nil {
		return errors.WithMessage(err, "NewEngineWithOptions failed")
	}

	var repo rdb.Repository = engine
	if options.Observe.EnableMetrics || options.Observe.EnableLogging || options.Observe.EnableTracing {
		var ol logger.Logger
		if options.Observe.EnableLogging {
			ol = l
		}
		repo, err = rdb.NewObservableEngineWithOptions(engine, &options.Observe, ol, deps.registerer)
		if err != nil {
			engine.Close()
			return errors.WithMessage(err, "NewObservableEngineWithOptions failed")
		}
	}
	defer repo.Close()

	return fn(ctx, repo)
}
