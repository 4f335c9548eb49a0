package rdb

import (
	"context"
	"fmt"
	"time"

	"github.com/hatlonely/modelx/log/logger"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ObserveOptions struct {
	// EnableMetrics 是否启用指标收集
	EnableMetrics bool `cfg:"enableMetrics" def:"true"`

	// EnableLogging 是否启用日志记录
	EnableLogging bool `cfg:"enableLogging" def:"true"`

	// EnableTracing 是否启用分布式追踪
	EnableTracing bool `cfg:"enableTracing"`

	// Name 组件名称，作为指标名前缀、日志 component 字段和 span 属性
	Name string `cfg:"name" def:"rdb" validate:"required"`
}

// ObservableMetrics 封装 prometheus 指标
type ObservableMetrics struct {
	operationCounter  *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	activeOperations  *prometheus.GaugeVec
}

// NewObservableMetrics 创建指标并注册到 registerer，已注册的同名指标会被复用
func NewObservableMetrics(name string, registerer prometheus.Registerer) (*ObservableMetrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	operationCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name + "_operations_total",
			Help: "Total number of model store operations",
		},
		[]string{"operation", "table", "status"},
	)
	operationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name + "_operation_duration_seconds",
			Help:    "Duration of model store operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"operation", "table"},
	)
	activeOperations := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name + "_active_operations",
			Help: "Number of active model store operations",
		},
		[]string{"operation"},
	)

	var err error
	metrics := &ObservableMetrics{}
	if metrics.operationCounter, err = register(registerer, operationCounter); err != nil {
		return nil, err
	}
	if metrics.operationDuration, err = register(registerer, operationDuration); err != nil {
		return nil, err
	}
	if metrics.activeOperations, err = register(registerer, activeOperations); err != nil {
		return nil, err
	}
	return metrics, nil
}

func register[C prometheus.Collector](registerer prometheus.Registerer, c C) (C, error) {
	if err := registerer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, errors.Wrap(err, "register metrics failed")
	}
	return c, nil
}

// ObservableEngine 装饰器，为 Repository 添加指标、追踪与日志
type ObservableEngine struct {
	repo Repository

	logger        logger.Logger
	metrics       *ObservableMetrics
	tracer        trace.Tracer
	name          string
	enableMetrics bool
	enableLogging bool
	enableTracing bool
}

func NewObservableEngineWithOptions(repo Repository, options *ObserveOptions, l logger.Logger, registerer prometheus.Registerer) (*ObservableEngine, error) {
	if repo == nil {
		return nil, errors.New("repository is nil")
	}
	if options == nil {
		return nil, errors.New("options is nil")
	}

	obs := &ObservableEngine{
		repo:          repo,
		name:          options.Name,
		enableMetrics: options.EnableMetrics,
		enableLogging: options.EnableLogging && l != nil,
		enableTracing: options.EnableTracing,
	}

	if obs.enableLogging {
		obs.logger = l.WithGroup("observable")
	}

	if options.EnableMetrics {
		metrics, err := NewObservableMetrics(options.Name, registerer)
		if err != nil {
			return nil, errors.WithMessage(err, "NewObservableMetrics failed")
		}
		obs.metrics = metrics
	}

	if options.EnableTracing {
		obs.tracer = otel.Tracer(fmt.Sprintf("rdb.%s", options.Name))
	}

	return obs, nil
}

// observeOperation 统一的操作观测逻辑
func (obs *ObservableEngine) observeOperation(ctx context.Context, operation string, table string, fn func(context.Context) error) error {
	start := time.Now()

	var span trace.Span
	if obs.enableTracing && obs.tracer != nil {
		ctx, span = obs.tracer.Start(ctx, fmt.Sprintf("rdb.%s", operation),
			trace.WithAttributes(
				attribute.String("component", obs.name),
				attribute.String("operation", operation),
				attribute.String("table", table),
			),
		)
		defer span.End()
	}

	if obs.enableMetrics && obs.metrics != nil {
		obs.metrics.activeOperations.WithLabelValues(operation).Inc()
		defer obs.metrics.activeOperations.WithLabelValues(operation).Dec()
	}

	err := fn(ctx)
	duration := time.Since(start)

	if span != nil {
		span.SetAttributes(attribute.Int64("duration_ms", duration.Milliseconds()))
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}

	if obs.enableMetrics && obs.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		obs.metrics.operationCounter.WithLabelValues(operation, table, status).Inc()
		obs.metrics.operationDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	}

	if obs.enableLogging {
		if err != nil {
			obs.logger.ErrorContext(ctx, "rdb operation failed",
				"component", obs.name,
				"operation", operation,
				"table", table,
				"duration_ms", duration.Milliseconds(),
				"error", err.Error(),
			)
		} else {
			obs.logger.InfoContext(ctx, "rdb operation completed",
				"component", obs.name,
				"operation", operation,
				"table", table,
				"duration_ms", duration.Milliseconds(),
			)
		}
	}

	return err
}

func tableOf(model *TableModel) string {
	if model == nil {
		return ""
	}
	return model.Table
}

func (obs *ObservableEngine) Save(ctx context.Context, model *TableModel, record *Record) (*Record, error) {
	var result *Record
	err := obs.observeOperation(ctx, "save", tableOf(model), func(ctx context.Context) error {
		var saveErr error
		result, saveErr = obs.repo.Save(ctx, model, record)
		return saveErr
	})
	return result, err
}

func (obs *ObservableEngine) FindByID(ctx context.Context, model *TableModel, id int64) (*Record, error) {
	var result *Record
	err := obs.observeOperation(ctx, "find", tableOf(model), func(ctx context.Context) error {
		var findErr error
		result, findErr = obs.repo.FindByID(ctx, model, id)
		return findErr
	})
	return result, err
}

func (obs *ObservableEngine) Close() error {
	return obs.observeOperation(context.Background(), "close", "", func(ctx context.Context) error {
		return obs.repo.Close()
	})
}
