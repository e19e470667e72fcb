package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/rs/zerolog"

	"github.com/baram-io/baram/pkg/compute"
	"github.com/baram-io/baram/pkg/config"
	"github.com/baram-io/baram/pkg/stores"
	"github.com/baram-io/baram/pkg/telemetry"
	"github.com/baram-io/baram/pkg/workspace"
)

const defaultConfigPath = "baram.yaml"

// runtime holds everything a command needs: configuration, telemetry, AWS
// clients and the optional audit store. Built once per invocation.
type runtime struct {
	cfg     config.Config
	log     zerolog.Logger
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer
	store   *stores.SQLiteStore
	audit   *stores.AuditLog

	sm  *sagemaker.Client
	ec2 *ec2.Client
}

// newRuntime loads the config file and wires the shared collaborators.
func newRuntime(ctx context.Context) (*runtime, error) {
	path := configPath
	if path == "" {
		path = defaultConfigPath
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s not found (use --config)", path)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	level := cfg.Telemetry.LogLevel
	if verbose {
		level = "debug"
	}
	log := telemetry.NewLogger(level, cfg.Telemetry.LogFormat)

	metrics := telemetry.NewMetrics(telemetry.MetricsConfig{
		Enabled:       cfg.Telemetry.MetricsEnabled,
		ListenAddress: cfg.Telemetry.MetricsAddr,
	})
	mlog := telemetry.ComponentLogger(log, "metrics")
	if err := metrics.StartMetricsServer(func(err error) {
		mlog.Warn().Err(err).Msg("metrics server error")
	}); err != nil {
		return nil, err
	}

	tracer, err := telemetry.NewTracer(telemetry.TracingConfig{
		Enabled:      cfg.Telemetry.TracingEnabled,
		Exporter:     cfg.Telemetry.TracingExporter,
		Endpoint:     cfg.Telemetry.TracingEndpoint,
		SamplingRate: 1.0,
		Insecure:     true,
	}, "baram", "dev")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	rt := &runtime{
		cfg:     cfg,
		log:     log,
		metrics: metrics,
		tracer:  tracer,
		sm:      sagemaker.NewFromConfig(awsCfg),
		ec2:     ec2.NewFromConfig(awsCfg),
	}

	if cfg.Audit.Enabled {
		store, err := stores.NewSQLiteStore(stores.Config{Path: cfg.Audit.Path})
		if err != nil {
			return nil, err
		}
		if err := store.Init(ctx); err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		rt.store = store
		rt.audit = stores.NewAuditLog(store, log)
	}

	return rt, nil
}

func (r *runtime) close(ctx context.Context) {
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.log.Warn().Err(err).Msg("audit store close failed")
		}
	}
	if r.tracer != nil {
		if err := r.tracer.Shutdown(ctx); err != nil {
			r.log.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}
}

// openStore opens the audit store read side regardless of the audit.enabled
// flag, so past runs stay inspectable after recording has been turned off.
func (r *runtime) openStore(ctx context.Context) (*stores.SQLiteStore, error) {
	if r.store != nil {
		return r.store, nil
	}
	store, err := stores.NewSQLiteStore(stores.Config{Path: r.cfg.Audit.Path})
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	r.store = store
	return store, nil
}

func (r *runtime) directory() *workspace.Directory {
	return workspace.NewDirectory(r.sm, r.cfg.DomainID, r.cfg.Poll.PageSize, r.log)
}

func (r *runtime) mutator() *workspace.Mutator {
	return workspace.NewMutator(r.sm, r.cfg.DomainID, r.log).WithMetrics(r.metrics)
}

func (r *runtime) poller(dir *workspace.Directory) *workspace.Poller {
	return workspace.NewPoller(dir, workspace.PollOptions{
		Interval: r.cfg.Poll.Interval.Std(),
		MaxTicks: r.cfg.Poll.MaxTicks,
	}, r.log).WithMetrics(r.metrics)
}

func (r *runtime) orchestrator() *workspace.Orchestrator {
	dir := r.directory()
	orch := workspace.NewOrchestrator(dir, r.mutator(), r.poller(dir), r.log).
		WithMetrics(r.metrics)
	if r.audit != nil {
		orch = orch.WithRecorder(r.audit)
	}
	return orch
}

func (r *runtime) coordinator() *workspace.Coordinator {
	dir := r.directory()
	mut := r.mutator()
	poller := r.poller(dir)
	orch := workspace.NewOrchestrator(dir, mut, poller, r.log).WithMetrics(r.metrics)
	coord := workspace.NewCoordinator(dir, mut, orch, poller, r.log).WithMetrics(r.metrics)
	if r.audit != nil {
		orch.WithRecorder(r.audit)
		coord = coord.WithRecorder(r.audit)
	}
	return coord
}

func (r *runtime) images() *workspace.Images {
	return workspace.NewImages(r.sm, r.log)
}

func (r *runtime) compute() *compute.Compute {
	return compute.New(r.ec2, r.log)
}

// printResult writes a command result to stdout, as JSON when --json is set.
func printResult(v interface{}, text func()) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text()
	return nil
}
