package main

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"

	"github.com/tournevent/mondialrelay/internal/config"
	"github.com/tournevent/mondialrelay/internal/telemetry"
	"github.com/tournevent/mondialrelay/pkg/mondialrelay"
	"github.com/tournevent/mondialrelay/pkg/mondialrelay/rest"
	"github.com/tournevent/mondialrelay/pkg/mondialrelay/soap"
)

// app bundles everything a command needs: configuration, telemetry and
// the carrier gateway.
type app struct {
	config   *config.Config
	logger   *otelzap.Logger
	gateway  *mondialrelay.Hybrid
	metrics  *telemetry.Metrics
	shutdown func(context.Context) error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := telemetry.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	tracer, shutdown, err := initTracer(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &app{
		config:   cfg,
		logger:   logger,
		gateway:  initGateway(cfg, logger, tracer),
		metrics:  telemetry.NewMetrics(),
		shutdown: shutdown,
	}, nil
}

func (a *app) Close(ctx context.Context) {
	if a.shutdown != nil {
		a.shutdown(ctx)
	}
	a.logger.Sync()
}

func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return nil, func(context.Context) error { return nil }, nil
	}
	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
}

// initGateway wires the SOAP client, the optional API V2 client and the
// hybrid router over them.
func initGateway(cfg *config.Config, logger *otelzap.Logger, tracer trace.Tracer) *mondialrelay.Hybrid {
	soapClient := soap.New(cfg.SOAPConfig(), logger, tracer)

	var restClient mondialrelay.ExpeditionCreator
	if cfg.V2Enabled() {
		restClient = rest.New(cfg.RESTConfig(), logger, tracer)
	}

	return mondialrelay.NewHybrid(soapClient, restClient, cfg.PreferV2)
}
