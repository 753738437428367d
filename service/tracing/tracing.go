package tracing

import (
	"context"
	"errors"
	"io"

	"github.com/natefinch/lumberjack"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/xerrors"
)

type Options struct {
	// File receives finished spans as JSON. Empty keeps spans in process
	// only.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Provider is the installed tracer provider plus the span file it writes to.
type Provider struct {
	*sdktrace.TracerProvider
	out io.Closer
}

// Setup installs an SDK tracer provider as the global one.
func Setup(serviceName string, opts Options) (*Provider, error) {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	popts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}

	var out io.WriteCloser
	if opts.File != "" {
		out = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}

		exporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
		if err != nil {
			out.Close()
			return nil, xerrors.Errorf("creating span exporter: %w", err)
		}
		popts = append(popts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(popts...)
	otel.SetTracerProvider(tp)

	return &Provider{TracerProvider: tp, out: out}, nil
}

// Shutdown flushes pending spans and closes the span file.
func (p *Provider) Shutdown(ctx context.Context) error {
	err := p.TracerProvider.Shutdown(ctx)
	if p.out != nil {
		err = errors.Join(err, p.out.Close())
	}
	return err
}
