// Package telemetry sets up OpenTelemetry tracing for inspire.
//
// Spans are exported over OTLP (gRPC or HTTP/protobuf) to a collector.
// When telemetry is disabled, or the exporter cannot be created, Tracer
// falls back to the global (no-op) provider and the process keeps running.
//
//	tel, err := telemetry.New(ctx, telemetry.FromAppConfig(cfg.Telemetry))
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(ctx)
//
//	ctx, span := tel.Tracer("inspire.cli").Start(ctx, "project create")
//	defer span.End()
//
// Tests use NewTestTelemetry, which records spans in memory.
package telemetry
