package logging

import (
	"context"
	"fmt"
	"regexp"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 6)

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
		if sc.IsSampled() {
			fields = append(fields, zap.Bool("trace_sampled", true))
		}
	}

	if p := ProjectFromContext(ctx); p != nil {
		fields = append(fields,
			zap.String("project.owner", p.Owner),
			zap.String("project.name", p.Name),
		)
		if p.ID != "" {
			fields = append(fields, zap.String("project.id", p.ID))
		}
	}

	if runID := RunIDFromContext(ctx); runID != "" {
		fields = append(fields, zap.String("run.id", runID))
	}

	return fields
}

type projectCtxKey struct{}
type runCtxKey struct{}

// ProjectRef identifies the project an operation runs against.
type ProjectRef struct {
	ID    string
	Owner string
	Name  string
}

const maxIDLen = 128

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ProjectFromContext extracts the project reference from context.
func ProjectFromContext(ctx context.Context) *ProjectRef {
	if p, ok := ctx.Value(projectCtxKey{}).(*ProjectRef); ok {
		return p
	}
	return nil
}

// WithProject adds a project reference to context.
// Panics if p is nil or has no owner or name.
func WithProject(ctx context.Context, p *ProjectRef) context.Context {
	if p == nil {
		panic("logging: project cannot be nil")
	}
	if p.Owner == "" || p.Name == "" {
		panic("logging: project owner and name are required")
	}
	return context.WithValue(ctx, projectCtxKey{}, p)
}

// RunIDFromContext returns the ID of the command invocation, if any.
func RunIDFromContext(ctx context.Context) string {
	if r, ok := ctx.Value(runCtxKey{}).(string); ok {
		return r
	}
	return ""
}

// WithRunID tags every entry logged under ctx with the ID of one command
// invocation. Panics if runID is empty or contains invalid characters.
func WithRunID(ctx context.Context, runID string) context.Context {
	if err := validateRunID(runID); err != nil {
		panic(fmt.Sprintf("logging: %v", err))
	}
	return context.WithValue(ctx, runCtxKey{}, runID)
}

func validateRunID(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("run ID cannot be empty")
	case len(id) > maxIDLen:
		return fmt.Errorf("run ID exceeds max length %d", maxIDLen)
	case !idPattern.MatchString(id):
		return fmt.Errorf("run ID %q must be alphanumeric, hyphen or underscore", id)
	}
	return nil
}
