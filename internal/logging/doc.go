// Package logging wraps Zap with context-aware methods.
//
// Each entry picks up the trace, project and run ID stored in its context.
// Entries go to stderr and, optionally, to an OpenTelemetry log provider.
// Levels below Error can be sampled per level; Error and above never are.
// The git.* field helpers share their keys with span attributes.
//
//	logger, err := logging.NewLogger(logging.NewDefaultConfig(), nil)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithProject(ctx, &logging.ProjectRef{Owner: "alice", Name: "demo"})
//	logger.Debug(ctx, "object not resolved", logging.Hash(h), logging.Result("missing"))
//
// Tests use NewTestLogger to inspect what was logged.
package logging
