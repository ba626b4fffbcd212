package project

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/inspire/internal/gitstore"
	"github.com/fyrsmithlabs/inspire/internal/logging"
	"github.com/fyrsmithlabs/inspire/internal/objects"
	"github.com/fyrsmithlabs/inspire/internal/paths"
)

// Repository gives read access to one project's repositories and derived
// asset paths. Both repositories are opened on first use and cached for the
// lifetime of the Repository.
//
// Object accessors return nil for anything malformed or absent. The only
// errors they return are repository open failures (gitstore.ErrRepoOpen),
// which mean the project's storage is missing or broken.
type Repository struct {
	project  *Project
	paths    *paths.Resolver
	resolver *objects.Resolver
	logger   *logging.Logger
	tracer   trace.Tracer
	opts     []gitstore.Option

	bare      lazyHandle
	satellite lazyHandle
}

const tracerName = "github.com/fyrsmithlabs/inspire/internal/project"

type lazyHandle struct {
	once   sync.Once
	handle *gitstore.Handle
	err    error
}

func (l *lazyHandle) get(open func() (*gitstore.Handle, error)) (*gitstore.Handle, error) {
	l.once.Do(func() {
		l.handle, l.err = open()
	})
	return l.handle, l.err
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithHandleOptions passes options to gitstore.Open for both repositories.
func WithHandleOptions(opts ...gitstore.Option) RepositoryOption {
	return func(r *Repository) {
		r.opts = append(r.opts, opts...)
	}
}

// WithRepositoryLogger sets the logger.
func WithRepositoryLogger(l *logging.Logger) RepositoryOption {
	return func(r *Repository) {
		r.logger = l
	}
}

// WithTracer sets the tracer used for object reads.
func WithTracer(t trace.Tracer) RepositoryOption {
	return func(r *Repository) {
		r.tracer = t
	}
}

// WithBareHandle uses h instead of opening the bare repository from disk.
func WithBareHandle(h *gitstore.Handle) RepositoryOption {
	return func(r *Repository) {
		r.bare.once.Do(func() { r.bare.handle = h })
	}
}

// WithSatelliteHandle uses h instead of opening the satellite from disk.
func WithSatelliteHandle(h *gitstore.Handle) RepositoryOption {
	return func(r *Repository) {
		r.satellite.once.Do(func() { r.satellite.handle = h })
	}
}

// NewRepository creates the read side for p.
func NewRepository(p *Project, pr *paths.Resolver, resolver *objects.Resolver, opts ...RepositoryOption) *Repository {
	r := &Repository{
		project:  p,
		paths:    pr,
		resolver: resolver,
		logger:   logging.NewNop(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Project returns the record this repository belongs to.
func (r *Repository) Project() *Project {
	return r.project
}

// BareRepo returns the handle for the bare repository.
func (r *Repository) BareRepo() (*gitstore.Handle, error) {
	return r.bare.get(func() (*gitstore.Handle, error) {
		return gitstore.Open(r.project.BarePath(), r.opts...)
	})
}

// SatelliteRepo returns the handle for the satellite working copy.
func (r *Repository) SatelliteRepo() (*gitstore.Handle, error) {
	return r.satellite.get(func() (*gitstore.Handle, error) {
		return gitstore.Open(r.project.SatellitePath(), r.opts...)
	})
}

// Tree returns the tree addressed by hash, or HEAD's tree when hash is
// empty. It returns nil for an empty repository whatever hash is given.
func (r *Repository) Tree(ctx context.Context, hash string) (_ *objects.Tree, err error) {
	ctx, span := r.start(ctx, "project.Tree", attribute.String(logging.KeyHash, hash))
	defer func() { endSpan(span, err) }()

	h, head, err := r.bareWithHead(ctx)
	if err != nil || head == "" {
		return nil, err
	}
	if hash != "" {
		return r.resolver.Tree(ctx, h, hash), nil
	}

	commit := r.resolver.Commit(ctx, h, head)
	if commit == nil {
		return nil, nil
	}
	return r.resolver.Tree(ctx, h, commit.TreeHash), nil
}

// Commit returns the commit addressed by hash, or HEAD when hash is empty.
// It returns nil for an empty repository whatever hash is given.
func (r *Repository) Commit(ctx context.Context, hash string) (_ *objects.Commit, err error) {
	ctx, span := r.start(ctx, "project.Commit", attribute.String(logging.KeyHash, hash))
	defer func() { endSpan(span, err) }()

	h, head, err := r.bareWithHead(ctx)
	if err != nil || head == "" {
		return nil, err
	}
	if hash == "" {
		hash = head
	}
	return r.resolver.Commit(ctx, h, hash), nil
}

// Blob returns the blob at path in commitHash (HEAD when empty).
func (r *Repository) Blob(ctx context.Context, commitHash, path string) (_ *objects.Blob, err error) {
	ctx, span := r.start(ctx, "project.Blob",
		attribute.String(logging.KeyCommit, commitHash),
		attribute.String(logging.KeyPath, path),
	)
	defer func() { endSpan(span, err) }()

	h, head, err := r.bareWithHead(ctx)
	if err != nil || head == "" {
		return nil, err
	}
	if commitHash == "" {
		commitHash = head
	}
	return r.resolver.Blob(ctx, h, commitHash, path), nil
}

// FindBlobData looks for a top-level file called filename in commitHash
// (HEAD when empty) and returns its entry with the commit it was found in.
func (r *Repository) FindBlobData(ctx context.Context, commitHash, filename string) (_ *objects.Entry, _ *objects.Commit, err error) {
	ctx, span := r.start(ctx, "project.FindBlobData",
		attribute.String(logging.KeyCommit, commitHash),
		attribute.String("git.name", filename),
	)
	defer func() { endSpan(span, err) }()

	h, head, err := r.bareWithHead(ctx)
	if err != nil || head == "" {
		return nil, nil, err
	}
	if commitHash == "" {
		commitHash = head
	}
	entry, commit := r.resolver.FindBlobByName(ctx, h, commitHash, filename)
	return entry, commit, nil
}

// URLBase returns the project's URL prefix, "/{owner}/{escaped name}".
func (r *Repository) URLBase() string {
	return r.paths.URLBase(r.project.OwnerUsername, r.project.Name)
}

// ImageFor returns the path of a derived asset of this project. key must
// pass paths.ValidateKey.
func (r *Repository) ImageFor(key string, c paths.Category, public bool) string {
	return r.paths.ImageFor(r.project.OwnerUsername, r.project.Name, key, c, public)
}

// bareWithHead opens the bare repository and resolves HEAD. head is empty
// when the repository has no commits.
func (r *Repository) bareWithHead(ctx context.Context) (*gitstore.Handle, string, error) {
	h, err := r.BareRepo()
	if err != nil {
		r.logger.Error(ctx, "bare repository unavailable", zap.Error(err))
		return nil, "", err
	}

	head, err := h.Head()
	if err != nil {
		if !errors.Is(err, gitstore.ErrEmptyRepository) {
			r.logger.Warn(ctx, "resolving HEAD failed", zap.Error(err))
		}
		return h, "", nil
	}
	return h, head.String(), nil
}

// start opens a span for an object read and tags ctx with the project for
// logging.
func (r *Repository) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("project.id", r.project.ID))
	ctx, span := r.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	if r.project.OwnerUsername != "" && r.project.Name != "" {
		ctx = logging.WithProject(ctx, r.project.ref())
	}
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
