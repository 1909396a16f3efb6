// Package download turns a free-text query or direct URL into a delivered
// media message. A job owns exactly one temporary file for exactly its own
// lifetime: the file is removed once, on every exit path.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ntandomods/wabot/pkg/wabot/tempstore"
)

// ErrNoResults means a search query matched nothing.
var ErrNoResults = errors.New("no results")

// Kind selects the delivered media type.
type Kind int

const (
	KindVideo Kind = iota
	KindAudio
)

func (k Kind) String() string {
	if k == KindAudio {
		return "audio"
	}
	return "video"
}

// ext is the temp-file extension for the kind.
func (k Kind) ext() string {
	if k == KindAudio {
		return ".m4a"
	}
	return ".mp4"
}

// Status is a job's lifecycle phase.
type Status int

const (
	StatusResolving Status = iota
	StatusStreaming
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusResolving:
		return "resolving"
	case StatusStreaming:
		return "streaming"
	case StatusCompleted:
		return "completed"
	default:
		return "failed"
	}
}

// MediaInfo is the resolved resource metadata.
type MediaInfo struct {
	URL      string
	Title    string
	Duration time.Duration
}

// Resolver turns queries into resource locators and locators into streams.
type Resolver interface {
	// Search returns the locator of the first result, or ErrNoResults.
	Search(ctx context.Context, query string) (string, error)
	// Resolve fetches metadata for a locator.
	Resolve(ctx context.Context, url string) (*MediaInfo, error)
	// Stream opens the resource content for the given kind.
	Stream(ctx context.Context, url string, kind Kind) (io.ReadCloser, error)
}

// MediaSender is the transport slice the pipeline delivers through.
type MediaSender interface {
	SendVideo(ctx context.Context, chat, path, caption string) error
	SendAudio(ctx context.Context, chat, path string) error
}

// Job tracks one download-and-deliver unit of work.
type Job struct {
	Query       string
	ResolvedURL string
	Kind        Kind
	TempPath    string
	Status      Status
}

// Pipeline resolves, streams, delivers, and cleans up.
type Pipeline struct {
	resolver Resolver
	store    *tempstore.Store
	sender   MediaSender
	logger   *slog.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(resolver Resolver, store *tempstore.Store, sender MediaSender, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		resolver: resolver,
		store:    store,
		sender:   sender,
		logger:   logger.With("component", "download"),
	}
}

// isDirectURL recognizes locators that skip the search step.
func isDirectURL(query string) bool {
	return strings.Contains(query, "youtube.com") || strings.Contains(query, "youtu.be")
}

// Run executes one job to completion. The caller maps the returned error to
// a kind-specific chat reply; on success the media has already been sent.
func (p *Pipeline) Run(ctx context.Context, chat, query string, kind Kind) error {
	query = strings.TrimSpace(query)
	if query == "" {
		// No job, no temp file.
		return fmt.Errorf("empty query")
	}

	job := &Job{Query: query, Kind: kind, Status: StatusResolving}
	logger := p.logger.With("kind", kind.String(), "query", query)

	url := query
	if !isDirectURL(query) {
		found, err := p.resolver.Search(ctx, query)
		if err != nil {
			job.Status = StatusFailed
			return fmt.Errorf("searching %q: %w", query, err)
		}
		url = found
	}
	job.ResolvedURL = url

	info, err := p.resolver.Resolve(ctx, url)
	if err != nil {
		job.Status = StatusFailed
		return fmt.Errorf("resolving %s: %w", url, err)
	}
	logger = logger.With("title", info.Title)

	job.TempPath = p.store.NewPath(kind.ext())
	job.Status = StatusStreaming

	// From here the job owns its temp file; the single deferred Remove is
	// the one removal on every exit path, success or failure.
	defer p.store.Remove(job.TempPath)

	if err := p.streamToFile(ctx, url, kind, job.TempPath); err != nil {
		job.Status = StatusFailed
		return fmt.Errorf("streaming %s: %w", url, err)
	}

	if err := p.deliver(ctx, chat, job.TempPath, info, kind); err != nil {
		job.Status = StatusFailed
		return fmt.Errorf("sending %s: %w", kind.String(), err)
	}

	job.Status = StatusCompleted
	logger.Info("download delivered", "path", job.TempPath, "duration", info.Duration)
	return nil
}

func (p *Pipeline) streamToFile(ctx context.Context, url string, kind Kind, path string) error {
	stream, err := p.resolver.Stream(ctx, url, kind)
	if err != nil {
		return err
	}
	defer stream.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := io.Copy(f, stream); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (p *Pipeline) deliver(ctx context.Context, chat, path string, info *MediaInfo, kind Kind) error {
	if kind == KindAudio {
		return p.sender.SendAudio(ctx, chat, path)
	}
	return p.sender.SendVideo(ctx, chat, path, "🎥 *"+info.Title+"*")
}
