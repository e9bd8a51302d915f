package matcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/kasuboski/showmatcher/pkg/episode"
	"github.com/kasuboski/showmatcher/pkg/io"
	"github.com/kasuboski/showmatcher/pkg/logger"
	"github.com/kasuboski/showmatcher/pkg/lookup"
	"github.com/kasuboski/showmatcher/pkg/naming"
	"github.com/kasuboski/showmatcher/pkg/pattern"
	"github.com/kasuboski/showmatcher/pkg/relocate"
	"github.com/kasuboski/showmatcher/pkg/resolver"
)

var (
	ErrModeRequired     = errors.New("one of ignore substring or naming pattern is required")
	ErrModeExclusive    = errors.New("ignore substring and naming pattern cannot be used together")
	ErrResolverRequired = errors.New("matching by ignore substring requires a resolver")
)

// DefaultExtensions are the primary file extensions picked up by a batch
var DefaultExtensions = []string{".mp4"}

// Options describes a batch
type Options struct {
	Directory       string
	Destination     string
	Series          lookup.Series
	IgnoreSubstring *regexp.Regexp
	Pattern         *regexp.Regexp
	Extensions      []string
}

// Validate checks that exactly one resolution mode is selected
func (o Options) Validate() error {
	if o.IgnoreSubstring == nil && o.Pattern == nil {
		return ErrModeRequired
	}
	if o.IgnoreSubstring != nil && o.Pattern != nil {
		return ErrModeExclusive
	}
	if o.Series.Name == "" {
		return errors.New("series name is required")
	}
	return nil
}

// Status is the result of processing one file
type Status string

const (
	StatusMatched Status = "matched"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// FileError names the file a failure belongs to
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Outcome is the per file result of a batch
type Outcome struct {
	Path        string
	Status      Status
	Resolved    *episode.Resolved
	Destination string
	Report      relocate.Report
	Err         error
}

// Summary counts the outcomes of a batch
type Summary struct {
	Matched int
	Skipped int
	Failed  int
	Bytes   int64
}

func (s Summary) String() string {
	return fmt.Sprintf("%d matched, %d skipped, %d failed, %s moved", s.Matched, s.Skipped, s.Failed, humanize.IBytes(uint64(s.Bytes)))
}

// Result is the outcome of a whole batch
type Result struct {
	RunID    string
	DryRun   bool
	Outcomes []Outcome
	Summary  Summary
}

// Errors returns the failures of the batch
func (r Result) Errors() []error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil && o.Status == StatusFailed {
			errs = append(errs, o.Err)
		}
	}
	return errs
}

// Matcher resolves every episode file of a directory and relocates it into the destination library
type Matcher struct {
	opts     Options
	fileIO   io.FileIO
	resolver *resolver.Resolver
	engine   *relocate.Engine
}

// New builds a Matcher. r may be nil when opts selects a naming pattern.
func New(opts Options, fileIO io.FileIO, r *resolver.Resolver, e *relocate.Engine) (*Matcher, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.IgnoreSubstring != nil && r == nil {
		return nil, ErrResolverRequired
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}

	return &Matcher{
		opts:     opts,
		fileIO:   fileIO,
		resolver: r,
		engine:   e,
	}, nil
}

// Discover lists the files of the source directory with a primary extension, in name order
func (m *Matcher) Discover(ctx context.Context) ([]string, error) {
	entries, err := m.fileIO.ReadDir(m.opts.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !m.isPrimary(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(m.opts.Directory, e.Name()))
	}

	logger.FromCtx(ctx).Debugw("discovered files", "directory", m.opts.Directory, "count", len(files))
	return files, nil
}

func (m *Matcher) isPrimary(name string) bool {
	ext := filepath.Ext(name)
	return slices.ContainsFunc(m.opts.Extensions, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}

// Request builds the match request for path
func (m *Matcher) Request(path string) episode.MatchRequest {
	return episode.MatchRequest{
		Path:            path,
		Series:          m.opts.Series.Name,
		SeriesID:        m.opts.Series.ID,
		IgnoreSubstring: m.opts.IgnoreSubstring,
		Pattern:         m.opts.Pattern,
	}
}

// Resolve resolves a request with the resolver matching its mode
func (m *Matcher) Resolve(ctx context.Context, req episode.MatchRequest) (episode.Resolved, error) {
	if req.Mode() == episode.ModePattern {
		return pattern.Resolve(req.Path, req.Pattern)
	}

	series := lookup.Series{Name: req.Series, ID: req.SeriesID}
	return m.resolver.Resolve(ctx, req.Path, series, req.IgnoreSubstring)
}

// Destination returns the absolute destination of path for resolved
func (m *Matcher) Destination(path string, resolved episode.Resolved) string {
	return filepath.Join(m.opts.Destination, naming.BuildDestinationPath(resolved, m.opts.Series.Name, filepath.Ext(path)))
}

// ProcessFile resolves and relocates a single file. Errors are reported in the outcome, never returned.
func (m *Matcher) ProcessFile(ctx context.Context, path string) Outcome {
	log := logger.FromCtx(ctx, "file", filepath.Base(path))
	out := Outcome{Path: path}

	req := m.Request(path)
	resolved, err := m.Resolve(ctx, req)
	if err != nil {
		out.Err = &FileError{Path: path, Err: err}
		out.Status = StatusFailed
		if isNoMatch(err) {
			out.Status = StatusSkipped
		}
		log.Warnw("failed to resolve episode", "mode", req.Mode().String(), "status", out.Status, "error", err)
		return out
	}

	out.Resolved = &resolved
	out.Destination = m.Destination(path, resolved)
	log.Debugw("resolved episode", "episode", resolved.String(), "destination", out.Destination)

	report, err := m.engine.Relocate(logger.WithCtx(ctx, log), path, out.Destination)
	out.Report = report
	if err != nil {
		out.Err = &FileError{Path: path, Err: err}
		out.Status = StatusFailed
		log.Errorw("failed to relocate", "error", err)
		return out
	}

	out.Status = StatusMatched
	return out
}

func isNoMatch(err error) bool {
	return errors.Is(err, episode.ErrNoPatternMatch) ||
		errors.Is(err, episode.ErrNoSubstringMatch) ||
		errors.Is(err, episode.ErrNoConfidentMatch)
}

// Run processes every discovered file in order. A failing file never stops the batch; Run only returns an
// error when the directory can't be read or ctx is done.
func (m *Matcher) Run(ctx context.Context) (Result, error) {
	runID := uuid.NewString()
	log := logger.FromCtx(ctx, "run_id", runID)
	ctx = logger.WithCtx(ctx, log)

	result := Result{RunID: runID, DryRun: m.engine.DryRun()}
	m.engine.Reset()

	files, err := m.Discover(ctx)
	if err != nil {
		return result, err
	}

	log.Infow("starting batch", "directory", m.opts.Directory, "destination", m.opts.Destination, "files", len(files), "dry_run", result.DryRun)

	moved := make(map[string]struct{})
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		// already taken along as another file's sidecar
		if _, ok := moved[f]; ok {
			continue
		}

		out := m.ProcessFile(ctx, f)
		for _, mv := range out.Report.Moves {
			moved[mv.Source] = struct{}{}
		}

		result.Outcomes = append(result.Outcomes, out)
		switch out.Status {
		case StatusMatched:
			result.Summary.Matched++
			result.Summary.Bytes += out.Report.Bytes()
		case StatusSkipped:
			result.Summary.Skipped++
		default:
			result.Summary.Failed++
		}
	}

	log.Infow("finished batch",
		"matched", result.Summary.Matched,
		"skipped", result.Summary.Skipped,
		"failed", result.Summary.Failed,
		"size", humanize.IBytes(uint64(result.Summary.Bytes)),
	)

	return result, nil
}
