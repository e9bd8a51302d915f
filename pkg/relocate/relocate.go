package relocate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/kasuboski/showmatcher/pkg/io"
	"github.com/kasuboski/showmatcher/pkg/logger"
)

// Policy decides what happens when a destination file already exists
type Policy int

const (
	OverwriteNever Policy = iota
	OverwriteAlways
)

func (p Policy) String() string {
	if p == OverwriteAlways {
		return "always"
	}
	return "never"
}

// Move is a single planned or completed file move
type Move struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Size        int64  `json:"size"`
	Sidecar     bool   `json:"sidecar"`
}

// Report lists the moves of one relocation. In a dry run Moves holds what would have been moved.
type Report struct {
	DryRun bool   `json:"dryRun"`
	Moves  []Move `json:"moves"`
	Failed []Move `json:"failed,omitempty"`
}

// Bytes is the total size of the moved files
func (r Report) Bytes() int64 {
	var total int64
	for _, m := range r.Moves {
		total += m.Size
	}
	return total
}

// Engine moves a primary episode file and its sidecars to their destination
type Engine struct {
	fileIO    io.FileIO
	dryRun    bool
	overwrite Policy
	// destinations claimed by earlier dry run moves of the current batch
	planned map[string]struct{}
}

type Option func(*Engine)

// WithDryRun logs and reports moves without touching the file system
func WithDryRun(dryRun bool) Option {
	return func(e *Engine) {
		e.dryRun = dryRun
	}
}

// WithOverwrite sets the policy for existing destination files
func WithOverwrite(p Policy) Option {
	return func(e *Engine) {
		e.overwrite = p
	}
}

func New(fileIO io.FileIO, opts ...Option) *Engine {
	e := &Engine{
		fileIO:    fileIO,
		overwrite: OverwriteNever,
		planned:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DryRun reports whether the engine only simulates moves
func (e *Engine) DryRun() bool {
	return e.dryRun
}

// Reset forgets the destinations planned by earlier dry run moves. Call it at the start of every batch.
func (e *Engine) Reset() {
	clear(e.planned)
}

// Plan returns the moves for primary and its sidecars without performing them. The primary is always first,
// sidecars follow in name order.
func (e *Engine) Plan(primary, destination string) ([]Move, error) {
	info, err := e.fileIO.Stat(primary)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", primary, err)
	}

	moves := []Move{{Source: primary, Destination: destination, Size: info.Size()}}

	sidecars, err := e.sidecars(primary, destination)
	if err != nil {
		return nil, err
	}

	return append(moves, sidecars...), nil
}

// sidecars finds files in the primary's directory sharing its stem, e.g. X.srt or X.en.srt for X.mp4.
// Files with the primary's extension are separate episodes and are never sidecars.
func (e *Engine) sidecars(primary, destination string) ([]Move, error) {
	dir := filepath.Dir(primary)
	base := filepath.Base(primary)
	ext := filepath.Ext(base)
	prefix := strings.TrimSuffix(base, ext) + "."
	destinationStem := strings.TrimSuffix(destination, filepath.Ext(destination))

	entries, err := e.fileIO.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var moves []Move
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == base || !strings.HasPrefix(name, prefix) || filepath.Ext(name) == ext {
			continue
		}

		var size int64
		if info, err := entry.Info(); err == nil {
			size = info.Size()
		}

		moves = append(moves, Move{
			Source:      filepath.Join(dir, name),
			Destination: destinationStem + name[len(prefix)-1:],
			Size:        size,
			Sidecar:     true,
		})
	}

	return moves, nil
}

// Relocate moves primary to destination along with its sidecars. A failure to move the primary is returned
// before any sidecar is touched. Sidecar failures are collected in the report and joined into the returned error.
// A destination directory created for a primary that then fails to move is removed again.
func (e *Engine) Relocate(ctx context.Context, primary, destination string) (Report, error) {
	log := logger.FromCtx(ctx)
	report := Report{DryRun: e.dryRun}

	moves, err := e.Plan(primary, destination)
	if err != nil {
		return report, err
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	dir := filepath.Dir(destination)
	created := false
	if !e.dryRun {
		if err := e.conflict(destination); err != nil {
			return report, fmt.Errorf("failed to move %s to %s: %w", primary, destination, err)
		}

		if _, err := e.fileIO.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			created = true
		}
		if err := e.fileIO.MkdirAll(dir, 0o755); err != nil {
			return report, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	var sidecarErrs []error
	for _, m := range moves {
		if err := ctx.Err(); err != nil && m.Sidecar {
			return report, err
		}

		log.Infow("moving file",
			"source", m.Source,
			"destination", m.Destination,
			"size", humanize.IBytes(uint64(m.Size)),
			"sidecar", m.Sidecar,
			"dry_run", e.dryRun,
		)

		err := e.move(m)
		if err == nil {
			report.Moves = append(report.Moves, m)
			continue
		}

		err = fmt.Errorf("failed to move %s to %s: %w", m.Source, m.Destination, err)
		if !m.Sidecar {
			if created {
				// only succeeds while the directory is still empty
				_ = e.fileIO.Remove(dir)
			}
			return report, err
		}

		log.Warnw("failed to move sidecar", "source", m.Source, "error", err)
		report.Failed = append(report.Failed, m)
		sidecarErrs = append(sidecarErrs, err)
	}

	return report, errors.Join(sidecarErrs...)
}

// move performs m. A dry run fails the same way a real run would, including on
// destinations an earlier move of the batch already took.
func (e *Engine) move(m Move) error {
	if e.dryRun {
		if err := e.conflict(m.Destination); err != nil {
			return err
		}
		e.planned[m.Destination] = struct{}{}
		return nil
	}

	return e.fileIO.Move(m.Source, m.Destination, e.overwrite == OverwriteAlways)
}

func (e *Engine) conflict(destination string) error {
	if e.overwrite == OverwriteAlways {
		return nil
	}
	if _, ok := e.planned[destination]; ok {
		return io.ErrFileExists
	}
	if _, err := e.fileIO.Stat(destination); err == nil {
		return io.ErrFileExists
	}
	return nil
}
