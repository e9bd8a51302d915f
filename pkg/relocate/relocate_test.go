package relocate

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	mio "github.com/kasuboski/showmatcher/pkg/io"
	"github.com/kasuboski/showmatcher/pkg/io/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newSource creates files with the given names in a fresh directory
func newSource(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(n), 0o644))
	}
	return dir
}

func TestEngine_Relocate(t *testing.T) {
	ctx := context.Background()

	t.Run("moves primary and sidecars", func(t *testing.T) {
		src := newSource(t, "X.mp4", "X.srt", "X.jpg", "Y.mp4")
		dst := filepath.Join(t.TempDir(), "Season 01", "Show S01E01.mp4")

		e := New(&mio.MediaFileSystem{})
		report, err := e.Relocate(ctx, filepath.Join(src, "X.mp4"), dst)
		require.NoError(t, err)

		outDir := filepath.Dir(dst)
		assert.Equal(t, []Move{
			{Source: filepath.Join(src, "X.mp4"), Destination: dst, Size: 5},
			{Source: filepath.Join(src, "X.jpg"), Destination: filepath.Join(outDir, "Show S01E01.jpg"), Size: 5, Sidecar: true},
			{Source: filepath.Join(src, "X.srt"), Destination: filepath.Join(outDir, "Show S01E01.srt"), Size: 5, Sidecar: true},
		}, report.Moves)
		assert.Empty(t, report.Failed)
		assert.Equal(t, int64(15), report.Bytes())

		assert.FileExists(t, dst)
		assert.FileExists(t, filepath.Join(outDir, "Show S01E01.srt"))
		assert.FileExists(t, filepath.Join(outDir, "Show S01E01.jpg"))
		assert.FileExists(t, filepath.Join(src, "Y.mp4"))
		assert.NoFileExists(t, filepath.Join(src, "X.mp4"))
		assert.NoFileExists(t, filepath.Join(src, "X.srt"))
		assert.NoFileExists(t, filepath.Join(src, "X.jpg"))
	})

	t.Run("compound sidecar suffix", func(t *testing.T) {
		src := newSource(t, "X.mp4", "X.en.srt", "XY.srt")
		dst := filepath.Join(t.TempDir(), "Show S01E01.mp4")

		report, err := New(&mio.MediaFileSystem{}).Relocate(ctx, filepath.Join(src, "X.mp4"), dst)
		require.NoError(t, err)
		require.Len(t, report.Moves, 2)

		assert.FileExists(t, filepath.Join(filepath.Dir(dst), "Show S01E01.en.srt"))
		assert.FileExists(t, filepath.Join(src, "XY.srt"))
	})

	t.Run("dry run matches real run without touching files", func(t *testing.T) {
		src := newSource(t, "X.mp4", "X.srt", "X.jpg", "Y.mp4")
		dst := filepath.Join(t.TempDir(), "Season 01", "Show S01E01.mp4")

		dry, err := New(&mio.MediaFileSystem{}, WithDryRun(true)).Relocate(ctx, filepath.Join(src, "X.mp4"), dst)
		require.NoError(t, err)
		assert.True(t, dry.DryRun)

		for _, n := range []string{"X.mp4", "X.srt", "X.jpg", "Y.mp4"} {
			assert.FileExists(t, filepath.Join(src, n))
		}
		assert.NoDirExists(t, filepath.Dir(dst))

		moved, err := New(&mio.MediaFileSystem{}).Relocate(ctx, filepath.Join(src, "X.mp4"), dst)
		require.NoError(t, err)
		assert.Equal(t, moved.Moves, dry.Moves)
	})

	t.Run("existing destination is not overwritten", func(t *testing.T) {
		src := newSource(t, "X.mp4", "X.srt")
		out := newSource(t, "Show S01E01.mp4")
		dst := filepath.Join(out, "Show S01E01.mp4")

		for _, dryRun := range []bool{true, false} {
			report, err := New(&mio.MediaFileSystem{}, WithDryRun(dryRun)).Relocate(ctx, filepath.Join(src, "X.mp4"), dst)
			assert.ErrorIs(t, err, mio.ErrFileExists)
			assert.Empty(t, report.Moves)
		}

		assert.FileExists(t, filepath.Join(src, "X.mp4"))
		assert.FileExists(t, filepath.Join(src, "X.srt"))
		b, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "Show S01E01.mp4", string(b))
	})

	t.Run("dry run remembers destinations claimed earlier in the batch", func(t *testing.T) {
		src := newSource(t, "A.mp4", "B.mp4")
		dst := filepath.Join(t.TempDir(), "Season 01", "Show S01E01.mp4")

		e := New(&mio.MediaFileSystem{}, WithDryRun(true))
		_, err := e.Relocate(ctx, filepath.Join(src, "A.mp4"), dst)
		require.NoError(t, err)

		report, err := e.Relocate(ctx, filepath.Join(src, "B.mp4"), dst)
		assert.ErrorIs(t, err, mio.ErrFileExists)
		assert.Empty(t, report.Moves)

		e.Reset()
		_, err = e.Relocate(ctx, filepath.Join(src, "B.mp4"), dst)
		assert.NoError(t, err)

		_, err = New(&mio.MediaFileSystem{}, WithDryRun(true), WithOverwrite(OverwriteAlways)).Relocate(ctx, filepath.Join(src, "B.mp4"), dst)
		assert.NoError(t, err)
	})

	t.Run("existing destination is overwritten when allowed", func(t *testing.T) {
		src := newSource(t, "X.mp4")
		out := newSource(t, "Show S01E01.mp4")
		dst := filepath.Join(out, "Show S01E01.mp4")

		_, err := New(&mio.MediaFileSystem{}, WithOverwrite(OverwriteAlways)).Relocate(ctx, filepath.Join(src, "X.mp4"), dst)
		require.NoError(t, err)

		b, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "X.mp4", string(b))
	})

	t.Run("sidecar failure is reported after primary moves", func(t *testing.T) {
		src := newSource(t, "X.mp4", "X.srt", "X.nfo")
		out := newSource(t, "Show S01E01.srt")
		dst := filepath.Join(out, "Show S01E01.mp4")

		report, err := New(&mio.MediaFileSystem{}).Relocate(ctx, filepath.Join(src, "X.mp4"), dst)
		assert.ErrorIs(t, err, mio.ErrFileExists)
		assert.ErrorContains(t, err, "X.srt")

		require.Len(t, report.Failed, 1)
		assert.Equal(t, filepath.Join(src, "X.srt"), report.Failed[0].Source)
		require.Len(t, report.Moves, 2)
		assert.FileExists(t, dst)
		assert.FileExists(t, filepath.Join(out, "Show S01E01.nfo"))
		assert.FileExists(t, filepath.Join(src, "X.srt"))
	})

	t.Run("missing primary", func(t *testing.T) {
		src := newSource(t)
		_, err := New(&mio.MediaFileSystem{}).Relocate(ctx, filepath.Join(src, "X.mp4"), filepath.Join(src, "out.mp4"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestEngine_Relocate_Mocked(t *testing.T) {
	ctx := context.Background()
	files := fstest.MapFS{
		"X.mp4": {Data: []byte("episode")},
		"X.srt": {Data: []byte("subs")},
		"Y.mp4": {Data: []byte("other")},
	}
	info, err := fs.Stat(files, "X.mp4")
	require.NoError(t, err)
	entries, err := fs.ReadDir(files, ".")
	require.NoError(t, err)

	t.Run("mkdir failure stops before moving", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fileIO := mocks.NewMockFileIO(ctrl)

		fileIO.EXPECT().Stat("/in/X.mp4").Return(info, nil)
		fileIO.EXPECT().ReadDir("/in").Return(entries, nil)
		fileIO.EXPECT().Stat("/out/Season 01/Show S01E01.mp4").Return(nil, fs.ErrNotExist)
		fileIO.EXPECT().Stat("/out/Season 01").Return(nil, fs.ErrNotExist)
		fileIO.EXPECT().MkdirAll("/out/Season 01", fs.FileMode(0o755)).Return(errors.New("read-only file system"))

		_, err := New(fileIO).Relocate(ctx, "/in/X.mp4", "/out/Season 01/Show S01E01.mp4")
		assert.ErrorContains(t, err, "read-only file system")
	})

	t.Run("primary moves before sidecars", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fileIO := mocks.NewMockFileIO(ctrl)

		fileIO.EXPECT().Stat("/in/X.mp4").Return(info, nil)
		fileIO.EXPECT().ReadDir("/in").Return(entries, nil)
		fileIO.EXPECT().Stat("/out").Return(info, nil)
		fileIO.EXPECT().MkdirAll("/out", gomock.Any()).Return(nil)
		gomock.InOrder(
			fileIO.EXPECT().Move("/in/X.mp4", "/out/Show S01E01.mp4", true).Return(nil),
			fileIO.EXPECT().Move("/in/X.srt", "/out/Show S01E01.srt", true).Return(nil),
		)

		report, err := New(fileIO, WithOverwrite(OverwriteAlways)).Relocate(ctx, "/in/X.mp4", "/out/Show S01E01.mp4")
		require.NoError(t, err)
		assert.Len(t, report.Moves, 2)
		assert.Equal(t, int64(7), report.Moves[0].Size)
		assert.Equal(t, int64(4), report.Moves[1].Size)
	})

	t.Run("created directory is removed when the primary fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fileIO := mocks.NewMockFileIO(ctrl)

		fileIO.EXPECT().Stat("/in/X.mp4").Return(info, nil)
		fileIO.EXPECT().ReadDir("/in").Return(entries, nil)
		fileIO.EXPECT().Stat("/out/Season 01/Show S01E01.mp4").Return(nil, fs.ErrNotExist)
		fileIO.EXPECT().Stat("/out/Season 01").Return(nil, fs.ErrNotExist)
		gomock.InOrder(
			fileIO.EXPECT().MkdirAll("/out/Season 01", gomock.Any()).Return(nil),
			fileIO.EXPECT().Move("/in/X.mp4", "/out/Season 01/Show S01E01.mp4", false).Return(errors.New("input/output error")),
			fileIO.EXPECT().Remove("/out/Season 01").Return(nil),
		)

		report, err := New(fileIO).Relocate(ctx, "/in/X.mp4", "/out/Season 01/Show S01E01.mp4")
		assert.ErrorContains(t, err, "input/output error")
		assert.Empty(t, report.Moves)
	})

	t.Run("existing directory is kept when the primary fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fileIO := mocks.NewMockFileIO(ctrl)

		fileIO.EXPECT().Stat("/in/X.mp4").Return(info, nil)
		fileIO.EXPECT().ReadDir("/in").Return(entries, nil)
		fileIO.EXPECT().Stat("/out/Season 01/Show S01E01.mp4").Return(nil, fs.ErrNotExist)
		fileIO.EXPECT().Stat("/out/Season 01").Return(info, nil)
		fileIO.EXPECT().MkdirAll("/out/Season 01", gomock.Any()).Return(nil)
		fileIO.EXPECT().Move("/in/X.mp4", "/out/Season 01/Show S01E01.mp4", false).Return(errors.New("input/output error"))

		_, err := New(fileIO).Relocate(ctx, "/in/X.mp4", "/out/Season 01/Show S01E01.mp4")
		assert.ErrorContains(t, err, "input/output error")
	})

	t.Run("dry run only stats", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fileIO := mocks.NewMockFileIO(ctrl)

		fileIO.EXPECT().Stat("/in/X.mp4").Return(info, nil)
		fileIO.EXPECT().ReadDir("/in").Return(entries, nil)
		fileIO.EXPECT().Stat("/out/Show S01E01.mp4").Return(nil, fs.ErrNotExist)
		fileIO.EXPECT().Stat("/out/Show S01E01.srt").Return(nil, fs.ErrNotExist)

		report, err := New(fileIO, WithDryRun(true)).Relocate(ctx, "/in/X.mp4", "/out/Show S01E01.mp4")
		require.NoError(t, err)
		assert.Len(t, report.Moves, 2)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fileIO := mocks.NewMockFileIO(ctrl)

		fileIO.EXPECT().Stat("/in/X.mp4").Return(info, nil)
		fileIO.EXPECT().ReadDir("/in").Return(entries, nil)

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := New(fileIO).Relocate(cctx, "/in/X.mp4", "/out/Show S01E01.mp4")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPolicy_String(t *testing.T) {
	assert.Equal(t, "never", OverwriteNever.String())
	assert.Equal(t, "always", OverwriteAlways.String())
}
