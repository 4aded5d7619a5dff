package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/hyperjump/latexify/internal/models"
	"github.com/hyperjump/latexify/internal/pipeline"
)

// FileConverter converts one file to a .tex file. *pipeline.Converter implements it.
type FileConverter interface {
	ConvertFile(ctx context.Context, inPath, outPath, hint string, opts ...pipeline.RequestOption) (models.LatexDocument, error)
}

// FolderStats counts folder conversions since start.
type FolderStats struct {
	Converted int64
	Fallback  int64
	Failed    int64
	Removed   int64
}

// Folder mirrors every supported document under an input directory as a .tex
// file under an output directory: in/notes/a.docx becomes out/notes/a.tex.
type Folder struct {
	conv      FileConverter
	inDir     string
	outDir    string
	logger    *zap.Logger
	locks     sync.Map // input path -> *sync.Mutex
	converted atomic.Int64
	fallback  atomic.Int64
	failed    atomic.Int64
	removed   atomic.Int64
}

// NewFolder creates a folder sync from inDir to outDir.
func NewFolder(conv FileConverter, inDir, outDir string, logger *zap.Logger) *Folder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Folder{
		conv:   conv,
		inDir:  filepath.Clean(inDir),
		outDir: filepath.Clean(outDir),
		logger: logger,
	}
}

// OutputPath returns where the LaTeX for inPath is written.
func (f *Folder) OutputPath(inPath string) string {
	rel, err := filepath.Rel(f.inDir, inPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(inPath)
	}
	return filepath.Join(f.outDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".tex")
}

// lock serializes work on one input path and returns the unlock func.
func (f *Folder) lock(inPath string) func() {
	m, _ := f.locks.LoadOrStore(inPath, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Convert converts one input file. Failures are logged and counted, not returned,
// so one bad file does not stop the watch loop. Calls for the same path run one
// at a time.
func (f *Folder) Convert(ctx context.Context, inPath string) {
	defer f.lock(inPath)()
	out := f.OutputPath(inPath)
	doc, err := f.conv.ConvertFile(ctx, inPath, out, "")
	if err != nil {
		f.failed.Add(1)
		f.logger.Warn("folder conversion failed", zap.String("input", inPath), zap.Error(err))
		return
	}
	f.converted.Add(1)
	if doc.Path == models.PathFallback {
		f.fallback.Add(1)
	}
	f.logger.Info("folder conversion written",
		zap.String("input", inPath),
		zap.String("output", out),
		zap.String("path", string(doc.Path)))
}

// Remove deletes the output for a removed input file.
func (f *Folder) Remove(inPath string) {
	defer f.lock(inPath)()
	out := f.OutputPath(inPath)
	if err := os.Remove(out); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			f.logger.Warn("folder remove failed", zap.String("output", out), zap.Error(err))
		}
		return
	}
	f.removed.Add(1)
	f.logger.Info("folder output removed", zap.String("output", out))
}

// Stats returns the current counters.
func (f *Folder) Stats() FolderStats {
	return FolderStats{
		Converted: f.converted.Load(),
		Fallback:  f.fallback.Load(),
		Failed:    f.failed.Load(),
		Removed:   f.removed.Load(),
	}
}

// Watch converts existing files, then watches inDir until ctx is done. No
// conversion is running once it returns.
// extensions filters inputs; recursive includes subdirectories.
func (f *Folder) Watch(ctx context.Context, extensions []string, recursive bool, opts ...Option) error {
	base := []Option{WithLogger(f.logger)}
	if f.outDir != f.inDir {
		base = append(base, WithExclude(f.outDir))
	}
	opts = append(base, opts...)
	w := New(f.inDir, extensions, recursive,
		func(path string) { f.Convert(ctx, path) },
		f.Remove,
		opts...)
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()
	f.logger.Info("watching folder", zap.String("input", f.inDir), zap.String("output", f.outDir))
	w.SyncExisting()
	<-ctx.Done()
	return nil
}
