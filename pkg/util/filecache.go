// FileCache keeps metadata documents memory-mapped between reads.
//
// **Behavior:**
//   - Lazy loading: files are mapped on first Read
//   - Stale detection: a file whose size or mtime changed since it was
//     mapped is remapped on the next Read
//   - Graceful fallback to os.ReadFile if mmap fails
//   - Thread-safe: Read holds a read lock for the duration of the callback,
//     so a concurrent Invalidate or Close never unmaps bytes in use
//
// **Lifecycle:**
//   - Kept mapped until Invalidate, Close, or the MaxFiles limit is reached
//   - Watchers call Invalidate when a file changes on disk
package util

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/edsrzf/mmap-go"
)

// FileCache provides access to file contents through memory-mapped regions.
type FileCache interface {
	// Read calls fn with the contents of filePath. The slice is only valid
	// for the duration of fn and must not be retained.
	Read(filePath string, fn func(data []byte) error) error

	// Invalidate unmaps filePath so the next Read loads it again.
	Invalidate(filePath string)

	// Size returns number of currently cached files.
	Size() int

	// Stats returns current cache metrics.
	Stats() FileCacheStats

	// Close unmaps all files and releases resources.
	Close() error
}

// FileCacheConfig controls FileCache behavior.
type FileCacheConfig struct {
	// MaxFiles is the maximum number of files to keep mapped.
	// Set to 0 for unlimited. When the limit is reached, Read falls back to
	// reading the file without caching it.
	MaxFiles int

	// Logger for warnings. If nil, uses slog.Default().
	Logger *slog.Logger
}

// DefaultFileCacheConfig returns defaults suited to a documentation tree.
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{
		MaxFiles: 4096,
	}
}

// MappedFile represents a memory-mapped file.
type MappedFile struct {
	Path string

	// Data is the mapped region, or a heap copy for fallback entries.
	// Nil for empty files.
	Data mmap.MMap

	// File is nil for fallback entries.
	File *os.File

	Size    int64
	ModTime time.Time
}

// FileCacheStats tracks cache performance metrics.
type FileCacheStats struct {
	FilesLoaded  int64
	FilesCached  int
	CacheHits    int64
	CacheMisses  int64
	Remaps       int64
	MmapFailures int64
}

type fileCacheImpl struct {
	config *FileCacheConfig
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]*MappedFile

	statsMu sync.Mutex
	stats   FileCacheStats
}

// NewFileCache creates a new FileCache with the given config.
//
// If config is nil, uses DefaultFileCacheConfig().
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &fileCacheImpl{
		config: config,
		logger: logger,
		cache:  make(map[string]*MappedFile),
	}
}

// Read calls fn with the cached contents of filePath, loading it if needed.
func (fc *fileCacheImpl) Read(filePath string, fn func(data []byte) error) error {
	info, err := os.Stat(filePath)
	if err != nil {
		fc.recordMiss()
		return fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}

	// Fast path: fresh entry under a read lock.
	fc.mu.RLock()
	if mf, ok := fc.cache[filePath]; ok && fresh(mf, info) {
		defer fc.mu.RUnlock()
		fc.recordHit()
		return fn(mf.Data)
	}
	fc.mu.RUnlock()

	fc.mu.Lock()
	mf, ok := fc.cache[filePath]
	switch {
	case ok && fresh(mf, info):
		fc.recordHit()
	case ok:
		fc.unmapLocked(mf)
		delete(fc.cache, filePath)
		fc.recordRemap()
		fallthrough
	default:
		fc.recordMiss()
		if fc.config.MaxFiles > 0 && len(fc.cache) >= fc.config.MaxFiles {
			fc.mu.Unlock()
			fc.logger.Debug("file cache full, reading uncached", "file", filePath, "limit", fc.config.MaxFiles)
			data, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("failed to read file %q: %w", filePath, err)
			}
			return fn(data)
		}
		mf, err = fc.loadFile(filePath)
		if err != nil {
			fc.mu.Unlock()
			return err
		}
		fc.cache[filePath] = mf
		fc.recordLoad()
	}
	fc.mu.Unlock()

	// Re-acquire as a reader so fn never blocks other readers. The entry may
	// have been invalidated in between; retry through the slow path then.
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	if cur, ok := fc.cache[filePath]; ok && cur == mf {
		return fn(mf.Data)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	return fn(data)
}

func fresh(mf *MappedFile, info os.FileInfo) bool {
	return mf.Size == info.Size() && mf.ModTime.Equal(info.ModTime())
}

// loadFile opens and mmaps a file, with fallback to os.ReadFile if mmap fails.
//
// Must be called while holding mu.Lock.
func (fc *fileCacheImpl) loadFile(filePath string) (*MappedFile, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", filePath, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}

	// Zero-length files cannot be mapped.
	if stat.Size() == 0 {
		file.Close()
		return &MappedFile{Path: filePath, ModTime: stat.ModTime()}, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		fc.logger.Warn("mmap failed, using fallback",
			"file", filePath,
			"size", stat.Size(),
			"error", err)
		file.Close()
		fc.recordMmapFailure()

		raw, readErr := os.ReadFile(filePath)
		if readErr != nil {
			return nil, fmt.Errorf("mmap failed and fallback failed for %q: mmap error: %v, read error: %w",
				filePath, err, readErr)
		}
		return &MappedFile{
			Path:    filePath,
			Data:    mmap.MMap(raw),
			Size:    int64(len(raw)),
			ModTime: stat.ModTime(),
		}, nil
	}

	return &MappedFile{
		Path:    filePath,
		Data:    data,
		File:    file,
		Size:    stat.Size(),
		ModTime: stat.ModTime(),
	}, nil
}

// Invalidate drops filePath from the cache.
func (fc *fileCacheImpl) Invalidate(filePath string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if mf, ok := fc.cache[filePath]; ok {
		fc.unmapLocked(mf)
		delete(fc.cache, filePath)
	}
}

// unmapLocked releases the mapping and descriptor of mf.
// Fallback entries own no mapping and are left to the GC.
//
// Must be called while holding mu.Lock.
func (fc *fileCacheImpl) unmapLocked(mf *MappedFile) error {
	if mf.File == nil {
		return nil
	}
	var errs []error
	if mf.Data != nil {
		if err := mf.Data.Unmap(); err != nil {
			fc.logger.Warn("failed to unmap file", "path", mf.Path, "error", err)
			errs = append(errs, fmt.Errorf("unmap %q: %w", mf.Path, err))
		}
	}
	if err := mf.File.Close(); err != nil {
		fc.logger.Warn("failed to close file", "path", mf.Path, "error", err)
		errs = append(errs, fmt.Errorf("close %q: %w", mf.Path, err))
	}
	return errors.Join(errs...)
}

// Size returns number of currently cached files.
func (fc *fileCacheImpl) Size() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.cache)
}

// Stats returns current cache metrics.
func (fc *fileCacheImpl) Stats() FileCacheStats {
	cached := fc.Size()

	fc.statsMu.Lock()
	defer fc.statsMu.Unlock()
	stats := fc.stats
	stats.FilesCached = cached
	return stats
}

// Close unmaps all files and releases resources.
func (fc *fileCacheImpl) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var errs []error
	for _, mf := range fc.cache {
		if err := fc.unmapLocked(mf); err != nil {
			errs = append(errs, err)
		}
	}
	fc.cache = make(map[string]*MappedFile)

	fc.statsMu.Lock()
	stats := fc.stats
	fc.statsMu.Unlock()
	fc.logger.Debug("file cache closed",
		"files_loaded", stats.FilesLoaded,
		"cache_hits", stats.CacheHits,
		"cache_misses", stats.CacheMisses)

	return errors.Join(errs...)
}

func (fc *fileCacheImpl) recordHit() {
	fc.statsMu.Lock()
	fc.stats.CacheHits++
	fc.statsMu.Unlock()
}

func (fc *fileCacheImpl) recordMiss() {
	fc.statsMu.Lock()
	fc.stats.CacheMisses++
	fc.statsMu.Unlock()
}

func (fc *fileCacheImpl) recordLoad() {
	fc.statsMu.Lock()
	fc.stats.FilesLoaded++
	fc.statsMu.Unlock()
}

func (fc *fileCacheImpl) recordRemap() {
	fc.statsMu.Lock()
	fc.stats.Remaps++
	fc.statsMu.Unlock()
}

func (fc *fileCacheImpl) recordMmapFailure() {
	fc.statsMu.Lock()
	fc.stats.MmapFailures++
	fc.statsMu.Unlock()
}
