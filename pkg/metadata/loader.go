package metadata

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/propdoc/pkg/util"
)

// ArgsFileSuffix names rendered story-args files. They are output, never
// metadata input.
const ArgsFileSuffix = ".args.json"

// DiscoverConfig selects metadata files under a root directory.
type DiscoverConfig struct {
	Include []string
	Exclude []string
}

// DefaultDiscoverConfig matches JSON and YAML documents and skips the usual
// dependency and build output directories, as well as rendered story args.
func DefaultDiscoverConfig() DiscoverConfig {
	return DiscoverConfig{
		Include: []string{
			"**/*.json",
			"**/*.yaml",
			"**/*.yml",
		},
		Exclude: []string{
			"node_modules/**",
			".git/**",
			".cache/**",
			"public/**",
			"dist/**",
			"build/**",
			".propdoc/**",
			"**/package.json",
			"**/package-lock.json",
			"**/tsconfig*.json",
			"**/*" + ArgsFileSuffix,
		},
	}
}

// Discover walks rootDir applying include/exclude globs from cfg.
// Returns a sorted slice of absolute file paths for deterministic output.
func Discover(rootDir string, cfg DiscoverConfig) ([]string, error) {
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range cfg.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Continue walking on errors.
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		for _, pattern := range cfg.Exclude {
			if matched, _ := doublestar.PathMatch(pattern, relPath); matched {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			return nil
		}

		if len(cfg.Include) > 0 && !matchAny(cfg.Include, relPath) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// ExcludeDir returns a copy of cfg that also skips dir when dir lies under
// rootDir. Other directories leave cfg unchanged.
func (cfg DiscoverConfig) ExcludeDir(rootDir, dir string) DiscoverConfig {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return cfg
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return cfg
	}
	rel, err := filepath.Rel(absRoot, absDir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return cfg
	}

	out := DiscoverConfig{
		Include: cfg.Include,
		Exclude: make([]string, 0, len(cfg.Exclude)+1),
	}
	out.Exclude = append(out.Exclude, cfg.Exclude...)
	out.Exclude = append(out.Exclude, filepath.ToSlash(rel)+"/**")
	return out
}

// Matches reports whether path (relative to rootDir) would be selected by cfg.
func (cfg DiscoverConfig) Matches(rootDir, path string) bool {
	rel, err := filepath.Rel(rootDir, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if matchAny(cfg.Exclude, rel) {
		return false
	}
	return len(cfg.Include) == 0 || matchAny(cfg.Include, rel)
}

func matchAny(patterns []string, relPath string) bool {
	for _, pattern := range patterns {
		if m, _ := doublestar.PathMatch(pattern, relPath); m {
			return true
		}
	}
	return false
}

// Loader reads metadata documents through a shared FileCache.
type Loader struct {
	cache  util.FileCache
	logger *slog.Logger
}

// NewLoader creates a Loader. A nil cache gets a default FileCache; a nil
// logger uses slog.Default().
func NewLoader(cache util.FileCache, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == nil {
		cache = util.NewFileCache(&util.FileCacheConfig{
			MaxFiles: util.DefaultFileCacheConfig().MaxFiles,
			Logger:   logger,
		})
	}
	return &Loader{cache: cache, logger: logger}
}

// LoadFile decodes a single metadata file without validating it.
func (l *Loader) LoadFile(path string) (*Set, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	var set *Set
	err = l.cache.Read(path, func(data []byte) error {
		decoded, err := Decode(data, format)
		if err != nil {
			return err
		}
		set = decoded
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	set.Origin = make(map[string]string, len(set.Components))
	for _, comp := range set.Components {
		set.Origin[comp.DisplayName] = path
	}
	return set, nil
}

// LoadDir discovers metadata files under root, decodes them, merges the
// results into one Set, validates it and builds the index.
func (l *Loader) LoadDir(root string, cfg DiscoverConfig) (*Set, *Index, error) {
	files, err := Discover(root, cfg)
	if err != nil {
		return nil, nil, err
	}
	return l.LoadFiles(files)
}

// LoadFiles decodes and merges the given files, then validates the result.
func (l *Loader) LoadFiles(files []string) (*Set, *Index, error) {
	merged := &Set{Origin: make(map[string]string)}
	var errs []error

	for _, path := range files {
		set, err := l.LoadFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		merged.Components = append(merged.Components, set.Components...)
		for name, origin := range set.Origin {
			if _, exists := merged.Origin[name]; !exists {
				merged.Origin[name] = origin
			}
		}
	}
	if len(errs) > 0 {
		return nil, nil, fmt.Errorf("failed to load metadata: %w", errors.Join(errs...))
	}

	if errs := merged.Validate(); len(errs) > 0 {
		return nil, nil, fmt.Errorf("metadata validation failed: %w", errors.Join(errs...))
	}

	l.logger.Debug("metadata loaded", "files", len(files), "components", len(merged.Components))
	return merged, merged.BuildIndex(), nil
}

// Invalidate drops a file from the underlying cache so the next load sees
// the current contents.
func (l *Loader) Invalidate(path string) {
	l.cache.Invalidate(path)
}

// Close releases the underlying cache.
func (l *Loader) Close() error {
	return l.cache.Close()
}
