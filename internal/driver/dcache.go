package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"sglint/internal/audit"
	"sglint/internal/diag"
	"sglint/internal/rule"
	"sglint/internal/source"
)

// Current schema version - increment when CachedResult changes shape.
const cacheSchemaVersion uint16 = 2

// CachedResult is the file-independent part of a FileResult. Spans are
// stored with their FileID and rebound on restore.
type CachedResult struct {
	Schema      uint16
	Reported    []rule.Violation
	Suppressed  []rule.Violation
	Findings    []audit.Finding
	Diagnostics []diag.Diagnostic
}

// DiskCache stores lint results by cache key on disk.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache opens dir, or $XDG_CACHE_HOME/<app> when dir is empty.
func OpenDiskCache(dir, app string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "results", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a result. The file is replaced atomically so
// concurrent readers never see a partial entry.
func (c *DiskCache) Put(key Digest, res *CachedResult) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck

	if err := msgpack.NewEncoder(f).Encode(res); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// Get reads a result. A missing entry or one from another schema is a miss.
func (c *DiskCache) Get(key Digest) (*CachedResult, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var out CachedResult
	if err := msgpack.NewDecoder(f).Decode(&out); err != nil {
		return nil, false, err
	}
	if out.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return &out, true, nil
}

// DropAll removes every cached entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// rename first so a concurrent run never reads a half-deleted tree
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// toCached strips the FileResult down to what can be replayed.
func toCached(r *FileResult) *CachedResult {
	out := &CachedResult{
		Schema:     cacheSchemaVersion,
		Reported:   r.Reported,
		Suppressed: r.Suppressed,
		Findings:   r.Findings,
	}
	if r.Bag != nil {
		out.Diagnostics = append([]diag.Diagnostic(nil), r.Bag.Items()...)
	}
	return out
}

// restore rebinds every span to file and rebuilds the unfinished bag.
func (c *CachedResult) restore(path string, file source.FileID) FileResult {
	rebind := func(vs []rule.Violation) []rule.Violation {
		out := make([]rule.Violation, len(vs))
		for i, v := range vs {
			v.Span.File = file
			if v.Fix != nil {
				fx := rebindFix(*v.Fix, file)
				v.Fix = &fx
			}
			out[i] = v
		}
		return out
	}
	bag := diag.NewBag(0)
	for _, d := range c.Diagnostics {
		d.Primary.File = file
		notes := make([]diag.Note, len(d.Notes))
		for i, n := range d.Notes {
			n.Span.File = file
			notes[i] = n
		}
		d.Notes = notes
		fixes := make([]diag.Fix, len(d.Fixes))
		for i, fx := range d.Fixes {
			fixes[i] = rebindFix(fx, file)
		}
		d.Fixes = fixes
		bag.Add(d)
	}
	return FileResult{
		Path:       path,
		FileID:     file,
		Reported:   rebind(c.Reported),
		Suppressed: rebind(c.Suppressed),
		Findings:   append([]audit.Finding(nil), c.Findings...),
		Bag:        bag,
		Loaded:     true,
		Cached:     true,
	}
}

func rebindFix(fx diag.Fix, file source.FileID) diag.Fix {
	edits := make([]diag.FixEdit, len(fx.Edits))
	for i, e := range fx.Edits {
		e.Span.File = file
		edits[i] = e
	}
	fx.Edits = edits
	return fx
}
