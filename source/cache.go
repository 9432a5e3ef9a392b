package source

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const metaFileName = "sources_meta.json"

// 缓存条目状态
const (
	EntryActive = "active"
	EntryFailed = "failed"
	EntryBad    = "bad" // 连续失败 3 次及以上
)

// CacheEntry 记录一个上游地址的条件请求信息和本地缓存文件
type CacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"last_modified"`
	CacheFile    string    `json:"cache_file"`
	LineCount    int       `json:"line_count"`
	LastUpdate   time.Time `json:"last_update"`
	LastError    string    `json:"last_error"`
	FailCount    int       `json:"fail_count"`
	Status       string    `json:"status"`
}

// CacheStore keeps fetched fragments on disk so unchanged upstream files
// can be served from a 304 Not Modified response.
type CacheStore struct {
	dir      string
	metaFile string
	entries  map[string]*CacheEntry
	mu       sync.RWMutex
}

// NewCacheStore 创建缓存目录并加载已有的元数据
func NewCacheStore(dir string) (*CacheStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	cs := &CacheStore{
		dir:      dir,
		metaFile: filepath.Join(dir, metaFileName),
		entries:  make(map[string]*CacheEntry),
	}

	if err := cs.loadMeta(); err != nil && !os.IsNotExist(err) {
		// 元数据损坏时从空缓存开始，下次保存会覆盖
		log.Warnf("ignoring unreadable cache metadata %s: %v", cs.metaFile, err)
	}
	return cs, nil
}

func (cs *CacheStore) loadMeta() error {
	data, err := os.ReadFile(cs.metaFile)
	if err != nil {
		return err
	}

	var entries []*CacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	for _, e := range entries {
		cs.entries[e.URL] = e
	}
	return nil
}

// Save writes the metadata file, entries sorted by URL.
func (cs *CacheStore) Save() error {
	cs.mu.RLock()
	entries := make([]*CacheEntry, 0, len(cs.entries))
	for _, e := range cs.entries {
		entries = append(entries, e)
	}
	data, err := json.MarshalIndent(sortedEntries(entries), "", "  ")
	cs.mu.RUnlock()
	if err != nil {
		return err
	}

	return writeFileAtomic(cs.metaFile, data)
}

func sortedEntries(entries []*CacheEntry) []*CacheEntry {
	sort.Slice(entries, func(i, j int) bool { return entries[i].URL < entries[j].URL })
	return entries
}

// Get returns a copy of the entry for url.
func (cs *CacheStore) Get(url string) (CacheEntry, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	e, ok := cs.entries[url]
	if !ok {
		return CacheEntry{}, false
	}
	return *e, true
}

// Entries returns copies of all entries sorted by URL.
func (cs *CacheStore) Entries() []CacheEntry {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	out := make([]CacheEntry, 0, len(cs.entries))
	for _, e := range cs.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}

// ReadBody returns the cached fragment body for url.
func (cs *CacheStore) ReadBody(url string) ([]byte, error) {
	e, ok := cs.Get(url)
	if !ok || e.CacheFile == "" {
		return nil, fmt.Errorf("no cached body for %s", url)
	}
	return os.ReadFile(filepath.Join(cs.dir, e.CacheFile))
}

// Store saves a freshly downloaded body together with its validators.
func (cs *CacheStore) Store(url, etag, lastModified string, body []byte, lineCount int) error {
	name := cacheFileName(url)
	if err := writeFileAtomic(filepath.Join(cs.dir, name), body); err != nil {
		return err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.entries[url] = &CacheEntry{
		URL:          url,
		ETag:         etag,
		LastModified: lastModified,
		CacheFile:    name,
		LineCount:    lineCount,
		LastUpdate:   time.Now().UTC(),
		Status:       EntryActive,
	}
	return nil
}

// MarkFresh records a successful 304 revalidation.
func (cs *CacheStore) MarkFresh(url string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if e, ok := cs.entries[url]; ok {
		e.LastUpdate = time.Now().UTC()
		e.LastError = ""
		e.FailCount = 0
		e.Status = EntryActive
	}
}

// MarkFailed records a failed fetch. The cached body, if any, is kept.
func (cs *CacheStore) MarkFailed(url string, err error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	e, ok := cs.entries[url]
	if !ok {
		e = &CacheEntry{URL: url}
		cs.entries[url] = e
	}
	e.LastUpdate = time.Now().UTC()
	e.LastError = err.Error()
	e.FailCount++
	e.Status = EntryFailed
	if e.FailCount >= 3 {
		e.Status = EntryBad
	}
}

func cacheFileName(url string) string {
	h := sha256.Sum256([]byte(url))
	return "fragment_" + hex.EncodeToString(h[:16]) + ".txt"
}

// writeFileAtomic 先写临时文件再重命名，防止写入中断导致文件损坏
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
