// Package cache stores computed results as checksummed JSON files so repeated
// runs over unchanged expressions skip the backend.
package cache

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/forest-guardian/lakewatch/internal/properties"
)

type Entry[T any] struct {
	Data      T         `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	Checksum  string    `json:"checksum"`
}

type Service[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T) error
}

type FileCache[T any] struct {
	dir string
	// MaxAge, when positive, turns older entries into misses.
	MaxAge time.Duration
	now    func() time.Time
}

// NewFileCache keeps entries under <root>/data/cache/<subDir>.
func NewFileCache[T any](subDir string) *FileCache[T] {
	return NewFileCacheAt[T](filepath.Join(properties.RootPath(), "data", "cache", subDir))
}

func NewFileCacheAt[T any](dir string) *FileCache[T] {
	return &FileCache[T]{dir: dir, now: time.Now}
}

func (fc *FileCache[T]) Dir() string {
	return fc.dir
}

// Key joins the parts and hashes them into a file-safe name.
func Key(parts ...any) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprintf("%v", p)
	}
	h := sha1.Sum([]byte(strings.Join(s, "_")))
	return hex.EncodeToString(h[:])
}

func (fc *FileCache[T]) Get(key string) (T, bool) {
	var zero T
	data, err := os.ReadFile(fc.path(key))
	if err != nil {
		return zero, false
	}

	var entry Entry[T]
	if err := json.Unmarshal(data, &entry); err != nil {
		return zero, false
	}
	if entry.Checksum != checksum(entry.Data) {
		return zero, false
	}
	if fc.MaxAge > 0 && fc.now().Sub(entry.CreatedAt) > fc.MaxAge {
		return zero, false
	}
	return entry.Data, true
}

func (fc *FileCache[T]) Set(key string, data T) error {
	if err := os.MkdirAll(fc.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	jsonData, err := json.Marshal(Entry[T]{
		Data:      data,
		CreatedAt: fc.now(),
		Checksum:  checksum(data),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	file := fc.path(key)
	tmpFile := file + ".tmp"
	if err := os.WriteFile(tmpFile, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	if err := os.Rename(tmpFile, file); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename temp cache file: %w", err)
	}
	return nil
}

func (fc *FileCache[T]) path(key string) string {
	return filepath.Join(fc.dir, key+".json")
}

func checksum[T any](data T) string {
	jsonData, _ := json.Marshal(data)
	hash := md5.Sum(jsonData)
	return hex.EncodeToString(hash[:])
}
