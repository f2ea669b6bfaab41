package cache

import (
	"container/list"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"
)

// Entry is one cached artifact: the object code bytes for a module,
// addressed by its Key.Hash().
type Entry struct {
	Hash string
	Data []byte
}

// Store is an on-disk, content-addressed cache with in-memory LRU
// eviction bookkeeping. Each entry lives as its own file under Dir named
// by its hash, guarded by a per-entry POSIX advisory lock (via
// golang.org/x/sys/unix) so that concurrent `home build` invocations
// sharing a cache directory don't corrupt a partially-written entry.
type Store struct {
	Dir      string
	MaxBytes int64

	mu      sync.Mutex
	order   *list.List // front = most recently used
	index   map[string]*list.Element
	curSize int64
}

type lruNode struct {
	hash string
	size int64
}

// NewStore constructs a Store rooted at dir, creating it if necessary.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: creating cache dir: %w", err)
	}

	s := &Store{
		Dir: dir, MaxBytes: maxBytes,
		order: list.New(), index: make(map[string]*list.Element),
	}

	if err := s.scanExisting(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) scanExisting() error {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return fmt.Errorf("cache: scanning cache dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		s.touch(e.Name(), info.Size())
	}

	return nil
}

func (s *Store) path(hash string) string {
	return filepath.Join(s.Dir, hash)
}

// Get looks up a cached artifact by hash, returning (nil, false) on a
// cache miss.
func (s *Store) Get(hash string) (*Entry, bool) {
	f, err := os.Open(s.path(hash))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	if err := lockShared(f); err != nil {
		return nil, false
	}
	defer unlock(f)

	data, err := os.ReadFile(s.path(hash))
	if err != nil {
		return nil, false
	}

	s.mu.Lock()
	s.touch(hash, int64(len(data)))
	s.mu.Unlock()

	return &Entry{Hash: hash, Data: data}, true
}

// Put writes an artifact to the cache, evicting least-recently-used
// entries first if doing so would exceed MaxBytes.
func (s *Store) Put(hash string, data []byte) error {
	path := s.path(hash)

	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("cache: creating entry: %w", err)
	}

	if err := lockExclusive(f); err != nil {
		f.Close()
		return err
	}

	if _, err := f.Write(data); err != nil {
		unlock(f)
		f.Close()

		return fmt.Errorf("cache: writing entry: %w", err)
	}

	unlock(f)
	f.Close()

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("cache: finalizing entry: %w", err)
	}

	s.mu.Lock()
	s.touch(hash, int64(len(data)))
	s.evictLocked()
	s.mu.Unlock()

	return nil
}

// touch records hash as most-recently-used, updating curSize if this is a
// new entry or its size changed. Must be called with s.mu held, except
// from scanExisting which runs before any concurrent access is possible.
func (s *Store) touch(hash string, size int64) {
	if el, ok := s.index[hash]; ok {
		node := el.Value.(*lruNode)
		s.curSize += size - node.size
		node.size = size
		s.order.MoveToFront(el)

		return
	}

	el := s.order.PushFront(&lruNode{hash: hash, size: size})
	s.index[hash] = el
	s.curSize += size
}

func (s *Store) evictLocked() {
	if s.MaxBytes <= 0 {
		return
	}

	for s.curSize > s.MaxBytes {
		back := s.order.Back()
		if back == nil {
			return
		}

		node := back.Value.(*lruNode)
		s.order.Remove(back)
		delete(s.index, node.hash)
		s.curSize -= node.size

		_ = os.Remove(s.path(node.hash))
	}
}

func lockShared(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_SH)
}

func lockExclusive(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX)
}

func unlock(f *os.File) {
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
