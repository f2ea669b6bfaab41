package cache

import (
	"testing"

	"github.com/home-lang/home/pkg/pass"
)

func Test_Key_Hash_Deterministic(t *testing.T) {
	k1 := Key{Source: []byte("fn main() {}"), Version: "0.1.0", Level: pass.O2, Flags: []string{"b", "a"}}
	k2 := Key{Source: []byte("fn main() {}"), Version: "0.1.0", Level: pass.O2, Flags: []string{"a", "b"}}

	if k1.Hash() != k2.Hash() {
		t.Fatal("expected flag order not to affect the hash")
	}
}

func Test_Key_Hash_DiffersOnSource(t *testing.T) {
	k1 := Key{Source: []byte("fn main() {}"), Version: "0.1.0"}
	k2 := Key{Source: []byte("fn main() { }"), Version: "0.1.0"}

	if k1.Hash() == k2.Hash() {
		t.Fatal("expected different source to produce a different hash")
	}
}

func Test_Store_PutGet(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStore(dir, 0)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	key := Key{Source: []byte("x"), Version: "v1"}.Hash()

	if err := s.Put(key, []byte("compiled-bytes")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	entry, ok := s.Get(key)
	if !ok {
		t.Fatal("expected a cache hit after Put")
	}

	if string(entry.Data) != "compiled-bytes" {
		t.Fatalf("unexpected entry data: %q", entry.Data)
	}
}

func Test_Store_Miss(t *testing.T) {
	s, err := NewStore(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if _, ok := s.Get("does-not-exist"); ok {
		t.Fatal("expected a cache miss for an unwritten hash")
	}
}

func Test_Store_EvictsLeastRecentlyUsed(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStore(dir, 10) // tiny budget forces eviction
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := s.Put("a", []byte("12345")); err != nil {
		t.Fatalf("Put a: %v", err)
	}

	if err := s.Put("b", []byte("12345")); err != nil {
		t.Fatalf("Put b: %v", err)
	}

	// Touch "a" so "b" becomes the least-recently-used entry.
	if _, ok := s.Get("a"); !ok {
		t.Fatal("expected a to still be present")
	}

	if err := s.Put("c", []byte("12345")); err != nil {
		t.Fatalf("Put c: %v", err)
	}

	if _, ok := s.Get("b"); ok {
		t.Fatal("expected b to have been evicted as least-recently-used")
	}

	if _, ok := s.Get("a"); !ok {
		t.Fatal("expected a to survive eviction")
	}
}

func Test_NewStore_ReloadsExistingEntries(t *testing.T) {
	dir := t.TempDir()

	s1, err := NewStore(dir, 0)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := s1.Put("persisted", []byte("data")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	s2, err := NewStore(dir, 0)
	if err != nil {
		t.Fatalf("NewStore (reload): %v", err)
	}

	entry, ok := s2.Get("persisted")
	if !ok {
		t.Fatal("expected a fresh Store over the same dir to see the persisted entry")
	}

	if string(entry.Data) != "data" {
		t.Fatalf("unexpected reloaded data: %q", entry.Data)
	}
}
