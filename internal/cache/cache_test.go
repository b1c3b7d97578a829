package cache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bianoble/protovend/internal/repourl"
)

func TestDirSharedAcrossProtocols(t *testing.T) {
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ssh := c.Dir(repourl.MustParse("git@github.com:Org/Repo.git"))
	https := c.Dir(repourl.MustParse("https://github.com/org/repo"))
	if ssh != https {
		t.Errorf("Dir differs: %s vs %s", ssh, https)
	}

	other := c.Dir(repourl.MustParse("https://gitlab.com/org/repo"))
	if other == ssh {
		t.Error("different hosts must not share a cache entry")
	}
	if filepath.Dir(ssh) != c.Path() {
		t.Errorf("entry %s not directly under %s", ssh, c.Path())
	}
}

func TestHasAndRemove(t *testing.T) {
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	url := repourl.MustParse("https://github.com/org/repo.git")

	if c.Has(url) {
		t.Fatal("expected empty cache")
	}
	if err := os.MkdirAll(filepath.Join(c.Dir(url), ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	if !c.Has(url) {
		t.Fatal("expected entry after creating .git")
	}
	if err := c.Remove(url); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if c.Has(url) {
		t.Error("entry still present after Remove")
	}
}

func TestCleanAndSize(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "repos")
	c, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	entry := c.Dir(repourl.MustParse("https://github.com/org/repo.git"))
	if err := os.MkdirAll(entry, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(entry, "a.proto"), []byte("12345"), 0644); err != nil {
		t.Fatal(err)
	}

	size, err := c.Size()
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != 5 {
		t.Errorf("size = %d, want 5", size)
	}

	if err := c.Clean(); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("cache directory should be gone after Clean")
	}
	if err := c.Clean(); err != nil {
		t.Errorf("second Clean: %v", err)
	}
	if size, err := c.Size(); err != nil || size != 0 {
		t.Errorf("Size after Clean = %d, %v", size, err)
	}
}

func TestLockSerializesSameRepository(t *testing.T) {
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ssh := repourl.MustParse("git@github.com:org/repo.git")
	https := repourl.MustParse("https://github.com/org/repo.git")

	var (
		mu      sync.Mutex
		active  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		url := ssh
		if i%2 == 0 {
			url = https
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := c.Lock(url)
			defer unlock()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxSeen)
	}
}

func TestDefaultDir(t *testing.T) {
	if filepath.Base(DefaultDir()) != "repos" {
		t.Errorf("DefaultDir = %s", DefaultDir())
	}
}
