package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/starford/laguz/internal/operator"
)

func testStore(t *testing.T) *Memory {
	t.Helper()
	return New(&operator.MemoryConfig{Name: t.Name()})
}

func TestWriteAndRead(t *testing.T) {
	m := testStore(t)
	ctx := context.Background()
	if err := m.Write(ctx, "k.txt", []byte("value")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := m.Read(ctx, "k.txt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("content = %q", got)
	}
}

func TestSameNameSharesStore(t *testing.T) {
	// Two operators with the same configured name see each other's
	// writes; that is what makes write-then-read work across calls.
	a := New(&operator.MemoryConfig{Name: t.Name()})
	b := New(&operator.MemoryConfig{Name: t.Name()})
	ctx := context.Background()

	if err := a.Write(ctx, "shared.txt", []byte("from a")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := b.Read(ctx, "shared.txt")
	if err != nil {
		t.Fatalf("Read via second operator: %v", err)
	}
	if string(got) != "from a" {
		t.Errorf("content = %q", got)
	}
}

func TestDistinctNamesIsolated(t *testing.T) {
	a := New(&operator.MemoryConfig{Name: t.Name() + "-a"})
	b := New(&operator.MemoryConfig{Name: t.Name() + "-b"})
	ctx := context.Background()

	_ = a.Write(ctx, "only-a.txt", []byte("x"))
	if _, err := b.Read(ctx, "only-a.txt"); !errors.Is(err, operator.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestReadReturnsCopy(t *testing.T) {
	m := testStore(t)
	ctx := context.Background()
	_ = m.Write(ctx, "c.txt", []byte("abc"))
	got, _ := m.Read(ctx, "c.txt")
	got[0] = 'X'
	again, _ := m.Read(ctx, "c.txt")
	if string(again) != "abc" {
		t.Errorf("stored content mutated: %q", again)
	}
}

func TestStatAndDelete(t *testing.T) {
	m := testStore(t)
	ctx := context.Background()
	_ = m.Write(ctx, "s.txt", []byte("12345"))

	md, err := m.Stat(ctx, "s.txt")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if md.Size != 5 || md.IsDir {
		t.Errorf("metadata = %+v", md)
	}

	if err := m.Delete(ctx, "s.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := m.Delete(ctx, "s.txt"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
	if _, err := m.Stat(ctx, "s.txt"); !errors.Is(err, operator.ErrNotFound) {
		t.Errorf("Stat after delete: %v", err)
	}
}

func TestList(t *testing.T) {
	m := testStore(t)
	ctx := context.Background()
	_ = m.Write(ctx, "dir/a.txt", []byte("a"))
	_ = m.Write(ctx, "dir/b.txt", []byte("b"))
	_ = m.Write(ctx, "dir/nested/c.txt", []byte("c"))
	_ = m.Write(ctx, "other.txt", []byte("o"))

	entries, err := m.List(ctx, "dir")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// a.txt, b.txt, and the synthetic "nested" directory.
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3: %+v", len(entries), entries)
	}
	for _, e := range entries {
		if e.Meta.IsDir != (e.Name == "nested") {
			t.Errorf("entry %q: IsDir = %v", e.Name, e.Meta.IsDir)
		}
	}
}

func TestStatImplicitDirectory(t *testing.T) {
	// A nested key makes its parent show up in listings, so stat on the
	// parent reports a directory too.
	m := testStore(t)
	ctx := context.Background()
	_ = m.Write(ctx, "dir/a.txt", []byte("x"))

	md, err := m.Stat(ctx, "dir")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !md.IsDir {
		t.Error("IsDir = false for implicit directory")
	}
	if _, err := m.Stat(ctx, "di"); !errors.Is(err, operator.ErrNotFound) {
		t.Errorf("Stat on prefix of a key: %v, want ErrNotFound", err)
	}
}

func TestCreateDir(t *testing.T) {
	m := testStore(t)
	ctx := context.Background()
	if err := m.CreateDir(ctx, "d"); err != nil {
		t.Fatalf("CreateDir: %v", err)
	}
	if err := m.CreateDir(ctx, "d"); err != nil {
		t.Errorf("second CreateDir: %v", err)
	}
	md, err := m.Stat(ctx, "d")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !md.IsDir {
		t.Error("IsDir = false")
	}

	// A file in the way is a conflict.
	_ = m.Write(ctx, "f.txt", []byte("x"))
	if err := m.CreateDir(ctx, "f.txt"); !errors.Is(err, operator.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestCopyAndRename(t *testing.T) {
	m := testStore(t)
	ctx := context.Background()
	_ = m.Write(ctx, "src.txt", []byte("data"))

	if err := m.Copy(ctx, "src.txt", "copy.txt"); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if got, _ := m.Read(ctx, "copy.txt"); string(got) != "data" {
		t.Errorf("copy content = %q", got)
	}

	if err := m.Rename(ctx, "src.txt", "moved.txt"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if _, err := m.Read(ctx, "src.txt"); !errors.Is(err, operator.ErrNotFound) {
		t.Error("source still present after rename")
	}
	if got, _ := m.Read(ctx, "moved.txt"); string(got) != "data" {
		t.Errorf("moved content = %q", got)
	}

	if err := m.Rename(ctx, "ghost.txt", "x.txt"); !errors.Is(err, operator.ErrNotFound) {
		t.Errorf("rename missing: %v", err)
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := testStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("w%d.txt", i)
			if err := m.Write(ctx, path, []byte(path)); err != nil {
				t.Errorf("Write %s: %v", path, err)
				return
			}
			got, err := m.Read(ctx, path)
			if err != nil {
				t.Errorf("Read %s: %v", path, err)
				return
			}
			if string(got) != path {
				t.Errorf("content = %q, want %q", got, path)
			}
		}(i)
	}
	wg.Wait()
}
