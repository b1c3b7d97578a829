package lock

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bianoble/protovend/internal/repourl"
	"github.com/bianoble/protovend/internal/version"
)

var urlComparer = cmp.Comparer(func(a, b repourl.URL) bool {
	return a.String() == b.String()
})

const exampleLockfile = `min_protovend_version: 0.1.8
imports:
  - url: https://github.com/googleapis/googleapis.git
    branch: master
    commit: 9a2c1f0e4b5d6c7a8e9f0a1b2c3d4e5f6a7b8c9d
    proto_dir: "."
    proto_paths:
      - google/api
      - google/datastore/v1beta3
    filename_regex: ^http.*$
    resolve_dependency: false
`

func TestLoadValidLockfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(exampleLockfile), 0644); err != nil {
		t.Fatal(err)
	}

	lf, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := &Lockfile{
		MinVersion: "0.1.8",
		Imports: []Import{{
			URL:           repourl.MustParse("https://github.com/googleapis/googleapis.git"),
			Branch:        "master",
			Commit:        "9a2c1f0e4b5d6c7a8e9f0a1b2c3d4e5f6a7b8c9d",
			ProtoDir:      ".",
			ProtoPaths:    []string{"google/api", "google/datastore/v1beta3"},
			FilenameRegex: "^http.*$",
		}},
	}
	if diff := cmp.Diff(want, lf, urlComparer); diff != "" {
		t.Errorf("lockfile mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("err = %v, want ErrNotInitialized", err)
	}
}

func TestLoadOrEmpty(t *testing.T) {
	lf, err := LoadOrEmpty(filepath.Join(t.TempDir(), FileName), "1.0.0")
	if err != nil {
		t.Fatalf("LoadOrEmpty: %v", err)
	}
	if lf.MinVersion != "1.0.0" || len(lf.Imports) != 0 {
		t.Errorf("lockfile = %+v, want empty", lf)
	}
}

func TestLoadEmptyImports(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("min_protovend_version: 0.1.8\nimports: []\n"), 0644); err != nil {
		t.Fatal(err)
	}

	lf, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if lf.Imports == nil || len(lf.Imports) != 0 {
		t.Errorf("imports = %#v, want empty non-nil", lf.Imports)
	}
}

func TestLoadTooNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("min_protovend_version: 999.0.0\nimports: []\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	var tooOld *version.TooOldError
	if !errors.As(err, &tooOld) {
		t.Fatalf("err = %v, want *version.TooOldError", err)
	}
}

func TestSaveSortedAndStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	lf := &Lockfile{
		MinVersion: "1.0.0",
		Imports: []Import{
			{URL: repourl.MustParse("https://github.com/org/zeta.git"), Branch: "master", Commit: "bbb", ProtoDir: "proto", ProtoPaths: []string{"z"}, FilenameRegex: ".*"},
			{URL: repourl.MustParse("git@github.com:org/alpha.git"), Branch: "master", Commit: "aaa", ProtoDir: "proto", ProtoPaths: []string{"a"}, FilenameRegex: ".*"},
		},
	}
	if err := Save(path, lf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if strings.Index(string(first), "alpha") > strings.Index(string(first), "zeta") {
		t.Errorf("imports not sorted by identity:\n%s", first)
	}
	if lf.Imports[0].Commit != "bbb" {
		t.Error("Save must not reorder the caller's lockfile")
	}

	reversed := &Lockfile{MinVersion: "1.0.0", Imports: []Import{lf.Imports[1], lf.Imports[0]}}
	if err := Save(path, reversed); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("input order changed output:\n%s\n---\n%s", first, second)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file should not exist after save")
	}
}

func TestSaveEmptyWritesEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := Save(path, &Lockfile{MinVersion: "1.0.0"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "imports: []") {
		t.Errorf("expected 'imports: []' in:\n%s", data)
	}
}

func TestValidateDuplicateIdentity(t *testing.T) {
	lf := &Lockfile{
		MinVersion: "1.0.0",
		Imports: []Import{
			{URL: repourl.MustParse("git@github.com:org/repo.git"), Branch: "master", ProtoDir: "proto", ProtoPaths: []string{"a"}},
			{URL: repourl.MustParse("https://github.com/org/repo"), Branch: "master", ProtoDir: "proto", ProtoPaths: []string{"b"}},
		},
	}
	errs := Validate(lf)
	if !containsSubstring(errs, "duplicate repository") {
		t.Errorf("expected duplicate error, got: %v", errs)
	}
}

func TestValidateMissingFields(t *testing.T) {
	lf := &Lockfile{MinVersion: "1.0.0", Imports: []Import{{}}}
	errs := Validate(lf)
	for _, want := range []string{"'url' is required", "'branch' is required", "'proto_dir' is required", "'proto_paths' is required"} {
		if !containsSubstring(errs, want) {
			t.Errorf("expected %q, got: %v", want, errs)
		}
	}
}

func TestValidationErrorFormat(t *testing.T) {
	verr := &ValidationError{Errors: []string{"error one", "error two"}}
	msg := verr.Error()
	if !strings.Contains(msg, "error one") || !strings.Contains(msg, "error two") {
		t.Errorf("error message missing details: %s", msg)
	}
}

func containsSubstring(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}
