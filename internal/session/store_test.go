package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewStore(path, zap.NewNop())

	creds := Credentials{AccessToken: "tok123", Role: "admin", Username: "admin"}
	if err := s.Save(creds); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat session file: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		t.Errorf("expected permissions 0600, got %o", mode)
	}

	// A fresh store reads from disk.
	loaded, err := NewStore(path, zap.NewNop()).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != creds {
		t.Errorf("expected %+v, got %+v", creds, loaded)
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "session.json"), zap.NewNop())

	_, err := s.Load()
	if !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestLoadInvalidToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"access_token":"  ","role":"admin"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewStore(path, zap.NewNop()).Load()
	if !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn for blank token, got %v", err)
	}
}

func TestSaveRejectsEmptyCredentials(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "session.json"), zap.NewNop())

	if err := s.Save(Credentials{Username: "admin"}); err == nil {
		t.Fatal("expected error saving credentials without a token")
	}
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewStore(path, zap.NewNop())

	if err := s.Save(Credentials{AccessToken: "tok123", Username: "admin"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected session file removed, got %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("expected ErrNotLoggedIn after clear, got %v", err)
	}

	// Clearing an already-cleared session is not an error.
	if err := s.Clear(); err != nil {
		t.Errorf("second clear: %v", err)
	}
}

func TestSaveCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "session.json")
	s := NewStore(path, zap.NewNop())

	if err := s.Save(Credentials{AccessToken: "tok123"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected session file created, got %v", err)
	}
}
