package ingest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-adapter/constants"
	"github.com/joseph-ayodele/material-adapter/internal/common"
	"github.com/joseph-ayodele/material-adapter/internal/repository"
	"github.com/joseph-ayodele/material-adapter/internal/storage"
)

type testEnv struct {
	u       *Usecase
	stores  *repository.Stores
	store   *storage.LocalStore
	classID uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stores, err := repository.InitStores(ctx, common.DatabaseConfig{InMemory: true}, false, logger)
	if err != nil {
		t.Fatalf("InitStores: %v", err)
	}
	t.Cleanup(func() { stores.Close(logger) })
	store, err := storage.NewLocalStore(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	class, err := stores.Classes.GetOrCreateByName(ctx, "Turma C", nil)
	if err != nil {
		t.Fatalf("GetOrCreateByName: %v", err)
	}
	return &testEnv{
		u:       NewUsecase(stores.Classes, stores.Materials, store, logger),
		stores:  stores,
		store:   store,
		classID: class.ID,
	}
}

func TestRegisterStoresBinaryAndRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	data := []byte("%PDF-1.4 fake")

	res, err := env.u.Register(ctx, env.classID, "Aula 1.PDF", data)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	sum := sha256.Sum256(data)
	if res.HashHex != hex.EncodeToString(sum[:]) {
		t.Fatalf("hash: want=%x got=%s", sum, res.HashHex)
	}
	if res.Format != constants.PDF || res.Size != int64(len(data)) {
		t.Fatalf("result: got=%+v", res)
	}
	prefix := "materials/" + env.classID.String() + "/"
	if !strings.HasPrefix(res.FileKey, prefix) || !strings.HasSuffix(res.FileKey, "-Aula 1.PDF") {
		t.Fatalf("key: got=%s", res.FileKey)
	}

	m, err := env.stores.Materials.GetByID(ctx, res.MaterialID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if m.FileKey != res.FileKey || !bytes.Equal(m.ContentHash, sum[:]) {
		t.Fatalf("row: got=%+v", m)
	}
	stored, err := env.store.Read(ctx, res.FileKey)
	if err != nil || !bytes.Equal(stored, data) {
		t.Fatalf("Read: want=%q got=%q err=%v", data, stored, err)
	}
}

func TestRegisterRejects(t *testing.T) {
	env := newTestEnv(t)
	env.u.MaxSize = 8
	ctx := context.Background()

	cases := []struct {
		name    string
		class   uuid.UUID
		file    string
		data    []byte
		wantErr error
	}{
		{"unsupported extension", env.classID, "notes.txt", []byte("x"), common.ErrUnsupportedFormat},
		{"no extension", env.classID, "notes", []byte("x"), common.ErrUnsupportedFormat},
		{"empty", env.classID, "a.pdf", nil, common.ErrInvalidInput},
		{"too large", env.classID, "a.docx", bytes.Repeat([]byte("x"), 9), common.ErrInvalidInput},
		{"unknown class", uuid.New(), "a.pdf", []byte("x"), common.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.u.Register(ctx, tc.class, tc.file, tc.data)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Register: want=%v got=%v", tc.wantErr, err)
			}
		})
	}
}

func TestRegisterDirectory(t *testing.T) {
	env := newTestEnv(t)
	root := t.TempDir()
	write := func(rel string, data string) {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	write("a.pdf", "pdf bytes")
	write("sub/b.docx", "docx bytes")
	write("c.txt", "ignored")
	write(".hidden/d.pdf", "hidden")
	write("empty.pdf", "")

	results, stats, err := env.u.RegisterDirectory(context.Background(), env.classID, root, true)
	if err != nil {
		t.Fatalf("RegisterDirectory: %v", err)
	}
	if stats.Matched != 3 || stats.Succeeded != 2 || stats.Failed != 1 {
		t.Fatalf("stats: got=%+v", stats)
	}
	if len(results) != 3 {
		t.Fatalf("results: want=3 got=%d", len(results))
	}
}
