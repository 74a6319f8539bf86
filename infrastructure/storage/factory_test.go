package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/pitchroom/domain/config"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/storetest"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     func(dir string) config.StorageConfig
		wantErr bool
	}{
		{
			name: "memory",
			cfg:  func(string) config.StorageConfig { return config.StorageConfig{Backend: "memory"} },
		},
		{
			name: "filesystem",
			cfg: func(dir string) config.StorageConfig {
				return config.StorageConfig{Backend: "filesystem", Filesystem: config.FilesystemConfig{Dir: dir}}
			},
		},
		{
			name: "sqlite",
			cfg: func(dir string) config.StorageConfig {
				return config.StorageConfig{Backend: "sqlite", SQLite: config.SQLiteConfig{Path: filepath.Join(dir, "r.db")}}
			},
		},
		{
			name: "badger in memory",
			cfg: func(string) config.StorageConfig {
				return config.StorageConfig{Backend: "badger", Badger: config.BadgerConfig{InMemory: true}}
			},
		},
		{
			name:    "s3 without bucket",
			cfg:     func(string) config.StorageConfig { return config.StorageConfig{Backend: "s3"} },
			wantErr: true,
		},
		{
			name:    "azblob without account",
			cfg:     func(string) config.StorageConfig { return config.StorageConfig{Backend: "azblob"} },
			wantErr: true,
		},
		{
			name:    "unknown",
			cfg:     func(string) config.StorageConfig { return config.StorageConfig{Backend: "floppy"} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store, closeFn, err := Open(ctx, tt.cfg(t.TempDir()))
			if closeFn == nil {
				t.Fatal("CloseFunc must never be nil")
			}
			defer closeFn()

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}

			r := storetest.NewReport("r-1", "s-1", storetest.Base, true)
			if err := store.Save(ctx, r); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if _, err := store.Get(ctx, "r-1"); err != nil {
				t.Errorf("Get() error = %v", err)
			}
		})
	}
}

func TestOpen_UnknownBackendIsConfigError(t *testing.T) {
	t.Parallel()

	_, _, err := Open(context.Background(), config.StorageConfig{Backend: "tape"})
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}
