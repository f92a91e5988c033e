package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rl1809/graphql-bench/internal/core/domain"
	"github.com/rl1809/graphql-bench/internal/port"
)

var _ port.SnapshotRepository = (*JSONAdapter)(nil)

// JSONAdapter keeps one JSON array file per collection in Dir.
// A missing file loads as an empty collection.
type JSONAdapter struct {
	dir string
}

func NewJSONAdapter(dir string) *JSONAdapter {
	return &JSONAdapter{dir: dir}
}

func (a *JSONAdapter) Load(ctx context.Context) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	targets := []struct {
		kind string
		dst  any
	}{
		{domain.KindUser, &snap.Users},
		{domain.KindCategory, &snap.Categories},
		{domain.KindProduct, &snap.Products},
		{domain.KindReview, &snap.Reviews},
		{domain.KindOrder, &snap.Orders},
	}

	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(a.path(t.kind))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", t.kind, err)
		}
		if err := json.Unmarshal(data, t.dst); err != nil {
			return nil, fmt.Errorf("decode %s: %w", a.path(t.kind), err)
		}
	}

	return &snap, nil
}

func (a *JSONAdapter) Save(ctx context.Context, snap *domain.Snapshot) error {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("create seed dir: %w", err)
	}

	sources := []struct {
		kind string
		src  any
	}{
		{domain.KindUser, snap.Users},
		{domain.KindCategory, snap.Categories},
		{domain.KindProduct, snap.Products},
		{domain.KindReview, snap.Reviews},
		{domain.KindOrder, snap.Orders},
	}

	for _, s := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := json.MarshalIndent(s.src, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", s.kind, err)
		}
		if err := writeFileAtomic(a.path(s.kind), data); err != nil {
			return fmt.Errorf("write %s: %w", s.kind, err)
		}
	}
	return nil
}

// path maps a kind to its file, e.g. user -> users.json, category -> categories.json.
func (a *JSONAdapter) path(kind string) string {
	return filepath.Join(a.dir, plural(kind)+".json")
}

func plural(kind string) string {
	if kind == domain.KindCategory {
		return "categories"
	}
	return kind + "s"
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
