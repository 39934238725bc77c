package site

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"launchpad/internal/blob"
	"launchpad/internal/config"
	"launchpad/internal/infra/persistence/postgres"
	"launchpad/internal/infra/persistence/postgres/testutil"
	"launchpad/pkg/domain"
)

func originalDoc() *domain.Site {
	return &domain.Site{
		Version:     "3.1.0",
		GroupsOrder: []string{"home", "finance"},
		Groups: map[string]domain.Group{
			"home":    {ID: "home", Title: "Home", Default: true},
			"finance": {ID: "finance", Title: "Finance", Preset: true, Payload: domain.GroupPayload{Tiles: []domain.Tile{{ID: "t1", AppID: "ledger"}}}},
		},
	}
}

func TestStoreClonesOriginalWhenNoWorkingCopy(t *testing.T) {
	ctx := context.Background()
	backend := NewBlobBackend(blob.NewMemory(), "tenant")
	if err := Seed(ctx, backend, originalDoc(), false); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := NewStore(backend)
	doc, err := store.GetSite(ctx)
	if err != nil {
		t.Fatalf("get site: %v", err)
	}
	again, _ := store.GetSite(ctx)
	if doc != again {
		t.Fatal("GetSite must return the live document")
	}
	if doc.Groups["finance"].Title != "Finance" || doc.Applications == nil {
		t.Fatalf("unexpected document %+v", doc)
	}

	g := doc.Groups["finance"]
	g.Title = "Money"
	doc.Groups["finance"] = g
	if err := store.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}

	original, err := store.GroupFromOriginalSite(ctx, "finance")
	if err != nil {
		t.Fatalf("original group: %v", err)
	}
	if original.Title != "Finance" {
		t.Fatalf("original mutated: %q", original.Title)
	}

	reopened := NewStore(backend)
	persisted, err := reopened.GetSite(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if persisted.Groups["finance"].Title != "Money" {
		t.Fatalf("working copy not persisted: %q", persisted.Groups["finance"].Title)
	}
}

func TestStoreEmptyBackend(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewBlobBackend(blob.NewMemory(), ""))
	if err := store.Save(ctx); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("save before load = %v", err)
	}
	doc, err := store.GetSite(ctx)
	if err != nil {
		t.Fatalf("get site: %v", err)
	}
	if doc.Version != DefaultMaxVersion || doc.Groups == nil {
		t.Fatalf("unexpected empty document %+v", doc)
	}
	if _, err := store.GroupFromOriginalSite(ctx, "x"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("missing original = %v", err)
	}
}

func TestGroupFromOriginalSiteUnknownGroup(t *testing.T) {
	ctx := context.Background()
	backend := NewBlobBackend(blob.NewMemory(), "")
	if err := Seed(ctx, backend, originalDoc(), true); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := NewStore(backend).GroupFromOriginalSite(ctx, "nope"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestCheckVersion(t *testing.T) {
	cases := []struct {
		version, max string
		wantErr      bool
	}{
		{"", "3.1.0", false},
		{"3.1.0", "3.1.0", false},
		{"1.0.0", "3.1.0", false},
		{"3.2.0", "3.1.0", true},
		{"4.0.0", "", true},
		{"banana", "3.1.0", true},
	}
	for _, tc := range cases {
		err := CheckVersion(tc.version, tc.max)
		if (err != nil) != tc.wantErr {
			t.Errorf("CheckVersion(%q, %q) = %v", tc.version, tc.max, err)
		}
		if tc.wantErr && !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("CheckVersion(%q) error %v does not wrap ErrUnsupportedVersion", tc.version, err)
		}
	}
}

func TestLoadSeedFormats(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "site.yaml")
	yamlDoc := `_version: "3.1.0"
groupsOrder: [home]
groups:
  home:
    id: home
    title: Home
    default: true
    payload:
      tiles:
        - id: t1
          appId: ledger
          indicatorDataSource:
            path: /count
            refresh: 30s
applications:
  ledger:
    id: ledger
    title: Ledger
`
	if err := os.WriteFile(yamlPath, []byte(yamlDoc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := LoadSeed(yamlPath)
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	tile := doc.Groups["home"].Payload.Tiles[0]
	if tile.AppID != "ledger" || tile.IndicatorDataSource.RefreshInterval.Seconds() != 30 {
		t.Fatalf("unexpected tile %+v", tile)
	}
	if doc.Catalogs == nil {
		t.Fatal("maps not normalized")
	}

	jsonPath := filepath.Join(dir, "site.json")
	if err := os.WriteFile(jsonPath, []byte(`{"_version":"3.1.0","groups":{"g":{"id":"g","title":"G"}}}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err = LoadSeed(jsonPath)
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	if doc.Groups["g"].Title != "G" {
		t.Fatalf("unexpected doc %+v", doc)
	}

	if _, err := LoadSeed(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected read error")
	}
}

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cases := []config.StorageConfig{
		{Driver: config.DriverMemory, Prefix: "p"},
		{Driver: config.DriverSQLite, SQLitePath: filepath.Join(dir, "db", "launchpad.db")},
		{Driver: config.DriverFilesystem, FSRoot: filepath.Join(dir, "fs"), Prefix: "p"},
	}
	for _, cfg := range cases {
		t.Run(cfg.Driver, func(t *testing.T) {
			backend, err := Open(ctx, cfg)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer func() { _ = backend.Close() }()
			if err := Seed(ctx, backend, originalDoc(), false); err != nil {
				t.Fatalf("seed: %v", err)
			}
			doc, err := NewStore(backend).GetSite(ctx)
			if err != nil {
				t.Fatalf("get site: %v", err)
			}
			if len(doc.Groups) != 2 {
				t.Fatalf("groups = %d", len(doc.Groups))
			}
		})
	}
	if _, err := Open(ctx, config.StorageConfig{Driver: "tape"}); err == nil {
		t.Fatal("expected unknown driver error")
	}
}

func TestOpenPostgresDriver(t *testing.T) {
	ctx := context.Background()
	db, _ := testutil.NewStubDB()
	restore := postgres.OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	backend, err := Open(ctx, config.StorageConfig{Driver: config.DriverPostgres, PostgresDSN: "stub"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Seed(ctx, backend, originalDoc(), false); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := NewStore(backend)
	doc, err := store.GetSite(ctx)
	if err != nil {
		t.Fatalf("get site: %v", err)
	}
	delete(doc.Groups, "home")
	if err := store.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.GroupFromOriginalSite(ctx, "home"); err != nil {
		t.Fatalf("original lost group: %v", err)
	}
}

func TestBlobBackendOverS3(t *testing.T) {
	ctx := context.Background()
	backend := NewBlobBackend(blob.NewMockS3(), "tenant-a")
	if _, found, err := backend.LoadDocument(ctx, DocumentSite); err != nil || found {
		t.Fatalf("empty load = %v, %v", found, err)
	}
	if err := Seed(ctx, backend, originalDoc(), true); err != nil {
		t.Fatalf("seed: %v", err)
	}
	payload, found, err := backend.LoadDocument(ctx, DocumentSite)
	if err != nil || !found || len(payload) == 0 {
		t.Fatalf("load = %d bytes, %v, %v", len(payload), found, err)
	}
}
