package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"launchpad/pkg/domain"
)

const seedJSON = `{
  "_version": "3.1.0",
  "groupsOrder": ["home", "team"],
  "groups": {
    "home": {"id": "home", "title": "Home", "default": true, "preset": true,
             "payload": {"tiles": [{"id": "t-orders", "appId": "orders"}], "links": []}},
    "team": {"id": "team", "title": "Team", "payload": {"tiles": [], "links": []}}
  },
  "applications": {
    "orders": {"id": "orders", "title": "Orders",
               "inbounds": {"display": {"semanticObject": "SalesOrder", "action": "display"}}}
  },
  "catalogs": {"sales": {"id": "sales", "title": "Sales", "payload": {"appIds": ["orders"]}}}
}`

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	seed := filepath.Join(dir, "seed.json")
	if err := os.WriteFile(seed, []byte(seedJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LAUNCHPAD_CONFIG", "")
	t.Setenv("LAUNCHPAD_STORAGE_DRIVER", "sqlite")
	t.Setenv("LAUNCHPAD_STORAGE_SQLITE_PATH", filepath.Join(dir, "launchpad.db"))
	t.Setenv("LAUNCHPAD_LOG_LEVEL", "warn")
	return seed
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := cli(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCLIWorkflow(t *testing.T) {
	seed := setupEnv(t)

	code, out, errOut := runCLI(t, "seed", "-file", seed, "-reset")
	if code != 0 {
		t.Fatalf("seed exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "seeded 2 groups") {
		t.Fatalf("seed output = %q", out)
	}

	code, out, errOut = runCLI(t, "add-group", "-title", "Finance")
	if code != 0 {
		t.Fatalf("add-group exit %d: %s", code, errOut)
	}

	code, out, errOut = runCLI(t, "groups")
	if code != 0 {
		t.Fatalf("groups exit %d: %s", code, errOut)
	}
	var groups []domain.Group
	if err := json.Unmarshal([]byte(out), &groups); err != nil {
		t.Fatalf("decode groups: %v", err)
	}
	if len(groups) != 3 || groups[2].Title != "Finance" {
		t.Fatalf("groups = %+v", groups)
	}

	const url = "#SalesOrder-display?id=1"
	if code, _, errOut = runCLI(t, "add-bookmark", "-url", url, "-title", "Order 1", "-group", "team"); code != 0 {
		t.Fatalf("add-bookmark exit %d: %s", code, errOut)
	}
	if code, out, _ = runCLI(t, "count-bookmarks", "-url", url); code != 0 || strings.TrimSpace(out) != "1" {
		t.Fatalf("count = %q (exit %d)", out, code)
	}
	if code, out, _ = runCLI(t, "delete-bookmarks", "-url", url); code != 0 || strings.TrimSpace(out) != "1" {
		t.Fatalf("delete = %q (exit %d)", out, code)
	}
	if code, out, _ = runCLI(t, "catalogs"); code != 0 || !strings.Contains(out, `"sales"`) {
		t.Fatalf("catalogs = %q (exit %d)", out, code)
	}
}

func TestCLISeedsFromConfiguredFile(t *testing.T) {
	seed := setupEnv(t)
	t.Setenv("LAUNCHPAD_SITE_SEED_FILE", seed)

	code, out, errOut := runCLI(t, "groups")
	if code != 0 {
		t.Fatalf("groups exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, `"title": "Home"`) {
		t.Fatalf("groups output = %s", out)
	}
}

func TestCLIUsageErrors(t *testing.T) {
	setupEnv(t)
	cases := []struct {
		name string
		args []string
		code int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"explode"}, 2},
		{"bad flag", []string{"groups", "-nope"}, 2},
		{"seed without file", []string{"seed"}, 2},
		{"invalid title", []string{"add-group", "-title", ""}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if code, _, _ := runCLI(t, tc.args...); code != tc.code {
				t.Fatalf("exit = %d, want %d", code, tc.code)
			}
		})
	}
}
