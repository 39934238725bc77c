package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPredicates(t *testing.T) {
	cases := []struct {
		name string
		pred ImportPredicate
		in   string
		want bool
	}{
		{"domain", DomainImportForbidden, "launchpad/pkg/domain", true},
		{"domain versioned", DomainImportForbidden, "example.com/mod/pkg/domain@v1.2.3", true},
		{"domain subpackage", DomainImportForbidden, "launchpad/pkg/domain/extra", false},
		{"domain lookalike", DomainImportForbidden, "launchpad/pkg/domainutil", false},
		{"internal", InternalImportForbidden, "launchpad/internal/cache", true},
		{"internal bare", InternalImportForbidden, "internal", false},
		{"internal pkg", InternalImportForbidden, "launchpad/pkg/domain", false},
		{"infra backend", InfraImportForbidden, "launchpad/internal/infra/blob/s3", true},
		{"infra root", InfraImportForbidden, "launchpad/internal/infra", true},
		{"blob facade", InfraImportForbidden, "launchpad/internal/blob", false},
		{"adapter", AdapterImportForbidden, "launchpad/internal/adapters/api", true},
		{"not adapter", AdapterImportForbidden, "launchpad/internal/launchpad", false},
		{"empty", Any(DomainImportForbidden, InternalImportForbidden), "", false},
		{"any matches", Any(DomainImportForbidden, AdapterImportForbidden), "launchpad/internal/adapters/api", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.pred(tc.in); got != tc.want {
				t.Fatalf("predicate(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func writeFile(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDirectViolations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.go", "package tmp\nimport (\n\t\"fmt\"\n\talias \"context\"\n)\nvar _ = fmt.Sprint\nvar _ alias.Context\n")
	writeFile(t, dir, "bad.go", "package tmp\nimport \"launchpad/internal/infra/blob/fs\"\nvar _ = fs.New\n")
	writeFile(t, dir, "bad_test.go", "package tmp\nimport \"launchpad/internal/adapters/api\"\n")
	writeFile(t, dir, "notes.txt", "import \"launchpad/internal/infra\"")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o750); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "sub"), "sub.go", "package sub\nimport \"launchpad/internal/adapters/api\"\n")

	viols, err := directViolations(dir, Any(InfraImportForbidden, AdapterImportForbidden))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 || viols[0] != "launchpad/internal/infra/blob/fs (in bad.go)" {
		t.Fatalf("violations = %v", viols)
	}

	AssertNoDirectImports(t, dir, AdapterImportForbidden, "test files and subdirectories are skipped")
}

func TestDirectViolationsReportsParseErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.go", "package\n")
	if _, err := directViolations(dir, InfraImportForbidden); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := directViolations(filepath.Join(dir, "missing"), InfraImportForbidden); err == nil {
		t.Fatal("expected read error")
	}
}

type recorder struct{ msg string }

func (r *recorder) Fatalf(format string, args ...any) { r.msg = fmt.Sprintf(format, args...) }

func TestReport(t *testing.T) {
	var r recorder
	report(&r, "direct import", "none", nil)
	if r.msg != "" {
		t.Fatalf("unexpected failure: %s", r.msg)
	}
	report(&r, "direct import", "domain stays pure", []string{"a", "b"})
	if !strings.Contains(r.msg, "domain stays pure") || !strings.HasSuffix(r.msg, "a\nb") {
		t.Fatalf("message = %q", r.msg)
	}
}

func TestTransitiveViolations(t *testing.T) {
	orig := goListDeps
	t.Cleanup(func() { goListDeps = orig })

	goListDeps = func(string) ([]byte, error) {
		return []byte("fmt\nlaunchpad/internal/cache\n\nlaunchpad/internal/infra/blob/s3\n"), nil
	}
	viols, _, err := transitiveViolations("./...", InfraImportForbidden)
	if err != nil || len(viols) != 1 || viols[0] != "launchpad/internal/infra/blob/s3" {
		t.Fatalf("violations = %v, %v", viols, err)
	}
	AssertNoTransitiveDependency(t, "./...", AdapterImportForbidden, "no adapters listed")

	goListDeps = func(string) ([]byte, error) { return []byte("boom"), errors.New("exit 1") }
	if _, out, err := transitiveViolations(".", InfraImportForbidden); err == nil || string(out) != "boom" {
		t.Fatalf("expected go list failure, got %v %q", err, out)
	}
}
