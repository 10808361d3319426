package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestSigilsFor(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		explicit string
		want     []string
		wantErr  bool
	}{
		{"from file names", []string{"w/A.xml", "B.json"}, "", []string{"A", "B"}, false},
		{"explicit", []string{"one.xml", "two.xml"}, "P1, P2", []string{"P1", "P2"}, false},
		{"count mismatch", []string{"one.xml", "two.xml"}, "P1", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sigilsFor(tt.files, tt.explicit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("sigilsFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{"json", "dot", "svg"} {
		if err := validateFormat(f); err != nil {
			t.Errorf("validateFormat(%q) = %v", f, err)
		}
	}
	if err := validateFormat("pdf"); err == nil {
		t.Error("validateFormat(pdf) should fail")
	}
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut, logs bytes.Buffer
	root := New(&logs, log.InfoLevel).RootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestCollateCommand(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"A.xml": `<text>The <del>black</del> cat</text>`,
		"B.xml": `<text>The black cat</text>`,
	})

	stdout, _, err := execute(t, "collate", filepath.Join(dir, "A.xml"), filepath.Join(dir, "B.xml"))
	if err != nil {
		t.Fatalf("collate: %v", err)
	}
	var out struct {
		Sigils []string `json:"sigils"`
	}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}
	if !slices.Equal(out.Sigils, []string{"A", "B"}) {
		t.Errorf("sigils = %v", out.Sigils)
	}
}

func TestCollateCommandDOTFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.xml": `<text>one two</text>`,
		"b.xml": `<text>one three</text>`,
	})
	outPath := filepath.Join(dir, "out.dot")

	_, stderr, err := execute(t, "collate", "-f", "dot", "-s", "X,Y", "-o", outPath,
		filepath.Join(dir, "a.xml"), filepath.Join(dir, "b.xml"))
	if err != nil {
		t.Fatalf("collate: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph G {") || !strings.Contains(string(data), `X,Y`) {
		t.Errorf("unexpected DOT:\n%s", data)
	}
	if !strings.Contains(stderr, "Collated 2 witnesses") {
		t.Errorf("stderr missing summary: %q", stderr)
	}
}

func TestCollateCommandConfig(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"A.xml":    `<doc><note>skip</note><body>alpha beta</body></doc>`,
		"B.xml":    `<doc><note>skip</note><body>alpha gamma</body></doc>`,
		"cfg.toml": "[output]\nformat = \"dot\"\n[import]\nroot = \"//body\"\n",
	})
	stdout, _, err := execute(t, "collate", "-c", filepath.Join(dir, "cfg.toml"),
		filepath.Join(dir, "A.xml"), filepath.Join(dir, "B.xml"))
	if err != nil {
		t.Fatalf("collate: %v", err)
	}
	if !strings.HasPrefix(stdout, "digraph G {") {
		t.Errorf("config format not applied:\n%s", stdout)
	}
	if strings.Contains(stdout, "skip") {
		t.Error("config root not applied")
	}
}

func TestCollateCommandErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"A.xml": `<text>a</text>`,
		"B.xml": `<text>b</text>`,
	})
	a, b := filepath.Join(dir, "A.xml"), filepath.Join(dir, "B.xml")

	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"collate", "-f", "pdf", a, b}},
		{"missing file", []string{"collate", a, filepath.Join(dir, "missing.xml")}},
		{"duplicate sigil", []string{"collate", "-s", "A,A", a, b}},
		{"sigil count", []string{"collate", "-s", "A", a, b}},
		{"missing config", []string{"collate", "-c", filepath.Join(dir, "none.toml"), a, b}},
		{"bad root", []string{"collate", "--root", "//[", a, b}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWitnessCommand(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"W.xml": `<text>The <subst><del>black</del><add>white</add></subst> cat<lb/></text>`,
	})
	path := filepath.Join(dir, "W.xml")

	stdout, _, err := execute(t, "witness", path)
	if err != nil {
		t.Fatalf("witness: %v", err)
	}
	for _, want := range []string{"W", "tokens", "milestones", "branches", "main line: The cat"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("summary missing %q:\n%s", want, stdout)
		}
	}

	jsonOut, _, err := execute(t, "witness", "--json", "-s", "V", path)
	if err != nil {
		t.Fatalf("witness --json: %v", err)
	}
	jsonPath := filepath.Join(dir, "V.json")
	if err := os.WriteFile(jsonPath, []byte(jsonOut), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err = execute(t, "collate", "-f", "dot", path, jsonPath)
	if err != nil {
		t.Fatalf("collate with JSON witness: %v", err)
	}
	if !strings.Contains(stdout, `W,V`) && !strings.Contains(stdout, `V,W`) {
		t.Errorf("expected nodes shared by W and V:\n%s", stdout)
	}
}
