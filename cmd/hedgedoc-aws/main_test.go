package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
	"github.com/lex00/hedgedoc-aws-go/internal/config"
	"github.com/lex00/hedgedoc-aws-go/internal/differ"
	"github.com/lex00/hedgedoc-aws-go/internal/schema"
	"github.com/lex00/hedgedoc-aws-go/internal/state"
)

const testStackFile = `name: notes
region: eu-west-1
database:
  name: hedgedoc
  username: hedgedoc
  password_secret_id: hedgedoc/db
app:
  session_secret: session-pass
`

func testOptions(t *testing.T, stackFile string) *globalOptions {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "hedgedoc.yaml")
	if err := os.WriteFile(path, []byte(stackFile), 0o600); err != nil {
		t.Fatal(err)
	}
	return &globalOptions{
		configFile: path,
		envFiles:   []string{filepath.Join(dir, ".env")},
	}
}

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{"preview", "up", "destroy", "outputs", "list", "graph", "validate", "optimize", "diff", "watch", "version"} {
		if _, _, err := cmd.Find([]string{name}); err != nil {
			t.Errorf("missing %s command: %v", name, err)
		}
	}
	for _, flag := range []string{"config", "env-file", "verbose"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing --%s flag", flag)
		}
	}
	if got := cmd.PersistentFlags().Lookup("config").DefValue; got != config.DefaultFile {
		t.Errorf("config default = %q, want %q", got, config.DefaultFile)
	}
}

func TestNewDiffCmd(t *testing.T) {
	cmd := newDiffCmd(&globalOptions{})

	if cmd.Use != "diff [plan1] [plan2]" {
		t.Errorf("Use = %q, want 'diff [plan1] [plan2]'", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}
	if cmd.Flags().Lookup("format") == nil {
		t.Error("missing --format flag")
	}
	if cmd.Flags().Lookup("ignore-order") == nil {
		t.Error("missing --ignore-order flag")
	}
}

func TestNewWatchCmd(t *testing.T) {
	cmd := newWatchCmd(&globalOptions{})

	if cmd.Use != "watch" {
		t.Errorf("Use = %q, want 'watch'", cmd.Use)
	}
	flag := cmd.Flags().Lookup("debounce")
	if flag == nil {
		t.Fatal("missing --debounce flag")
	}
	if flag.DefValue != "500ms" {
		t.Errorf("debounce default = %q, want '500ms'", flag.DefValue)
	}
}

func TestLoadOffline_PlaceholderSecrets(t *testing.T) {
	g := testOptions(t, testStackFile)

	cfg, err := g.loadOffline()
	if err != nil {
		t.Fatalf("loadOffline() error = %v", err)
	}
	if cfg.Database.Password != placeholderSecret {
		t.Errorf("password = %q, want placeholder", cfg.Database.Password)
	}
	if cfg.App.SessionSecret != "session-pass" {
		t.Errorf("session secret = %q, want the configured value", cfg.App.SessionSecret)
	}
	if cfg.Region != "eu-west-1" {
		t.Errorf("region = %q, want eu-west-1", cfg.Region)
	}
}

func TestLoadOffline_Invalid(t *testing.T) {
	g := testOptions(t, "name: notes\n")

	_, err := g.loadOffline()
	if !errors.Is(err, config.ErrMissingValue) {
		t.Errorf("loadOffline() error = %v, want ErrMissingValue", err)
	}
}

func TestRunPreview_WritesPlan(t *testing.T) {
	g := testOptions(t, testStackFile)
	out := filepath.Join(t.TempDir(), "plans", "plan.yaml")

	if err := runPreview(context.Background(), g, "yaml", out); err != nil {
		t.Fatalf("runPreview() error = %v", err)
	}

	plan, err := differ.LoadTemplate(out)
	if err != nil {
		t.Fatalf("LoadTemplate() error = %v", err)
	}
	vpc, ok := plan.Resources["NotesVpc"]
	if !ok {
		t.Fatal("plan has no NotesVpc")
	}
	if vpc.Type != "AWS::EC2::VPC" {
		t.Errorf("NotesVpc type = %q", vpc.Type)
	}
	subnet, ok := plan.Resources["NotesSubnetEuWest1a"]
	if !ok {
		t.Fatal("plan has no subnet in eu-west-1a")
	}
	if subnet.Properties["AvailabilityZone"] != "eu-west-1a" {
		t.Errorf("subnet zone = %v", subnet.Properties["AvailabilityZone"])
	}
	if _, ok := plan.Outputs["Hostname"]; !ok {
		t.Error("plan has no Hostname output")
	}
}

func TestRunPreview_UnknownFormat(t *testing.T) {
	g := testOptions(t, testStackFile)
	if err := runPreview(context.Background(), g, "xml", ""); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRunDiff_SamePlanFiles(t *testing.T) {
	g := testOptions(t, testStackFile)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.yaml")
	if err := runPreview(context.Background(), g, "json", a); err != nil {
		t.Fatal(err)
	}
	if err := runPreview(context.Background(), g, "yaml", b); err != nil {
		t.Fatal(err)
	}

	result, err := differ.CompareFiles(a, b, differ.Options{})
	if err != nil {
		t.Fatalf("CompareFiles() error = %v", err)
	}
	if !result.Empty() {
		t.Errorf("plans of one config differ: %+v", result.Diff)
	}
	if err := runDiff(context.Background(), g, []string{a}, "text", false); err != nil {
		t.Errorf("runDiff() error = %v", err)
	}
}

func TestRunDiff_NoState(t *testing.T) {
	g := testOptions(t, testStackFile+"state:\n  path: "+filepath.Join(t.TempDir(), "missing.json")+"\n")
	if err := runDiff(context.Background(), g, nil, "text", false); err == nil {
		t.Error("expected error without state")
	}
}

func TestCompareExisting(t *testing.T) {
	g := testOptions(t, testStackFile)
	cfg, err := g.loadOffline()
	if err != nil {
		t.Fatal(err)
	}
	plan, _, err := buildPlan(context.Background(), cfg, g.logger(0))
	if err != nil {
		t.Fatalf("buildPlan() error = %v", err)
	}

	same := &state.Snapshot{Stack: "notes", Plan: plan}
	if err := compareExisting(same, plan); err != nil {
		t.Errorf("compareExisting(same) = %v, want nil", err)
	}

	changed := *plan
	changed.Resources = map[string]hedgedoc.ResourceDef{}
	for id, def := range plan.Resources {
		changed.Resources[id] = def
	}
	delete(changed.Resources, "NotesBucket")
	if err := compareExisting(&state.Snapshot{Stack: "notes", Plan: &changed}, plan); !errors.Is(err, errStackExists) {
		t.Errorf("compareExisting(changed) = %v, want errStackExists", err)
	}

	if err := compareExisting(&state.Snapshot{Stack: "notes"}, plan); !errors.Is(err, errStackExists) {
		t.Errorf("compareExisting(no plan) = %v, want errStackExists", err)
	}
}

func TestCompareExisting_SelfSignedCertificate(t *testing.T) {
	g := testOptions(t, testStackFile+`frontend: tls
tls:
  certificate: self-signed
  domain: notes.example.com
`)
	cfg, err := g.loadOffline()
	if err != nil {
		t.Fatal(err)
	}
	deployed, _, err := buildPlan(context.Background(), cfg, g.logger(0))
	if err != nil {
		t.Fatalf("buildPlan() error = %v", err)
	}
	current, _, err := buildPlan(context.Background(), cfg, g.logger(0))
	if err != nil {
		t.Fatalf("buildPlan() error = %v", err)
	}

	if err := compareExisting(&state.Snapshot{Stack: "notes", Plan: deployed}, current); err != nil {
		t.Errorf("compareExisting() = %v, want nil for a regenerated certificate", err)
	}
}

func TestOpenStore_File(t *testing.T) {
	cfg := config.Default()
	cfg.State.Path = "state.json"

	store, err := openStore(context.Background(), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	fs, ok := store.(*state.FileStore)
	if !ok {
		t.Fatalf("store = %T, want *state.FileStore", store)
	}
	if fs.Path != "state.json" {
		t.Errorf("path = %q", fs.Path)
	}
}

func TestListResources(t *testing.T) {
	snap := &state.Snapshot{
		Components: []state.Component{{URN: "urn:c", Name: "notes"}},
		Resources: []state.Resource{
			{Name: "notes-vpc", Type: "AWS::EC2::VPC", ID: "vpc-1", Parent: "urn:c"},
			{Name: "notes-bucket", Type: "AWS::S3::Bucket", ID: "notes-bucket-1", Parent: "urn:c"},
		},
	}

	got := listResources(snap)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Name != "notes-bucket" || got[1].Name != "notes-vpc" {
		t.Errorf("not sorted by name: %+v", got)
	}
	if got[0].Parent != "notes" {
		t.Errorf("parent = %q, want notes", got[0].Parent)
	}
}

func TestOnceCertificate(t *testing.T) {
	gen := onceCertificate()
	a, err := gen("notes.example.com", nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := gen("other.example.com", nil)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("onceCertificate generated twice")
	}
}

func TestWatchedFiles(t *testing.T) {
	dir := t.TempDir()
	files, dirs, err := watchedFiles([]string{
		filepath.Join(dir, "hedgedoc.yaml"),
		filepath.Join(dir, ".env"),
		"",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("files = %v, want 2", files)
	}
	if len(dirs) != 1 || dirs[0] != dir {
		t.Errorf("dirs = %v, want [%s]", dirs, dir)
	}
}

func TestRunOptimize(t *testing.T) {
	g := testOptions(t, testStackFile)
	if err := runOptimize(context.Background(), g, "json", "all"); err != nil {
		t.Errorf("runOptimize() error = %v", err)
	}
	if err := runOptimize(context.Background(), g, "xml", "all"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestCapitalize(t *testing.T) {
	if got := capitalize("security"); got != "Security" {
		t.Errorf("capitalize() = %q", got)
	}
	if got := capitalize(""); got != "" {
		t.Errorf("capitalize(\"\") = %q", got)
	}
}

func TestBuildPlan_MatchesSchemas(t *testing.T) {
	for _, frontend := range []string{"cdn", "tls"} {
		t.Run(frontend, func(t *testing.T) {
			g := testOptions(t, testStackFile+"frontend: "+frontend+"\n")
			cfg, err := g.loadOffline()
			if err != nil {
				t.Fatal(err)
			}
			plan, _, err := buildPlan(context.Background(), cfg, g.logger(0))
			if err != nil {
				t.Fatalf("buildPlan() error = %v", err)
			}

			result := schema.ValidateTemplate(plan, schema.Options{Strict: true})
			for _, e := range result.Errors {
				if strings.HasPrefix(e.Message, "missing required property") || strings.HasPrefix(e.Message, "expected type") {
					t.Errorf("schema error: %s", e)
				}
			}
			for _, w := range result.Warnings {
				t.Errorf("schema warning: %s", w)
			}
		})
	}
}
