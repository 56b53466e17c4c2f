package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dietstat/internal/config"
	"dietstat/internal/dataset"
	"dietstat/internal/report"
	"dietstat/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	t.Setenv("DIETSTAT_INPUT_CSV", "")
	t.Setenv("DIETSTAT_BLOB_PATH", "")
	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	if err := config.Save(configPath, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n%s", needle, haystack)
	}
}

func TestAnalyzeCommandPrintsReport(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithDietsCSV())

	out, _, err := runCLI(t, []string{"analyze"}, env.configPath)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	requireContains(t, out, "== Data Cleaning ==")
	requireContains(t, out, "== Average Values by Diet Type ==")
	requireContains(t, out, "Steak Salad")
	requireContains(t, out, "55.00")

	processed, err := dataset.LoadFile(env.cfg.ProcessedCSVPath())
	if err != nil {
		t.Fatalf("load processed csv: %v", err)
	}
	if !processed.HasColumn("Carbs_to_Fat_ratio") {
		t.Fatalf("processed csv lacks ratio column")
	}
}

func TestAnalyzeCommandJSONWithOverrides(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithDietsCSV())
	outDir := filepath.Join(t.TempDir(), "alt")

	out, _, err := runCLI(t, []string{"analyze", "--json", "--top-k", "1", "--strategy", "select", "--output-dir", outDir}, env.configPath)
	if err != nil {
		t.Fatalf("analyze --json: %v", err)
	}
	var summary report.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if summary.TopK.K != 1 || summary.TopK.Strategy != "select" {
		t.Fatalf("flags not applied: %+v", summary.TopK)
	}
	for _, g := range summary.TopK.Groups {
		if len(g.Records) != 1 {
			t.Fatalf("group %s has %d records", g.Group, len(g.Records))
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "processed_diets.csv")); err != nil {
		t.Fatalf("processed csv not written to --output-dir: %v", err)
	}
}

func TestAnalyzeCommandMissingInput(t *testing.T) {
	env := setupCLITestEnv(t)
	_, stderr, err := runCLI(t, []string{"analyze"}, env.configPath)
	if !errors.Is(err, dataset.ErrInputNotFound) {
		t.Fatalf("expected ErrInputNotFound, got %v", err)
	}
	requireContains(t, stderr, "ERROR command failed")
	requireContains(t, stderr, "event_type=analyze_failed")
	requireContains(t, stderr, "check paths.input_csv")
}

func TestAnalyzeCommandRejectsBadTopK(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithDietsCSV())
	if _, _, err := runCLI(t, []string{"analyze", "--top-k", "0"}, env.configPath); err == nil {
		t.Fatalf("expected error for --top-k 0")
	}
	if _, _, err := runCLI(t, []string{"analyze", "--strategy", "heap"}, env.configPath); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func TestMirrorCommandTwice(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithDietsCSV(), testsupport.WithBlobBackend(config.BackendSQLite))

	out, _, err := runCLI(t, []string{"mirror"}, env.configPath)
	if err != nil {
		t.Fatalf("first mirror: %v", err)
	}
	requireContains(t, out, "datasets (created)")
	requireContains(t, out, "All_Diets.csv")

	out, _, err = runCLI(t, []string{"mirror", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("second mirror: %v", err)
	}
	var result struct {
		ContainerCreated bool `json:"container_created"`
		Records          int  `json:"records"`
		Total            int  `json:"total"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode result: %v\n%s", err, out)
	}
	if result.ContainerCreated || result.Records != 7 || result.Total != 14 {
		t.Fatalf("unexpected second run %+v", result)
	}
}

func TestMirrorCommandMissingSource(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"mirror", "--source", filepath.Join(t.TempDir(), "nope.csv")}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "source csv not found") {
		t.Fatalf("expected source not found, got %v", err)
	}
}

func TestBenchCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithDietsCSV())
	out, _, err := runCLI(t, []string{"bench", "--iterations", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("bench: %v", err)
	}
	requireContains(t, out, "Top-5 Strategy Benchmark")
	requireContains(t, out, "Same records:")
	requireContains(t, out, "yes")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "(missing)")
	requireContains(t, out, "Protein_to_Carbs_ratio")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	requireContains(t, out, "Diet_type")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatalf("expected error when config exists without --overwrite")
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("validate sample config: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestConfigValidateChecksInputHeader(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithDietsCSV())
	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "7 rows, header ok")

	testsupport.WriteCSV(t, env.cfg.Paths.InputCSV, "Diet_type,Recipe_name,Protein(g),Carbs(g),Fat(g)\nvegan,Tofu,1,2,3\n")
	_, _, err = runCLI(t, []string{"config", "validate"}, env.configPath)
	var missing *dataset.MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	if len(missing.Columns) != 1 || missing.Columns[0] != "Cuisine_type" {
		t.Fatalf("unexpected missing columns %v", missing.Columns)
	}
}
