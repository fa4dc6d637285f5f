package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/numlab/internal/config"
)

func TestParseFloatArg(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"1.5", 1.5, false},
		{"-2", -2, false},
		{"1e-3", 0.001, false},
		{"pi", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parseFloatArg("x", tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseFloatArg(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseFloatArg(%q) = %v, expected %v", tt.in, got, tt.want)
		}
	}
}

// withConfig points the config globals at path and restores them afterwards.
func withConfig(t *testing.T, path string) {
	t.Helper()
	oldFile, oldPreset, oldCfg := configFile, preset, cfg
	configFile, preset = path, ""
	t.Cleanup(func() { configFile, preset, cfg = oldFile, oldPreset, oldCfg })
}

func stepCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "diff"}
	cmd.Flags().Float64Var(&step, "step", 0.001, "")
	return cmd
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("step: 0.2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	withConfig(t, path)

	if err := loadConfig(stepCommand(), nil); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Step != 0.2 {
		t.Errorf("file: expected step 0.2, got %g", cfg.Step)
	}

	t.Setenv("NUMLAB_STEP", "0.5")
	if err := loadConfig(stepCommand(), nil); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Step != 0.5 {
		t.Errorf("env over file: expected step 0.5, got %g", cfg.Step)
	}

	cmd := stepCommand()
	if err := cmd.Flags().Set("step", "0.01"); err != nil {
		t.Fatal(err)
	}
	if err := loadConfig(cmd, nil); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Step != 0.01 {
		t.Errorf("flag over env: expected step 0.01, got %g", cfg.Step)
	}
}

func TestTuneStepRejectsEmptyGrid(t *testing.T) {
	withConfig(t, "")
	cfg = config.DefaultConfig()
	old := gridSize
	t.Cleanup(func() { gridSize = old })

	gridSize = 0
	err := tuneStep(&cobra.Command{}, nil)
	if err == nil || !strings.Contains(err.Error(), "--grid") {
		t.Errorf("expected grid size error, got %v", err)
	}
}

func TestDescribeSamplesForwardTable(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	if err := describeSamples(cmd, nil); err != nil {
		t.Fatalf("stats: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"sampled integration", "forward differences of sin(x), h=1e-4"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	table := out[strings.Index(out, "forward differences"):]
	if n := strings.Count(table, "\n"); n != 7 {
		t.Errorf("expected section, header and 5 rows, got %d lines:\n%s", n, table)
	}
}
