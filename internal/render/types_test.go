package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.FallbackWidth != 300 {
		t.Errorf("FallbackWidth = %d, want 300", config.FallbackWidth)
	}
	if config.FallbackHeight != 150 {
		t.Errorf("FallbackHeight = %d, want 150", config.FallbackHeight)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero width", func(c *Config) { c.FallbackWidth = 0 }, true},
		{"negative height", func(c *Config) { c.FallbackHeight = -1 }, true},
		{"zero max", func(c *Config) { c.MaxDimension = 0 }, true},
		{"fallback above max", func(c *Config) { c.MaxDimension = 200 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInstructionShapeRebuild(t *testing.T) {
	src := map[string]any{
		"src": "https://example.com/a.svg",
		"colors": []any{
			map[string]any{"from": "#ff0000", "to": "#00ff00"},
			"not a map",
			map[string]any{"from": "#000000", "to": 12},
		},
		"extra": true,
	}

	got := InstructionShape.Rebuild(src)
	want := MergeInstruction{
		Source: "https://example.com/a.svg",
		Colors: []ColorReplacement{
			{From: "#ff0000", To: "#00ff00"},
			{From: "#000000"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rebuild() mismatch (-want +got):\n%s", diff)
	}
}

func TestInstructionShapeNames(t *testing.T) {
	if diff := cmp.Diff([]string{"src", "colors"}, InstructionShape.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"from", "to"}, ReplacementShape.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}
