package cli

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/cobra"

	"github.com/provgraph/provis/pkg/config"
	"github.com/provgraph/provis/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "empty defaults to svg",
			input: "",
			want:  []string{"svg"},
		},
		{
			name:  "single format",
			input: "png",
			want:  []string{"png"},
		},
		{
			name:  "multiple formats",
			input: "svg,png,pdf",
			want:  []string{"svg", "png", "pdf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMergeEngineConfig(t *testing.T) {
	cfg := config.Engine{
		Strategy: "radial",
		Tool:     "neato",
		Workers:  4,
		Depth:    2,
		Zoom:     true,
	}

	t.Run("config fills unset flags", func(t *testing.T) {
		var opts pipeline.Options
		cmd := &cobra.Command{}
		engineFlags(cmd, &opts)

		mergeEngineConfig(cmd, &opts, cfg)

		if opts.Strategy != "radial" {
			t.Errorf("Strategy = %q, want %q", opts.Strategy, "radial")
		}
		if opts.Tool != "neato" {
			t.Errorf("Tool = %q, want %q", opts.Tool, "neato")
		}
		if opts.Workers != 4 {
			t.Errorf("Workers = %d, want 4", opts.Workers)
		}
		if opts.Depth != 2 {
			t.Errorf("Depth = %d, want 2", opts.Depth)
		}
		if !opts.Zoom {
			t.Error("Zoom = false, want true")
		}
	})

	t.Run("explicit flags win", func(t *testing.T) {
		var opts pipeline.Options
		cmd := &cobra.Command{}
		engineFlags(cmd, &opts)

		if err := cmd.Flags().Set("strategy", "flat"); err != nil {
			t.Fatal(err)
		}
		if err := cmd.Flags().Set("workers", "8"); err != nil {
			t.Fatal(err)
		}

		mergeEngineConfig(cmd, &opts, cfg)

		if opts.Strategy != "flat" {
			t.Errorf("Strategy = %q, want flag value %q", opts.Strategy, "flat")
		}
		if opts.Workers != 8 {
			t.Errorf("Workers = %d, want flag value 8", opts.Workers)
		}
		// Untouched flags still come from config.
		if opts.Tool != "neato" {
			t.Errorf("Tool = %q, want config value %q", opts.Tool, "neato")
		}
	})

	t.Run("partial flag set", func(t *testing.T) {
		// Commands like expand register only a subset of the engine
		// flags; merging must not panic on the missing ones.
		var opts pipeline.Options
		cmd := &cobra.Command{}
		cmd.Flags().StringVar(&opts.Tool, "tool", "", "")
		cmd.Flags().BoolVar(&opts.Zoom, "zoom", false, "")

		mergeEngineConfig(cmd, &opts, cfg)

		if opts.Tool != "neato" {
			t.Errorf("Tool = %q, want %q", opts.Tool, "neato")
		}
		if opts.Strategy != "radial" {
			t.Errorf("Strategy = %q, want %q", opts.Strategy, "radial")
		}
	})
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()

	t.Run("none backend", func(t *testing.T) {
		c, err := newCache(ctx, config.Cache{Backend: "none"}, false)
		if err != nil {
			t.Fatalf("newCache() error: %v", err)
		}
		if c == nil {
			t.Fatal("newCache() returned nil cache")
		}
	})

	t.Run("no-cache flag overrides backend", func(t *testing.T) {
		cfg := config.Cache{Backend: "file", Dir: t.TempDir()}
		c, err := newCache(ctx, cfg, true)
		if err != nil {
			t.Fatalf("newCache() error: %v", err)
		}
		// The null cache never stores anything.
		if err := c.Set(ctx, "key", []byte("data"), 0); err != nil {
			t.Fatalf("Set() error: %v", err)
		}
		if _, ok, _ := c.Get(ctx, "key"); ok {
			t.Error("null cache should not retain entries")
		}
	})

	t.Run("file backend", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "cache")
		c, err := newCache(ctx, config.Cache{Backend: "file", Dir: dir}, false)
		if err != nil {
			t.Fatalf("newCache() error: %v", err)
		}
		defer c.Close()
		if err := c.Set(ctx, "key", []byte("data"), 0); err != nil {
			t.Fatalf("Set() error: %v", err)
		}
		data, ok, err := c.Get(ctx, "key")
		if err != nil || !ok {
			t.Fatalf("Get() = (%v, %v), want hit", ok, err)
		}
		if string(data) != "data" {
			t.Errorf("Get() = %q, want %q", data, "data")
		}
	})
}

func TestNewArchive(t *testing.T) {
	ctx := context.Background()

	t.Run("none backend yields nil store", func(t *testing.T) {
		store, err := newArchive(ctx, config.Archive{Backend: "none"})
		if err != nil {
			t.Fatalf("newArchive() error: %v", err)
		}
		if store != nil {
			t.Error("backend none should disable the archive")
		}
	})

	t.Run("memory backend", func(t *testing.T) {
		store, err := newArchive(ctx, config.Archive{Backend: "memory"})
		if err != nil {
			t.Fatalf("newArchive() error: %v", err)
		}
		if store == nil {
			t.Fatal("newArchive() returned nil store")
		}
		defer store.Close()
	})

	t.Run("sqlite backend", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "runs.db")
		store, err := newArchive(ctx, config.Archive{Backend: "sqlite", Path: path})
		if err != nil {
			t.Fatalf("newArchive() error: %v", err)
		}
		if store == nil {
			t.Fatal("newArchive() returned nil store")
		}
		defer store.Close()
	})
}
