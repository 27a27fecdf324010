// Package registry is the static model catalog plus the local weight
// availability check. It is consumed, never owned, by the core.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sumbench/pkg/types"
)

// Catalog returns the built-in immutable model catalog. Footprints are
// expected values, informational until a load measures the real one.
func Catalog() []types.ModelSpec {
	return []types.ModelSpec{
		{ID: "gemma/gemma-3-1b-it-q8", Name: "Gemma 3 1B Instruct (8-bit)", Size: types.SizeSmall, ExpectedGB: 1.2, WeightFile: "gemma-3-1b-it-q8_0.gguf"},
		{ID: "llama/llama-3.2-3b-instruct-q4", Name: "Llama 3.2 3B Instruct (Q4_K_M)", Size: types.SizeSmall, ExpectedGB: 2.0, WeightFile: "llama-3.2-3b-instruct-q4_k_m.gguf"},
		{ID: "qwen/qwen2.5-7b-instruct-q4", Name: "Qwen 2.5 7B Instruct (Q4_K_M)", Size: types.SizeLarge, ExpectedGB: 4.7, WeightFile: "qwen2.5-7b-instruct-q4_k_m.gguf"},
		{ID: "mistral/mistral-7b-instruct-q4", Name: "Mistral 7B Instruct (Q4_K_M)", Size: types.SizeLarge, ExpectedGB: 4.4, WeightFile: "mistral-7b-instruct-v0.3-q4_k_m.gguf"},
		{ID: "gemma/gemma-3-12b-it-q4", Name: "Gemma 3 12B Instruct (Q4_K_M)", Size: types.SizeLarge, ExpectedGB: 7.5, WeightFile: "gemma-3-12b-it-q4_k_m.gguf"},
	}
}

// DefaultModelID is used when the caller does not pick a model.
const DefaultModelID = "gemma/gemma-3-1b-it-q8"

// Registry resolves catalog ids and checks weight presence on disk.
type Registry struct {
	specs []types.ModelSpec
	dir   string
}

// New builds a registry over the given catalog rooted at dir.
// An empty dir falls back to ~/models/sumbench.
func New(specs []types.ModelSpec, dir string) (*Registry, error) {
	resolved, err := resolveDir(dir)
	if err != nil {
		return nil, err
	}
	out := make([]types.ModelSpec, len(specs))
	copy(out, specs)
	return &Registry{specs: out, dir: resolved}, nil
}

// Dir returns the resolved models directory.
func (r *Registry) Dir() string { return r.dir }

// Lookup finds a catalog spec by id.
func (r *Registry) Lookup(id string) (types.ModelSpec, bool) {
	for _, s := range r.specs {
		if s.ID == id {
			return s, true
		}
	}
	return types.ModelSpec{}, false
}

// WeightPath returns the on-disk path a spec's weights would occupy.
func (r *Registry) WeightPath(spec types.ModelSpec) string {
	return filepath.Join(r.dir, spec.WeightFile)
}

// Available reports whether a spec's weight file is present locally.
func (r *Registry) Available(spec types.ModelSpec) bool {
	fi, err := os.Stat(r.WeightPath(spec))
	return err == nil && !fi.IsDir()
}

// Filter narrows List output. Zero value keeps everything.
type Filter struct {
	OnlyAvailable bool
	Size          types.SizeClass
}

// List returns catalog rows with availability, in catalog order.
func (r *Registry) List(f Filter) []types.ModelStatus {
	var out []types.ModelStatus
	for _, s := range r.specs {
		if f.Size != "" && s.Size != f.Size {
			continue
		}
		avail := r.Available(s)
		if f.OnlyAvailable && !avail {
			continue
		}
		out = append(out, types.ModelStatus{ModelSpec: s, Available: avail})
	}
	return out
}

func resolveDir(dir string) (string, error) {
	if dir == "" {
		dir = "~/models/sumbench"
	}
	expanded, err := expandHome(dir)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("abs path: %w", err)
	}
	return abs, nil
}

// expandHome expands a leading '~' to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}
