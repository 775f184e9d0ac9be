package esbuild

import (
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"
)

// metafile is the subset of esbuild's metafile JSON read after a build.
type metafile struct {
	Inputs  map[string]metafileInput  `json:"inputs"`
	Outputs map[string]metafileOutput `json:"outputs"`
}

type metafileInput struct {
	Bytes int `json:"bytes"`
}

type metafileOutput struct {
	Bytes      int    `json:"bytes"`
	EntryPoint string `json:"entryPoint,omitempty"`
}

func parseMetafile(data string) (metafile, error) {
	var m metafile
	if data == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return metafile{}, err
	}
	return m, nil
}

// outputFiles returns the absolute output paths, sorted.
func (m metafile) outputFiles(workingDir string) []string {
	files := make([]string, 0, len(m.Outputs))
	for p := range m.Outputs {
		files = append(files, absolute(workingDir, p))
	}
	slices.Sort(files)
	return files
}

// wasmInputs returns the .wasm files esbuild read, sorted.
func (m metafile) wasmInputs(workingDir string) []string {
	var files []string
	for p := range m.Inputs {
		if strings.HasSuffix(p, ".wasm") {
			files = append(files, absolute(workingDir, p))
		}
	}
	slices.Sort(files)
	return files
}

func absolute(workingDir, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(workingDir, p)
}
