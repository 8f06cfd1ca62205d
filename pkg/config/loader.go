// Package config loads tokenwire configuration files. YAML, JSON and CUE are
// parsed by CUE; TOML is decoded first and then encoded into a CUE value so
// every format is looked up the same way.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/encoding/yaml"
	"github.com/BurntSushi/toml"
)

// LoadValueFromReader loads configuration from an io.Reader and returns a CUE value.
// The content is tried as YAML (a superset of JSON), then TOML, then CUE; the
// first parse that yields a struct wins. For .cue files with imports, use
// LoadValue instead.
func LoadValueFromReader(r io.Reader) (cue.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to read config: %w", err)
	}

	ctx := cuecontext.New()
	if len(bytes.TrimSpace(data)) == 0 {
		return ctx.CompileString("{}"), nil
	}

	file, yamlErr := yaml.Extract("", data)
	if yamlErr == nil {
		if val := ctx.BuildFile(file); isStruct(val) {
			return val, nil
		}
	}

	if val, err := decodeTOML(ctx, data); err == nil {
		return val, nil
	}

	if val := ctx.CompileBytes(data); isStruct(val) {
		return val, nil
	}

	if yamlErr != nil {
		return cue.Value{}, fmt.Errorf("failed to parse config: %w", yamlErr)
	}
	return cue.Value{}, fmt.Errorf("failed to parse config: not a mapping of settings")
}

func isStruct(val cue.Value) bool {
	return val.Err() == nil && val.IncompleteKind() == cue.StructKind
}

// LoadValue loads configuration from a file and returns a CUE value.
//
// For .cue files and directories: Uses CUE's load.Instances to support packages with imports.
// For .toml files: Decodes with BurntSushi/toml and encodes the result into CUE.
// For .yaml/.yml/.json files: Uses direct parsing for standalone data files.
func LoadValue(path string) (cue.Value, error) {
	ctx := cuecontext.New()

	fileInfo, err := os.Stat(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to stat path: %w", err)
	}

	if fileInfo.IsDir() || strings.HasSuffix(strings.ToLower(path), ".cue") {
		return loadInstance(ctx, path, fileInfo.IsDir())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to read file: %w", err)
	}

	var val cue.Value
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return decodeTOML(ctx, data)
	case ".json":
		val = ctx.CompileBytes(data)
	default:
		file, err := yaml.Extract("", data)
		if err != nil {
			return cue.Value{}, fmt.Errorf("failed to parse YAML: %w", err)
		}
		val = ctx.BuildFile(file)
	}

	if err := val.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("failed to build CUE value: %w", err)
	}
	return val, nil
}

func loadInstance(ctx *cue.Context, path string, isDir bool) (cue.Value, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to resolve path: %w", err)
	}

	cfg := &load.Config{
		Dir:       filepath.Dir(absPath),
		DataFiles: true,
	}

	args := []string{absPath}
	if isDir {
		args = []string{path}
	}

	instances := load.Instances(args, cfg)
	if len(instances) == 0 {
		return cue.Value{}, fmt.Errorf("no instances loaded from %s", path)
	}

	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, fmt.Errorf("failed to load config: %w", inst.Err)
	}

	val := ctx.BuildInstance(inst)
	if err := val.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("failed to build CUE value: %w", err)
	}
	return val, nil
}

func decodeTOML(ctx *cue.Context, data []byte) (cue.Value, error) {
	var m map[string]any
	if _, err := toml.Decode(string(data), &m); err != nil {
		return cue.Value{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	val := ctx.Encode(m)
	if err := val.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("failed to build CUE value: %w", err)
	}
	return val, nil
}

// LoadFromFile loads configuration from a file or directory into the specified type.
//
// Examples:
//
//	cfg, err := LoadFromFile[Settings]("tokenwire.yaml")
//	cfg, err := LoadFromFile[Settings]("tokenwire.toml")
func LoadFromFile[T any](path string) (*T, error) {
	val, err := LoadValue(path)
	if err != nil {
		return nil, err
	}

	var config T
	if err := val.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &config, nil
}
