package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// FileName is the manifest every sample project carries at its root.
const FileName = "package.json"

// ErrNotFound is returned when the project has no manifest.
var ErrNotFound = errors.New("package.json not found")

// Patch lists the fields written into the manifest.
type Patch struct {
	Name   string
	Author string
}

// Result describes an applied patch. Issues lists schema violations that
// did not prevent patching.
type Result struct {
	Path         string
	PreviousName string
	Issues       []ValidationIssue
}

// Apply returns data with the patch applied, keeping the key order of the
// input, indented with two spaces and terminated by a newline. Only
// unparseable JSON or a root that is not an object is an error.
func Apply(data []byte, p Patch) ([]byte, error) {
	out, _, err := apply(data, p)
	return out, err
}

func apply(data []byte, p Patch) ([]byte, *ValidationResult, error) {
	res, err := Validate(data)
	if err != nil {
		return nil, nil, err
	}
	if !res.Valid && !gjson.ParseBytes(data).IsObject() {
		return nil, nil, res
	}

	out, err := patchFields(data, p)
	if err != nil {
		return nil, nil, err
	}
	return out, res, nil
}

func patchFields(data []byte, p Patch) ([]byte, error) {
	out, err := sjson.SetBytes(data, "name", p.Name)
	if err != nil {
		return nil, fmt.Errorf("setting name: %w", err)
	}
	out, err = sjson.SetBytes(out, "author", p.Author)
	if err != nil {
		return nil, fmt.Errorf("setting author: %w", err)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, out); err != nil {
		return nil, fmt.Errorf("compacting patched JSON: %w", err)
	}
	var indented bytes.Buffer
	if err := json.Indent(&indented, compact.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("indenting patched JSON: %w", err)
	}
	indented.WriteByte('\n')
	return indented.Bytes(), nil
}

// PatchFile applies p to the manifest at path, preserving its permissions.
func PatchFile(fs afero.Fs, path string, p Patch) (*Result, error) {
	info, err := fs.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	out, res, err := apply(data, p)
	if err != nil {
		return nil, fmt.Errorf("patching %s: %w", path, err)
	}

	if err := afero.WriteFile(fs, path, out, info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}

	return &Result{
		Path:         path,
		PreviousName: gjson.GetBytes(data, "name").String(),
		Issues:       res.Issues,
	}, nil
}
