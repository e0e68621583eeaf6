package manifest

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{"name":"puzzle-framework-sample","version":"1.0.0","author":"Spark Development","scripts":{"start":"node index.js"},"dependencies":{"express":"^4.0.0"}}`

func TestApply_SetsNameAndAuthor(t *testing.T) {
	out, err := Apply([]byte(sample), Patch{Name: "demo", Author: "alice <alice@localhost>"})
	require.NoError(t, err)

	want := `{
  "name": "demo",
  "version": "1.0.0",
  "author": "alice <alice@localhost>",
  "scripts": {
    "start": "node index.js"
  },
  "dependencies": {
    "express": "^4.0.0"
  }
}
`
	assert.Equal(t, want, string(out))
}

func TestApply_AddsMissingFields(t *testing.T) {
	out, err := Apply([]byte(`{"version":"0.1.0"}`), Patch{Name: "demo", Author: "bob <b@x.io>"})
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, `"version": "0.1.0"`)
	assert.Contains(t, s, `"name": "demo"`)
	assert.Contains(t, s, `"author": "bob <b@x.io>"`)
	assert.Less(t, strings.Index(s, `"version"`), strings.Index(s, `"name"`))
	assert.True(t, strings.HasSuffix(s, "}\n"))
}

func TestApply_ReplacesObjectAuthor(t *testing.T) {
	in := `{"name":"x","author":{"name":"Old","email":"old@x.io"}}`
	out, err := Apply([]byte(in), Patch{Name: "y", Author: "new <n@x.io>"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"y\",\n  \"author\": \"new <n@x.io>\"\n}\n", string(out))
}

func TestApply_EscapesSpecialCharacters(t *testing.T) {
	out, err := Apply([]byte(`{}`), Patch{Name: "demo", Author: `a "quoted" name <q@x.io>`})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"author": "a \"quoted\" name <q@x.io>"`+"\n")
}

func TestApply_RejectsInvalidJSON(t *testing.T) {
	_, err := Apply([]byte(`{"name":`), Patch{Name: "demo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing JSON")
}

func TestApply_RejectsNonObject(t *testing.T) {
	_, err := Apply([]byte(`["a","b"]`), Patch{Name: "demo"})
	require.Error(t, err)

	var res *ValidationResult
	require.ErrorAs(t, err, &res)
	assert.False(t, res.Valid)
	assert.Contains(t, err.Error(), "invalid package.json")
}

func TestApply_ToleratesSchemaViolations(t *testing.T) {
	out, err := Apply([]byte(`{"name":42,"scripts":{"start":true}}`), Patch{Name: "demo", Author: "a <a@x.io>"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"demo\",\n  \"scripts\": {\n    \"start\": true\n  },\n  \"author\": \"a <a@x.io>\"\n}\n", string(out))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"minimal", `{}`, true},
		{"sample", sample, true},
		{"author object", `{"author":{"name":"a"}}`, true},
		{"numeric version", `{"version":1}`, false},
		{"script not string", `{"scripts":{"start":true}}`, false},
		{"string root", `"package"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Validate([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid, "issues: %v", res.Issues)
		})
	}
}

func TestPatchFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/work/demo/package.json"
	require.NoError(t, afero.WriteFile(fs, path, []byte(sample), 0o640))

	res, err := PatchFile(fs, path, Patch{Name: "demo", Author: "alice <alice@localhost>"})
	require.NoError(t, err)
	assert.Equal(t, "puzzle-framework-sample", res.PreviousName)
	assert.Equal(t, path, res.Path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"name\": \"demo\",\n"))

	info, err := fs.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, "-rw-r-----", info.Mode().Perm().String())
}

func TestPatchFile_ReportsSchemaIssues(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/work/demo/package.json"
	require.NoError(t, afero.WriteFile(fs, path, []byte(`{"name":"old","version":1}`), 0o644))

	res, err := PatchFile(fs, path, Patch{Name: "demo", Author: "a <a@x.io>"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Issues)
	assert.Equal(t, "/version", res.Issues[0].Path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "demo"`)
}

func TestPatchFile_Missing(t *testing.T) {
	_, err := PatchFile(afero.NewMemMapFs(), "/nope/package.json", Patch{Name: "demo"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPatchFile_InvalidLeavesFileUntouched(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/p/package.json"
	require.NoError(t, afero.WriteFile(fs, path, []byte(`{"name":`), 0o644))

	_, err := PatchFile(fs, path, Patch{Name: "demo"})
	require.Error(t, err)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, `{"name":`, string(data))
}
