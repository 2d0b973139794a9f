package params_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/webapp_updater/updater/params"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want params.Declaration
		ok   bool
	}{
		{
			name: "full declaration",
			line: "// @optionalParam image string gcr.io/myimage Some image",
			want: params.Declaration{
				Name:        "image",
				Type:        "string",
				Value:       "gcr.io/myimage",
				Description: "Some image",
			},
			ok: true,
		},
		{
			name: "no description",
			line: "// @optionalParam replicas number 3",
			want: params.Declaration{
				Name:  "replicas",
				Type:  "number",
				Value: "3",
			},
			ok: true,
		},
		{
			name: "single word description",
			line: "// @optionalParam replicas number 3 count",
			want: params.Declaration{
				Name:        "replicas",
				Type:        "number",
				Value:       "3",
				Description: "count",
			},
			ok: true,
		},
		{
			name: "wrong marker",
			line: "# @optionalParam image string x Some image",
			want: params.Declaration{},
			ok:   false,
		},
		{
			name: "wrong directive",
			line: "// @param image string x Some image",
			want: params.Declaration{},
			ok:   false,
		},
		{
			name: "too short",
			line: "// @optionalParam image string",
			want: params.Declaration{},
			ok:   false,
		},
		{
			name: "empty line",
			line: "",
			want: params.Declaration{},
			ok:   false,
		},
		{
			name: "plain jsonnet",
			line: "local k = import 'k.libsonnet';",
			want: params.Declaration{},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := params.ParseLine(tt.line)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeclaration_String_normalizes_whitespace(
	t *testing.T,
) {
	t.Parallel()

	decl, ok := params.ParseLine(
		"//   @optionalParam   image  string   gcr.io/x   An   image",
	)

	require.True(t, ok)
	assert.Equal(
		t,
		"// @optionalParam image string gcr.io/x An image",
		decl.String(),
	)
}

func TestReplace_empty_values_is_identity(t *testing.T) {
	t.Parallel()

	lines := []string{
		"local k = import 'k.libsonnet';",
		"// @optionalParam image string gcr.io/x An image",
		"",
	}

	got, old := params.Replace(lines, nil)

	assert.Equal(t, lines, got)
	assert.Empty(t, old)
}

func TestReplace_rewrites_value_and_records_old(
	t *testing.T,
) {
	t.Parallel()

	lines := []string{
		"// @optionalParam image string gcr.io/proj/app:old000 The app image",
	}

	got, old := params.Replace(
		lines,
		map[string]string{"image": "gcr.io/proj/app:abc123"},
	)

	assert.Equal(
		t,
		[]string{
			"// @optionalParam image string gcr.io/proj/app:abc123 The app image",
		},
		got,
	)
	assert.Equal(
		t,
		map[string]string{"image": "gcr.io/proj/app:old000"},
		old,
	)
}

func TestReplace_missing_key_absent_from_old(t *testing.T) {
	t.Parallel()

	lines := []string{
		"// @optionalParam replicas number 3 Replica count",
	}

	got, old := params.Replace(
		lines,
		map[string]string{"image": "gcr.io/x"},
	)

	assert.Equal(t, lines, got)

	_, ok := old["image"]
	assert.False(t, ok)
}

func TestReplace_is_idempotent(t *testing.T) {
	t.Parallel()

	lines := []string{
		"// a comment",
		"// @optionalParam image string gcr.io/old An image",
		"// @optionalParam replicas number 3 Replica count",
	}

	values := map[string]string{"image": "gcr.io/new"}

	once, _ := params.Replace(lines, values)
	twice, _ := params.Replace(once, values)

	assert.Equal(t, once, twice)
}

func TestReplace_malformed_lines_pass_through(
	t *testing.T,
) {
	t.Parallel()

	lines := []string{
		"// @optionalParam image",
		"//	@optionalParam",
		"not a declaration at all with many tokens here",
	}

	got, old := params.Replace(
		lines,
		map[string]string{"image": "gcr.io/x"},
	)

	assert.Equal(t, lines, got)
	assert.Empty(t, old)
}

func TestUpdateFile_rewrites_and_returns_old(t *testing.T) {
	t.Parallel()

	fp := writeParamFile(
		t,
		"// comment\n"+
			"// @optionalParam image string gcr.io/proj/app:old000 The app image\n"+
			"local x = 1;\n",
	)

	old, changed, err := params.UpdateFile(
		fp,
		map[string]string{"image": "gcr.io/proj/app:abc123"},
	)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(
		t, "gcr.io/proj/app:old000", old["image"],
	)

	data, err := os.ReadFile(fp)
	require.NoError(t, err)

	assert.Equal(
		t,
		"// comment\n"+
			"// @optionalParam image string gcr.io/proj/app:abc123 The app image\n"+
			"local x = 1;\n",
		string(data),
	)
}

func TestUpdateFile_unchanged_value_skips_write(
	t *testing.T,
) {
	t.Parallel()

	content := "// @optionalParam image string gcr.io/proj/app:abc123 The app image\n"
	fp := writeParamFile(t, content)

	// Make any rewrite observable.
	require.NoError(t, os.Chmod(fp, 0o400))

	old, changed, err := params.UpdateFile(
		fp,
		map[string]string{"image": "gcr.io/proj/app:abc123"},
	)

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(
		t, "gcr.io/proj/app:abc123", old["image"],
	)

	data, err := os.ReadFile(fp)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestUpdateFile_missing_param_is_explicit(
	t *testing.T,
) {
	t.Parallel()

	fp := writeParamFile(t, "// no declarations here\n")

	_, _, err := params.UpdateFile(
		fp,
		map[string]string{"image": "gcr.io/x"},
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, params.ErrParamNotFound)
	assert.ErrorContains(t, err, "image")
}

func TestUpdateFile_missing_file(t *testing.T) {
	t.Parallel()

	_, _, err := params.UpdateFile(
		filepath.Join(t.TempDir(), "absent.jsonnet"),
		map[string]string{"image": "gcr.io/x"},
	)

	assert.Error(t, err)
}

// writeParamFile creates a parameter file in a temp dir
// and returns its path.
func writeParamFile(t *testing.T, content string) string {
	t.Helper()

	fp := filepath.Join(t.TempDir(), "app.jsonnet")

	err := os.WriteFile(fp, []byte(content), 0o600)
	require.NoError(t, err)

	return fp
}
