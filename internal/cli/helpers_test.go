package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lumos/internal/ldl"
)

// newTestOptions returns root options pointing at a fresh database.
func newTestOptions(t *testing.T, format string) *RootOptions {
	t.Helper()
	return &RootOptions{
		Format:   format,
		Database: filepath.Join(t.TempDir(), "test.db"),
	}
}

// writeDoc encodes doc into dir/name, picking the format from the extension.
func writeDoc(t *testing.T, dir, name string, doc *ldl.Document) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data, err := ldl.Encode(doc, ldl.FormatFromPath(path))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// execute runs cmd with args and returns stdout and stderr separately.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(diag)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), diag.String(), err
}
