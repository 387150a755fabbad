package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/lootlint/internal/esptest"
	"github.com/stretchr/testify/require"
)

func writeDataDir(t *testing.T, dataDir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	plugin := esptest.Build(esptest.PluginSpec{})
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "Foo.esp"), plugin, 0o644))
}

func writeMasterlist(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "masterlist.yaml")
	list := `
plugins:
  - name: 'Foo.esp'
    msg:
      - type: warn
        content: 'needs attention'
`
	require.NoError(t, os.WriteFile(path, []byte(list), 0o644))
	return path
}
