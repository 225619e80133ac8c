package devenv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsWorkspaceRoot(t *testing.T) {
	dir := t.TempDir()
	require.False(t, isWorkspaceRoot(dir))

	err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module attendance-backend-tools\n\ngo 1.22.2\n"), 0600)
	if err != nil {
		t.Fatal(err)
	}
	require.False(t, isWorkspaceRoot(dir))

	err = os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module attendance-backend\n\ngo 1.22.2\n"), 0600)
	if err != nil {
		t.Fatal(err)
	}
	require.True(t, isWorkspaceRoot(dir))
}

func TestIsStatePath(t *testing.T) {
	require.True(t, IsStatePath("<dev_state>/register_dumps"))
	require.False(t, IsStatePath("/var/lib/<dev_state>/dumps"))
	require.False(t, IsStatePath("dumps"))
}

func TestResolvePath(t *testing.T) {
	path, err := ResolvePath("/var/lib/accounts.db")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "/var/lib/accounts.db", path)

	path, err = ResolvePath(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, ":memory:", path)

	root, err := GetWorkspaceRoot()
	if err != nil {
		t.Fatal(err)
	}
	path, err = ResolvePath("<dev_state>/register_dumps")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, filepath.Join(root, "dev", ".state", "register_dumps"), path)
	require.DirExists(t, filepath.Join(root, "dev", ".state"))
}
