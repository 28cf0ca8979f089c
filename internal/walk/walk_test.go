package walk_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whencehq/whence/internal/walk"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()

	err := os.MkdirAll(filepath.Dir(path), 0o755)
	require.NoError(t, err)

	err = os.WriteFile(path, content, 0o644)
	require.NoError(t, err)
}

func collect(t *testing.T, root string, opts walk.Options) map[string][]string {
	t.Helper()

	batches := map[string][]string{}
	for batch, err := range walk.Snapshot(root, opts) {
		require.NoError(t, err)
		batches[batch.Dir] = batch.Files
	}

	return batches
}

func TestSnapshotBatchesPerDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), []byte("content of a\n"))
	writeFile(t, filepath.Join(root, "sub", "b.txt"), []byte("content of b\n"))
	writeFile(t, filepath.Join(root, "sub", "c.txt"), []byte("content of c\n"))

	batches := collect(t, root, walk.Options{})

	require.Len(t, batches, 2)
	require.Equal(t, []string{"a.txt"}, batches[root])
	require.ElementsMatch(
		t,
		[]string{"b.txt", "c.txt"},
		batches[filepath.Join(root, "sub")],
	)
}

func TestSnapshotSkipsGitDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), []byte("content of a\n"))
	writeFile(t, filepath.Join(root, ".git", "HEAD"), []byte("ref: refs/heads/main\n"))
	writeFile(t, filepath.Join(root, ".git", "objects", "x"), []byte("stuff\n"))

	batches := collect(t, root, walk.Options{})

	require.Len(t, batches, 1)
	require.Equal(t, []string{"a.txt"}, batches[root])
}

func TestSnapshotAppliesExcludeList(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), []byte("content of a\n"))
	writeFile(t, filepath.Join(root, "logo.png"), []byte("not actually a png\n"))
	writeFile(t, filepath.Join(root, "editor.swp"), []byte("swap\n"))
	writeFile(t, filepath.Join(root, "LICENSE"), []byte("Apache-2.0\n"))

	opts := walk.Options{Exclude: []string{".png", ".swp", "LICENSE"}}
	batches := collect(t, root, opts)

	require.Equal(t, []string{"a.txt"}, batches[root])
}

func TestSnapshotDetectsBinary(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), []byte("plain text content\n"))
	writeFile(t, filepath.Join(root, "blob"), []byte{0x00, 0x01, 0x02, 0xff, 0x00, 0x1b})

	batches := collect(t, root, walk.Options{DetectBinary: true})

	require.Equal(t, []string{"a.txt"}, batches[root])
}

func TestSnapshotKeepsBinaryWhenDetectionOff(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "blob"), []byte{0x00, 0x01, 0x02, 0xff})

	batches := collect(t, root, walk.Options{})

	require.Equal(t, []string{"blob"}, batches[root])
}

func TestCount(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), []byte("content of a\n"))
	writeFile(t, filepath.Join(root, "sub", "b.txt"), []byte("content of b\n"))
	writeFile(t, filepath.Join(root, ".git", "HEAD"), []byte("ref\n"))

	require.Equal(t, 2, walk.Count(root, walk.Options{}))
}
