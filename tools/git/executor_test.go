package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepo creates a temporary git repository for testing
func setupTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	tmpDir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = tmpDir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}

	run("init")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test User")
	run("config", "commit.gpgsign", "false")

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "initial.txt"), []byte("initial"), 0644))
	run("add", ".")
	run("commit", "-m", "feat: initial commit")

	return tmpDir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestValidateConventionalCommit(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"chore(icons): regenerate icon components", true},
		{"feat: add arrow icons", true},
		{"fix(icons-ui): crop tall icons", true},
		{"regenerate icons", false},
		{"chore:missing space", false},
		{"wip(icons): stuff", false},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateConventionalCommit(tt.message))
		})
	}
}

func TestParseFileOperation(t *testing.T) {
	assert.Equal(t, "add", ParseFileOperation("A"))
	assert.Equal(t, "delete", ParseFileOperation("D"))
	assert.Equal(t, "rename", ParseFileOperation("R100"))
	assert.Equal(t, "modify", ParseFileOperation("M"))
	assert.Equal(t, "modify", ParseFileOperation(""))
}

func TestParsePorcelain(t *testing.T) {
	out := " M src/index.ts\x00?? src/icons/箭头.ts\x00R  new.ts\x00old.ts\x00D  gone.ts\x00"
	got := parsePorcelain(out)

	require.Len(t, got, 4)
	assert.Equal(t, FileStatus{Path: "src/index.ts", Staged: ' ', Worktree: 'M'}, got[0])
	assert.True(t, got[1].Untracked())
	assert.Equal(t, "src/icons/箭头.ts", got[1].Path)
	assert.Equal(t, "new.ts", got[2].Path)
	assert.Equal(t, "gone.ts", got[3].Path)
}

func TestValidatePath(t *testing.T) {
	base := t.TempDir()

	assert.NoError(t, validatePath(base, "src/icons"))
	assert.NoError(t, validatePath(base, filepath.Join(base, "dist")))
	assert.Error(t, validatePath(base, ""))
	assert.Error(t, validatePath(base, "../outside"))
	assert.Error(t, validatePath(base, "/etc/passwd"))
}

func TestExecutor_StatusAndHasChanges(t *testing.T) {
	repo := setupTestRepo(t)
	e := NewExecutor(repo, nil)
	ctx := context.Background()

	require.True(t, e.IsRepo(ctx))

	changed, err := e.HasChanges(ctx, "src")
	require.NoError(t, err)
	assert.False(t, changed)

	writeFile(t, filepath.Join(repo, "src", "index.ts"), "export {};\n")
	writeFile(t, filepath.Join(repo, "other.txt"), "unrelated")

	changed, err = e.HasChanges(ctx, "src")
	require.NoError(t, err)
	assert.True(t, changed)

	statuses, err := e.Status(ctx, "src")
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "src/index.ts", statuses[0].Path)
	assert.True(t, statuses[0].Untracked())
}

func TestExecutor_CommitPaths(t *testing.T) {
	repo := setupTestRepo(t)
	e := NewExecutor(repo, nil)
	ctx := context.Background()

	writeFile(t, filepath.Join(repo, "src", "icons", "home.ts"), "// home\n")
	writeFile(t, filepath.Join(repo, "src", "index.ts"), "export {};\n")
	writeFile(t, filepath.Join(repo, "notes.txt"), "not staged")

	c, err := e.CommitPaths(ctx, "chore(icons): regenerate icon components", "src")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.NotEmpty(t, c.Hash)
	assert.ElementsMatch(t, []FileChange{
		{Path: "src/icons/home.ts", Operation: "add"},
		{Path: "src/index.ts", Operation: "add"},
	}, c.Files)

	// notes.txt stays untracked.
	statuses, err := e.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "notes.txt", statuses[0].Path)

	// Deletions are committed too.
	require.NoError(t, os.Remove(filepath.Join(repo, "src", "icons", "home.ts")))
	c, err = e.CommitPaths(ctx, "chore(icons): remove home", "src")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, []FileChange{{Path: "src/icons/home.ts", Operation: "delete"}}, c.Files)

	// Nothing left to commit.
	c, err = e.CommitPaths(ctx, "chore(icons): regenerate icon components", "src")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestExecutor_CommitRejectsMessage(t *testing.T) {
	repo := setupTestRepo(t)
	e := NewExecutor(repo, nil)

	writeFile(t, filepath.Join(repo, "src", "index.ts"), "export {};\n")
	_, err := e.CommitPaths(context.Background(), "regenerate", "src")
	assert.Error(t, err)
}

func TestExecutor_CommitNothingStaged(t *testing.T) {
	repo := setupTestRepo(t)
	e := NewExecutor(repo, nil)

	_, err := e.Commit(context.Background(), "chore: nothing")
	assert.True(t, errors.Is(err, ErrNothingToCommit))
}

func TestExecutor_NotARepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	e := NewExecutor(t.TempDir(), nil)

	assert.False(t, e.IsRepo(context.Background()))
	_, err := e.CommitPaths(context.Background(), "chore: x", "src")
	assert.Error(t, err)
}
