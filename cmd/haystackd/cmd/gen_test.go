package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haystackd/haystackd/internal/corpus"
)

func TestGenCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.txt")

	out := execute(t, "gen", path, "--lines", "250")
	assert.Contains(t, out, "wrote 250 lines")

	lines, err := corpus.Load(path)
	require.NoError(t, err)
	assert.Len(t, lines, 250)
}

func TestGenCmdRequiresPath(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"gen"})
	require.Error(t, cmd.Execute())
}
