package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
)

func TestCmdValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ratboard.toml")
		body := `
signal = "ratsignal"
prefix = "!"
help_prefix = "?"
enable = ["rat-board"]
`
		gt.NoError(t, os.WriteFile(path, []byte(body), 0644)).Required()
		gt.NoError(t, cmdValidate().Run(ctx, []string{"validate", "-c", path}))
	})

	t.Run("unknown feature rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ratboard.toml")
		gt.NoError(t, os.WriteFile(path, []byte(`enable = ["jukebox"]`), 0644)).Required()
		gt.Error(t, cmdValidate().Run(ctx, []string{"validate", "-c", path}))
	})

	t.Run("missing file rejected", func(t *testing.T) {
		gt.Error(t, cmdValidate().Run(ctx, []string{"validate", "-c", "/nope.toml"}))
	})

	t.Run("no file uses defaults", func(t *testing.T) {
		gt.NoError(t, cmdValidate().Run(ctx, []string{"validate"}))
	})
}
