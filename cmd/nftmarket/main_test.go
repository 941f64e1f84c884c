package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionSkipsConfig(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	t.Run("version", func(t *testing.T) {
		var out bytes.Buffer
		cmd := rootCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"version", "--config", missing})

		require.NoError(t, cmd.Execute())
		assert.Equal(t, appName+" version "+Version+"\n", out.String())
	})

	t.Run("other commands load config", func(t *testing.T) {
		cmd := rootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"catalog", "--config", missing})

		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load config")
	})
}
