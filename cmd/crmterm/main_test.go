package main

import (
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runWithArgs calls run with a fresh command line and a private home
// directory.
func runWithArgs(t *testing.T, args ...string) int {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	oldArgs, oldFlags, oldUsage := os.Args, flag.CommandLine, flag.Usage
	t.Cleanup(func() {
		os.Args, flag.CommandLine, flag.Usage = oldArgs, oldFlags, oldUsage
		log.SetOutput(os.Stderr)
	})

	os.Args = append([]string{"crmterm"}, args...)
	flag.CommandLine = flag.NewFlagSet("crmterm", flag.ContinueOnError)
	flag.CommandLine.SetOutput(io.Discard)
	return run()
}

func TestRunClosesDebugLogOnFailure(t *testing.T) {
	code := runWithArgs(t, "-debug", "mailcheck")

	assert.Equal(t, 1, code)
	assert.Equal(t, io.Discard, log.Writer(), "the debug log is closed before exit")

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(home, ".config", "crmterm", "debug.log"))
}

func TestRunRejectsBrokenConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unterminated\n"), 0o600))

	assert.Equal(t, 1, runWithArgs(t, "-config", path, "status"))
}
