package main

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origCommit }()
	Version = "1.4.0-test"
	GitCommit = "abc123"

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)
	versionCmd.Run(versionCmd, nil)

	out := buf.String()
	assert.Contains(t, out, "Underwriter 1.4.0-test")
	assert.Contains(t, out, "Git Commit: abc123")
	assert.Contains(t, out, "Go Version: "+runtime.Version())
	assert.Contains(t, out, "OS/Arch: "+runtime.GOOS+"/"+runtime.GOARCH)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	for _, name := range []string{"run", "evaluate", "lint", "validators", "documents", "audit", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if assert.NoError(t, err, "subcommand %q", name) {
			assert.NotSame(t, rootCmd, cmd, "subcommand %q not registered", name)
		}
	}
}
