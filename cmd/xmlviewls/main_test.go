// Package main provides tests for the xmlviewls CLI.
package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/xmlviewls/internal/cli"
	"github.com/leapstack-labs/xmlviewls/internal/cli/config"
	clitestutil "github.com/leapstack-labs/xmlviewls/internal/cli/testutil"
)

func TestVersionCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("version command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, cli.Version) {
		t.Errorf("version output should contain %q, got: %s", cli.Version, output)
	}
}

func TestHelpCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	output := buf.String()
	expectedCommands := []string{"check", "describe", "rules", "cache", "lsp", "version"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestCheckCommand(t *testing.T) {
	root := clitestutil.SetupTestProject(t)
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{
		"--config", filepath.Join(root, "xmlviewls.yaml"),
		"check", "-f", "text",
		filepath.Join(root, "webapp", "view", "Hint.fragment.xml"),
	})

	if err := cmd.Execute(); err != nil {
		t.Errorf("check command error = %v, output: %s", err, buf.String())
	}
	if !strings.Contains(buf.String(), "No issues found in 1 files") {
		t.Errorf("check output should report a clean file, got: %s", buf.String())
	}
}
