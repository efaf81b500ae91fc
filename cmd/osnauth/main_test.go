package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func executeSplit(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCmd()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestDataOutputGoesToStdout(t *testing.T) {
	stdout, stderr, err := executeSplit(t, "hash-password", "--cost", "4", "s3cret")
	require.NoError(t, err)
	hash := strings.TrimSpace(stdout)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
	assert.NotContains(t, stderr, hash)

	stdout, stderr, err = executeSplit(t, "--signing-key", "cli-secret", "token", "issue", "--id", "7", "--role", "coach")
	require.NoError(t, err)
	token := strings.TrimSpace(stdout)
	assert.Equal(t, 2, strings.Count(token, "."))
	assert.NotContains(t, stderr, token)

	stdout, _, err = executeSplit(t, "--signing-key", "cli-secret", "token", "verify", token)
	require.NoError(t, err)
	assert.Contains(t, stdout, "coach")
}

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	output, err := execute(t, "--help")
	require.NoError(t, err)

	for _, sub := range []string{"serve", "migrate", "hash-password", "token"} {
		assert.Contains(t, output, sub, "Help missing %q command", sub)
	}
}

func TestRootCommand_VersionFlag(t *testing.T) {
	cmd := NewRootCmd()
	cmd.Version = "test-version"
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "test-version")
}

func TestHashPassword(t *testing.T) {
	output, err := execute(t, "hash-password", "--cost", "4", "s3cret")
	require.NoError(t, err)

	hash := strings.TrimSpace(output)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 4, cost)
}

func TestHashPassword_Stdin(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetIn(strings.NewReader("from-stdin\n"))
	cmd.SetArgs([]string{"hash-password", "--cost", "4"})

	require.NoError(t, cmd.Execute())
	hash := strings.TrimSpace(buf.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("from-stdin")))
}

func TestToken_IssueAndVerify(t *testing.T) {
	output, err := execute(t, "--signing-key", "cli-secret", "token", "issue",
		"--id", "7", "--name", "Ana", "--email", "ana@example.com", "--role", "coach")
	require.NoError(t, err)

	token := strings.TrimSpace(output)
	require.NotEmpty(t, token)
	assert.Equal(t, 2, strings.Count(token, "."))

	output, err = execute(t, "--signing-key", "cli-secret", "token", "verify", token)
	require.NoError(t, err)
	assert.Contains(t, output, "ana@example.com")
	assert.Contains(t, output, "coach")

	_, err = execute(t, "--signing-key", "other-secret", "token", "verify", token)
	assert.Error(t, err)
}

func TestToken_IssueRejectsUnknownRole(t *testing.T) {
	_, err := execute(t, "--signing-key", "cli-secret", "token", "issue", "--id", "1", "--role", "referee")
	assert.Error(t, err)
}

func TestToken_RequiresSigningKey(t *testing.T) {
	_, err := execute(t, "token", "issue", "--id", "1")
	assert.Error(t, err)
}

func TestMigrate_SQLite(t *testing.T) {
	t.Setenv("OSN_STORE_DSN", "file:"+filepath.Join(t.TempDir(), "osnauth.db"))

	output, err := execute(t, "--signing-key", "cli-secret", "migrate")
	require.NoError(t, err)
	assert.Contains(t, output, "Schema is up to date.")
}
