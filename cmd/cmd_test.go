package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/jambcoach/internal/httpapi"
)

const cliSecret = "cli-test-secret-with-enough-bytes-1234"

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestCLI(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "cli.db")
	t.Setenv("JAMBCOACH_JWT_SECRET", cliSecret)
	t.Setenv("JAMBCOACH_LOG_LEVEL", "error")

	seed := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(seed, []byte(`[
	  {"subject": "Physics", "delivered_at": "2026-04-01T06:00:00+01:00", "questions": [
	    {"topic": "Motion", "question_text": "Unit of force?", "option_a": "Joule", "option_b": "Newton",
	     "option_c": "Watt", "option_d": "Pascal", "correct_answer": "B", "explanation": "Newton.", "difficulty": 1}]},
	  {"subject": "Physics", "delivered_at": "2026-04-04T06:00:00+01:00", "questions": [
	    {"topic": "Heat", "question_text": "Unit of heat?", "option_a": "Joule", "option_b": "Newton",
	     "option_c": "Watt", "option_d": "Pascal", "correct_answer": "A", "explanation": "Joule.", "difficulty": 1}]}
	]`), 0o600))

	out := run(t, "seed", seed, "--db", db)
	assert.Contains(t, out, "2026-04-01")
	assert.Contains(t, out, "2026-04-04")

	out = run(t, "sets", "--user", "u1", "--subject", "physics", "--db", db)
	assert.Contains(t, out, "Physics: free")
	assert.Contains(t, out, "free_first_set *")
	assert.Contains(t, out, "subscription_required")

	out = run(t, "subscription", "set", "--user", "u1", "--status", "active", "--db", db)
	assert.Contains(t, out, "Recorded active subscription")
	out = run(t, "subscription", "show", "--user", "u1", "--db", db)
	assert.Contains(t, out, "active")

	out = run(t, "sets", "--user", "u1", "--subject", "", "--db", db)
	assert.Contains(t, out, "premium")

	out = run(t, "progress", "--user", "u1", "--subject", "Physics", "--db", db)
	assert.Contains(t, out, "Physics")
	assert.Contains(t, out, "never")

	tok := strings.TrimSpace(run(t, "token", "--user", "u1", "--ttl", "1m"))
	sub, err := httpapi.NewTokens(cliSecret, "", time.Minute).Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", sub)

	assert.Contains(t, run(t, "version"), "jambcoach")
}

func TestCLI_RequiresUser(t *testing.T) {
	t.Setenv("JAMBCOACH_LOG_LEVEL", "error")
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"sets", "--user", "", "--db", filepath.Join(t.TempDir(), "x.db")})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--user is required")
}
