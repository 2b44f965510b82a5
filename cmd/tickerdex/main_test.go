package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const sampleCSV = `ticker,company,exchange,currency,country,type
AAPL,Apple Inc.,NASDAQ,usd,us,Common Stock
APPL,Appleton Holdings,NYSE,usd,us,Common Stock
MSFT,Microsoft Corporation,NASDAQ,usd,us,Common Stock
BAAPL,Baapl Systems,NYSE,usd,us,Common Stock
VOD,Vodafone Group,LSE,gbp,gb,Common Stock
,Nameless Holdings,LSE,gbp,gb,Common Stock
`

// run executes the CLI and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"tickerdex"}, args...))
	return stdout.String(), err
}

func findFlag[T cli.Flag](t *testing.T, cmd *cli.Command, name string) T {
	t.Helper()
	for _, flag := range cmd.Flags {
		if f, ok := flag.(T); ok {
			for _, n := range flag.Names() {
				if n == name {
					return f
				}
			}
		}
	}
	var zero T
	t.Fatalf("flag %s not found on %s", name, cmd.Name)
	return zero
}

func command(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %s not found", name)
	return nil
}

func TestIngestCommandFlags(t *testing.T) {
	ingest := command(t, newApp(), "ingest")

	t.Run("batch-size has default value", func(t *testing.T) {
		assert.Equal(t, 500, findFlag[*cli.IntFlag](t, ingest, "batch-size").Value)
	})

	t.Run("max-retries has default value of 3", func(t *testing.T) {
		assert.Equal(t, 3, findFlag[*cli.IntFlag](t, ingest, "max-retries").Value)
	})

	t.Run("resume defaults to off", func(t *testing.T) {
		assert.False(t, findFlag[*cli.BoolFlag](t, ingest, "resume").Value)
	})

	t.Run("no EnvVars", func(t *testing.T) {
		for _, flag := range ingest.Flags {
			if f, ok := flag.(*cli.IntFlag); ok {
				assert.Empty(t, f.EnvVars, f.Name)
			}
		}
	})
}

func TestSearchCommandFlags(t *testing.T) {
	app := newApp()
	for _, name := range []string{"search", "advanced"} {
		cmd := command(t, app, name)
		limit := findFlag[*cli.IntFlag](t, cmd, "limit")
		assert.Zero(t, limit.Value, name)
		assert.Contains(t, limit.Aliases, "n")
		findFlag[*cli.BoolFlag](t, cmd, "json")
		findFlag[*cli.BoolFlag](t, cmd, "explain")
	}
}

func TestCommandValidation(t *testing.T) {
	dbDir := t.TempDir()

	t.Run("invalid log level", func(t *testing.T) {
		_, err := run(t, "--log-level", "loud", "--db", dbDir, "status")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("database location required", func(t *testing.T) {
		_, err := run(t, "status")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database path is required")
	})

	t.Run("ingest needs a file", func(t *testing.T) {
		_, err := run(t, "--db", dbDir, "ingest")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly one CSV file")
	})

	t.Run("ingest rejects non-positive batch size", func(t *testing.T) {
		_, err := run(t, "--db", dbDir, "ingest", "--batch-size", "0", "missing.csv")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch-size must be greater than 0")
	})

	t.Run("unknown reference kind", func(t *testing.T) {
		_, err := run(t, "--db", dbDir, "reference", "planets")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown reference kind")
	})

	t.Run("blank query", func(t *testing.T) {
		_, err := run(t, "--db", dbDir, "search", "  ")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query")
	})

	t.Run("advanced without criteria", func(t *testing.T) {
		_, err := run(t, "--db", dbDir, "advanced")
		assert.Error(t, err)
	})

	t.Run("limit out of range", func(t *testing.T) {
		_, err := run(t, "--db", dbDir, "search", "-n", "51", "AAPL")
		assert.Error(t, err)
	})
}

func TestEndToEnd(t *testing.T) {
	dir := t.TempDir()
	dbDir := filepath.Join(dir, "db")
	csvPath := filepath.Join(dir, "listings.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o600))

	out, err := run(t, "--db", dbDir, "ingest", "--batch-size", "2", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "5 accepted")
	assert.Contains(t, out, "1 rejected")

	t.Run("search", func(t *testing.T) {
		out, err := run(t, "--db", dbDir, "search", "--json", "--explain", "aapl")
		require.NoError(t, err)

		var results []securityView
		require.NoError(t, json.Unmarshal([]byte(out), &results))
		require.Len(t, results, 2)
		assert.Equal(t, "AAPL", results[0].Symbol)
		assert.Equal(t, "BAAPL", results[1].Symbol)
		assert.Contains(t, results[0].Matched, "1:symbol/exact")
		assert.NotContains(t, results[1].Matched, "1:symbol/exact")
	})

	t.Run("search text output", func(t *testing.T) {
		out, err := run(t, "--db", dbDir, "search", "microsoft")
		require.NoError(t, err)
		assert.Contains(t, out, "MSFT")
		assert.Contains(t, out, "SYMBOL")

		out, err = run(t, "--db", dbDir, "search", "zzz")
		require.NoError(t, err)
		assert.Contains(t, out, "No matches")
	})

	t.Run("advanced", func(t *testing.T) {
		out, err := run(t, "--db", dbDir, "advanced", "--json", "--exchange", "lse")
		require.NoError(t, err)

		var results []securityView
		require.NoError(t, json.Unmarshal([]byte(out), &results))
		require.Len(t, results, 1)
		assert.Equal(t, "VOD", results[0].Symbol)
	})

	t.Run("reference", func(t *testing.T) {
		out, err := run(t, "--db", dbDir, "reference", "--json", "currency")
		require.NoError(t, err)

		var refs []referenceView
		require.NoError(t, json.Unmarshal([]byte(out), &refs))
		require.Len(t, refs, 2)
		assert.Equal(t, "GBP", refs[0].Code)
		assert.Equal(t, "USD", refs[1].Code)

		out, err = run(t, "--db", dbDir, "reference", "exchange", "lse")
		require.NoError(t, err)
		assert.Contains(t, out, "LSE")
		assert.Contains(t, out, "GB")

		_, err = run(t, "--db", dbDir, "reference", "currency", "JPY")
		assert.Error(t, err)
	})

	t.Run("status", func(t *testing.T) {
		out, err := run(t, "--db", dbDir, "status", "--json", "--source", csvPath)
		require.NoError(t, err)

		var status struct {
			Securities int             `json:"securities"`
			References map[string]int  `json:"references"`
			Checkpoint *checkpointView `json:"checkpoint"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &status))
		assert.Equal(t, 5, status.Securities)
		assert.Equal(t, 3, status.References["exchange"])
		require.NotNil(t, status.Checkpoint)
		assert.True(t, status.Checkpoint.Completed)
		assert.EqualValues(t, 6, status.Checkpoint.Rows)
		assert.EqualValues(t, 1, status.Checkpoint.Rejected)
	})

	t.Run("reindex", func(t *testing.T) {
		out, err := run(t, "--db", dbDir, "reindex", "--batch-size", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "Reindexed 5 securities in 3 batches")
	})

	t.Run("resume skips committed rows", func(t *testing.T) {
		out, err := run(t, "--db", dbDir, "ingest", "--resume", csvPath)
		require.NoError(t, err)
		assert.Contains(t, out, "6 skipped")
	})
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tickerdex.yaml")
	cfg := "database:\n  path: " + filepath.Join(dir, "db") + "\nsearch:\n  default_limit: 1\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	csvPath := filepath.Join(dir, "listings.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o600))

	_, err := run(t, "--config", cfgPath, "ingest", csvPath)
	require.NoError(t, err)

	out, err := run(t, "--config", cfgPath, "search", "--json", "aapl")
	require.NoError(t, err)
	var results []securityView
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "AAPL", results[0].Symbol)

	_, err = run(t, "--config", filepath.Join(dir, "missing.yaml"), "status")
	assert.Error(t, err)
}
