package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seo-cluster/internal/handler"
	"seo-cluster/pkg/storage"
)

func TestKeywordInput(t *testing.T) {
	notTTY := func() bool { return false }
	tty := func() bool { return true }

	t.Run("flag text", func(t *testing.T) {
		in := keywordInput{text: "Running Shoes, best running shoes\nrunning shoes", stdinTTY: tty}
		kws, err := in.read(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"running shoes", "best running shoes"}, kws)
	})

	t.Run("csv file skips header", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "kw.csv")
		require.NoError(t, os.WriteFile(path, []byte("keyword,volume\nhiking boots,10\ntrail socks,5\n"), 0o644))
		in := keywordInput{file: path, stdinTTY: tty}
		kws, err := in.read(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"hiking boots", "trail socks"}, kws)
	})

	t.Run("text file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "kw.txt")
		require.NoError(t, os.WriteFile(path, []byte("keyword\nhiking boots\n"), 0o644))
		in := keywordInput{file: path, stdinTTY: tty}
		kws, err := in.read(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"keyword", "hiking boots"}, kws)
	})

	t.Run("stdin", func(t *testing.T) {
		in := keywordInput{stdinTTY: notTTY}
		kws, err := in.read(strings.NewReader("a\n\nb\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, kws)
	})

	t.Run("nothing", func(t *testing.T) {
		in := keywordInput{stdinTTY: tty}
		_, err := in.read(nil)
		assert.Error(t, err)
	})
}

func TestClearCacheRequiresYes(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"clear-cache"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

const serpTemplate = `{"status_code":20000,"tasks":[{"id":"t","status_code":20000,"result":[{"items":[%s]}]}]}`

func seedSERP(t *testing.T, dbPath, kw string, urls ...string) {
	t.Helper()
	items := make([]string, len(urls))
	for i, u := range urls {
		items[i] = `{"type":"organic","url":"https://` + u + `"}`
	}
	ctx := context.Background()
	cache, err := storage.NewSQLiteCache(ctx, dbPath)
	require.NoError(t, err)
	defer cache.Close()

	key := storage.DefaultKeyBuilder().Key(storage.KindSERP, kw, storage.Scope{LocationCode: 2840, LanguageCode: "en", Device: "desktop"})
	body := strings.Replace(serpTemplate, "%s", strings.Join(items, ","), 1)
	require.NoError(t, cache.Set(ctx, key, []byte(body)))
}

func writeCLIConfig(t *testing.T) (configPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "cache.db")
	configPath = filepath.Join(dir, "config.yaml")
	cfg := "storage:\n  driver: sqlite\n  path: " + dbPath + "\nlogger:\n  level: error\n"
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o644))
	return configPath, dbPath
}

func TestClusterCommand(t *testing.T) {
	configPath, dbPath := writeCLIConfig(t)
	seedSERP(t, dbPath, "running shoes", "u1", "u2", "u3", "u4")
	seedSERP(t, dbPath, "best running shoes", "u1", "u2", "u3", "u9")
	seedSERP(t, dbPath, "hiking boots", "h1", "h2", "h3", "h4")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"cluster", "--config", configPath, "--format", "csv",
		"--keywords", "running shoes,best running shoes,hiking boots"})
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Cluster,Keyword,Intersections,Volume,CPC,KD,Search Intent", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "running shoes,running shoes,"))
	assert.True(t, strings.HasPrefix(lines[4], "hiking boots,hiking boots,"))
}

func TestClusterCommand_MissingData(t *testing.T) {
	configPath, dbPath := writeCLIConfig(t)
	seedSERP(t, dbPath, "running shoes", "u1", "u2", "u3")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"cluster", "--config", configPath, "--keywords", "running shoes,trail socks"})
	err := cmd.Execute()
	assert.ErrorIs(t, err, handler.ErrMissingData)
}

func TestInspectAndClearCommands(t *testing.T) {
	configPath, dbPath := writeCLIConfig(t)
	seedSERP(t, dbPath, "running shoes", "u1")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"inspect", "--config", configPath, "serp|running shoes|2840|en|desktop"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "https://u1")

	out.Reset()
	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"clear-cache", "--config", configPath, "--yes"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Removed 1 cached responses\n", out.String())
}
