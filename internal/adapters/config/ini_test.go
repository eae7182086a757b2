package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_General(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run.conf", `[General]
title = RNA-seq run
project = P-0042
label = rna
steps = align, -count, noreport
poll = 2
ratio = 0.5
zip = yes
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path())

	title, ok := cfg.Get("General", "title")
	assert.True(t, ok)
	assert.Equal(t, "RNA-seq run", title)

	_, ok = cfg.Get("General", "missing")
	assert.False(t, ok)
	_, ok = cfg.Get("Nope", "title")
	assert.False(t, ok)

	assert.Equal(t, "fallback", cfg.GetDefault("General", "missing", "fallback"))
	assert.Equal(t, []string{"align", "-count", "noreport"}, cfg.List("General", "steps"))
	assert.Nil(t, cfg.List("General", "missing"))

	n, err := cfg.Int("General", "poll", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = cfg.Int("General", "missing", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = cfg.Int("General", "title", 0)
	assert.Error(t, err)

	x, err := cfg.Float("General", "ratio", 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, x, 1e-9)

	b, err := cfg.Bool("General", "zip", false)
	require.NoError(t, err)
	assert.True(t, b)

	_, err = cfg.Bool("General", "title", false)
	assert.Error(t, err)
}

func TestLoad_CaseSensitiveKeys(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.conf", "[General]\nstartAt = count\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	v, ok := cfg.Get("General", "startAt")
	assert.True(t, ok)
	assert.Equal(t, "count", v)
	_, ok = cfg.Get("General", "startat")
	assert.False(t, ok)
}

func TestLoad_Include(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "site.conf", "[Cluster]\nhost = login01\n\n[General]\nlabel = site\n")
	path := writeFile(t, dir, "run.conf", `[General]
label = run
title = T

[Include]
site = site.conf
gone = does-not-exist.conf
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "site.conf")}, cfg.Included())
	assert.Equal(t, "site", cfg.GetDefault("General", "label", ""))
	assert.Equal(t, "T", cfg.GetDefault("General", "title", ""))
	assert.Equal(t, "login01", cfg.GetDefault("Cluster", "host", ""))
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.conf"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSection(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.conf", "[Samples]\nA = a.fastq\nB = b.fastq\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"A": "a.fastq", "B": "b.fastq"}, cfg.Section("Samples"))
	assert.Empty(t, cfg.Section("Missing"))
}

func TestEmptyAndSet(t *testing.T) {
	cfg := Empty()
	assert.Equal(t, "", cfg.Path())

	_, ok := cfg.Get("General", "stopAt")
	assert.False(t, ok)

	cfg.Set("General", "stopAt", "count")
	v, ok := cfg.Get("General", "stopAt")
	assert.True(t, ok)
	assert.Equal(t, "count", v)
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ", []string{"a", "b"}},
		{"a,,b,", []string{"a", "b"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.in))
		})
	}
}
