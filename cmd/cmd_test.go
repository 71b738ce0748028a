package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jsphweid/parle/config"
	"github.com/jsphweid/parle/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCompressDecompressCommands(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "runs.bin")
	data := append(bytes.Repeat([]byte{'A'}, 600), bytes.Repeat([]byte{'B'}, 10)...)
	require.NoError(t, os.WriteFile(in, data, 0644))

	out, err := execute(t, "", "compress", "--workers", "3", "--verify", in)
	require.NoError(t, err)
	assert.Contains(t, out, "Original size: 610")
	assert.Contains(t, out, "Verified digest")

	packed, err := os.ReadFile(in + ".rle")
	require.NoError(t, err)
	assert.Equal(t, byte('C'), packed[0])

	restored := filepath.Join(dir, "restored.bin")
	out, err = execute(t, "", "decompress", "--workers", "5", in+".rle", restored)
	require.NoError(t, err)
	assert.Contains(t, out, "Data was compressed using RLE.")

	got, err := os.ReadFile(restored)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCompressIncompressibleFallsBack(t *testing.T) {
	in := filepath.Join(t.TempDir(), "alt.bin")
	require.NoError(t, os.WriteFile(in, []byte{0, 1, 0, 1, 0, 1, 0, 1}, 0644))

	out, err := execute(t, "", "compress", "--workers", "2", in)
	require.NoError(t, err)
	assert.Contains(t, out, "Compression not effective")

	packed, err := os.ReadFile(in + ".rle")
	require.NoError(t, err)
	assert.Equal(t, []byte{'U', 0, 1, 0, 1, 0, 1, 0, 1}, packed)
}

func TestDecompressRejectsBadHeader(t *testing.T) {
	in := filepath.Join(t.TempDir(), "bad.rle")
	require.NoError(t, os.WriteFile(in, []byte{'Z', 1, 2}, 0644))

	_, err := execute(t, "", "decompress", "--workers", "2", in)
	require.Error(t, err)
	assert.True(t, model.IsFormatError(err))
	_, statErr := os.Stat(filepath.Join(filepath.Dir(in), "bad"))
	assert.True(t, os.IsNotExist(statErr), "no output for a failed decode")
}

func TestCreateThenInspect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")

	out, err := execute(t, "aaaaaaaa\nbbbbbbbb\n\nignored\n", "create", path)
	require.NoError(t, err)
	assert.Contains(t, out, "created")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "aaaaaaaa\nbbbbbbbb\n", string(got))

	_, err = execute(t, "", "compress", "--workers", "1", path)
	require.NoError(t, err)

	out, err = execute(t, "", "inspect", "--digest", path+".rle")
	require.NoError(t, err)
	assert.Contains(t, out, "mode: compressed")
	assert.Contains(t, out, "pairs: 4")
	assert.Contains(t, out, "decoded bytes: 18")
	assert.Contains(t, out, "digest: ")
}

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.rle"), []byte{'C', 'x', 100}, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.rle"), []byte{'U', 1, 2}, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.rle"), []byte{'C', 1}, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.txt"), []byte("hi"), 0644))

	out, err := execute(t, "", "report", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "containers: 3")
	assert.Contains(t, out, "compressed: 1")
	assert.Contains(t, out, "uncompressed: 1")
	assert.Contains(t, out, "invalid: 1")
	assert.Contains(t, out, "decoded bytes: 102")
	assert.Contains(t, out, "smallest container: 3")
}

func TestBatchCommand(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.bin"), bytes.Repeat([]byte{9}, 64), 0644))

	out, err := execute(t, "", "batch", "--workers", "2", "--out-dir", dst, src)
	require.NoError(t, err)
	assert.Contains(t, out, "files: 1, failed: 0")

	packed, err := os.ReadFile(filepath.Join(dst, "a.bin.rle"))
	require.NoError(t, err)
	// runs stop at the chunk boundary
	assert.Equal(t, []byte{'C', 9, 32, 9, 32}, packed)
}

func TestConfigCommandPrintsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parle.yaml")
	require.NoError(t, os.WriteFile(path, []byte("watch:\n  debounce: 3s\n"), 0644))

	out, err := execute(t, "", "config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "debounce: 3s")
	assert.Contains(t, out, ":8080")

	// later tests must not inherit the file
	cfgFile = ""
}

func TestWatchRecompressesOnChange(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "live.txt")
	out := in + ".rle"
	require.NoError(t, os.WriteFile(in, []byte("aaaa"), 0644))

	cfg = config.DefaultConfig()
	cfg.Workers = 1
	cfg.Watch.Debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watch(ctx, io.Discard, in, out) }()

	require.Eventually(t, func() bool {
		got, err := os.ReadFile(out)
		return err == nil && bytes.Equal(got, []byte{'C', 'a', 4})
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(in, []byte("bbbbbbbb"), 0644))
	require.Eventually(t, func() bool {
		got, err := os.ReadFile(out)
		return err == nil && bytes.Equal(got, []byte{'C', 'b', 8})
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchDropsPendingRecompressOnStop(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "live.txt")
	out := in + ".rle"
	require.NoError(t, os.WriteFile(in, []byte("aaaa"), 0644))

	cfg = config.DefaultConfig()
	cfg.Workers = 1
	cfg.Watch.Debounce = 300 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watch(ctx, io.Discard, in, out) }()

	require.Eventually(t, func() bool {
		got, err := os.ReadFile(out)
		return err == nil && bytes.Equal(got, []byte{'C', 'a', 4})
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(in, []byte("bbbbbbbb"), 0644))
	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}

	time.Sleep(500 * time.Millisecond)
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{'C', 'a', 4}, got)
}
