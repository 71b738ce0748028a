package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/parle/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	cases := []struct {
		in   string
		want Location
	}{
		{"data/in.bin", Location{Path: "data/in.bin"}},
		{"s3://bucket/a/b.rle", Location{Bucket: "bucket", Key: "a/b.rle"}},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseLocation(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
			assert.Equal(t, c.in, got.String())
		})
	}

	for _, bad := range []string{"", "s3://bucket", "s3:///key"} {
		_, err := ParseLocation(bad)
		assert.Error(t, err, bad)
	}
}

func TestOutputNames(t *testing.T) {
	assert.Equal(t, "a.txt.rle", CompressedName("a.txt"))
	assert.Equal(t, "a.txt", DecompressedName("a.txt.rle"))
	assert.Equal(t, "a.bin.out", DecompressedName("a.bin"))
	assert.Equal(t, "dir/.rle.out", DecompressedName("dir/.rle"))
}

func TestStoreLocalReadWrite(t *testing.T) {
	s := NewStore(config.DefaultConfig().S3)
	path := filepath.Join(t.TempDir(), "nested", "out.rle")

	require.NoError(t, s.Write(context.Background(), path, []byte{'C', 'a', 4}))

	got, err := s.Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []byte{'C', 'a', 4}, got)
}

func TestStoreReadMissing(t *testing.T) {
	_, err := NewStore(config.S3Config{}).Read(context.Background(), filepath.Join(t.TempDir(), "nope"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}
