//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/parle/cmd"
	"github.com/jsphweid/parle/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var inputs map[string][]byte

func TestMain(m *testing.M) {
	rng := rand.New(rand.NewSource(42))
	noise := make([]byte, 4096)
	rng.Read(noise)

	var runs bytes.Buffer
	for i := 0; i < 200; i++ {
		runs.Write(bytes.Repeat([]byte{byte(rng.Intn(8))}, 1+rng.Intn(600)))
	}

	inputs = map[string][]byte{
		"empty": {},
		"noise": noise,
		"runs":  runs.Bytes(),
	}

	os.Exit(m.Run())
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := cmd.Root()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute(), out.String())
	return out.String()
}

func TestCLIRoundTripAcrossWorkerCounts(t *testing.T) {
	dir := t.TempDir()
	for name, data := range inputs {
		in := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(in, data, 0644))

		for _, w1 := range []int{1, 2, 7} {
			for _, w2 := range []int{1, 3, 16} {
				t.Run(fmt.Sprintf("%s enc=%d dec=%d", name, w1, w2), func(t *testing.T) {
					packed := fmt.Sprintf("%s.%d.rle", in, w1)
					restored := fmt.Sprintf("%s.%d.%d.out", in, w1, w2)
					run(t, "compress", "--verify", "--workers", fmt.Sprint(w1), in, packed)
					run(t, "decompress", "--workers", fmt.Sprint(w2), packed, restored)

					got, err := os.ReadFile(restored)
					require.NoError(t, err)
					assert.True(t, bytes.Equal(data, got))
				})
			}
		}
	}
}

func TestHTTPRoundTrip(t *testing.T) {
	c := config.DefaultConfig()
	c.Workers = 4
	srv := httptest.NewServer(cmd.NewServer(c).Handler())
	defer srv.Close()

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/compress", "application/octet-stream", bytes.NewReader(data))
			require.NoError(t, err)
			packed, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			resp, err = http.Post(srv.URL+"/decompress", "application/octet-stream", bytes.NewReader(packed))
			require.NoError(t, err)
			raw, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.True(t, bytes.Equal(data, raw))
		})
	}
}
