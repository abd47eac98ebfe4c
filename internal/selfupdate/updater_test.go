package selfupdate

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetNameFor(t *testing.T) {
	tests := []struct {
		name    string
		goos    string
		goarch  string
		want    string
		wantErr bool
	}{
		{"darwin amd64", "darwin", "amd64", "mathmaster_Darwin_all.tar.gz", false},
		{"darwin arm64", "darwin", "arm64", "mathmaster_Darwin_all.tar.gz", false},
		{"linux amd64", "linux", "amd64", "mathmaster_Linux_x86_64.tar.gz", false},
		{"linux arm64", "linux", "arm64", "mathmaster_Linux_arm64.tar.gz", false},
		{"linux 386", "linux", "386", "mathmaster_Linux_i386.tar.gz", false},
		{"windows amd64", "windows", "amd64", "mathmaster_Windows_x86_64.zip", false},
		{"windows arm64", "windows", "arm64", "mathmaster_Windows_arm64.zip", false},
		{"unsupported os", "freebsd", "amd64", "", true},
		{"unsupported arch", "linux", "mips", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := assetNameFor(tt.goos, tt.goarch)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseChecksums(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "normal",
			input: "abc123  mathmaster_Darwin_all.tar.gz\ndef456  mathmaster_Linux_x86_64.tar.gz\n",
			want: map[string]string{
				"mathmaster_Darwin_all.tar.gz":   "abc123",
				"mathmaster_Linux_x86_64.tar.gz": "def456",
			},
		},
		{
			name:  "empty",
			input: "",
			want:  map[string]string{},
		},
		{
			name:  "malformed lines skipped",
			input: "abc123  file.tar.gz\nbadline\n  \nfoo  bar  baz\nghi789  other.tar.gz\n",
			want: map[string]string{
				"file.tar.gz":  "abc123",
				"other.tar.gz": "ghi789",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseChecksums([]byte(tt.input))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerifyChecksum(t *testing.T) {
	data := []byte("hello world")
	h := sha256.Sum256(data)
	correctHex := hex.EncodeToString(h[:])

	t.Run("match", func(t *testing.T) {
		assert.NoError(t, verifyChecksum(data, correctHex))
	})

	t.Run("mismatch", func(t *testing.T) {
		err := verifyChecksum(data, "0000000000000000000000000000000000000000000000000000000000000000")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrChecksum)
	})
}

func TestExtractBinary(t *testing.T) {
	binaryContent := []byte("#!/bin/sh\necho mathmaster")

	t.Run("tar.gz", func(t *testing.T) {
		archive := buildTarGz(t, "mathmaster", binaryContent)
		got, err := extractBinary(archive, "mathmaster_Darwin_all.tar.gz")
		require.NoError(t, err)
		assert.Equal(t, binaryContent, got)
	})

	t.Run("missing binary", func(t *testing.T) {
		archive := buildTarGz(t, "other-file", binaryContent)
		_, err := extractBinary(archive, "mathmaster_Darwin_all.tar.gz")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestApplyUpdate(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "mathmaster")

	// Create original binary with 0755 permissions.
	require.NoError(t, os.WriteFile(target, []byte("old"), 0755))

	newData := []byte("new-binary-content")
	h := sha256.Sum256(newData)

	require.NoError(t, applyUpdate(newData, target, h[:]))

	// Verify content replaced.
	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, newData, got)

	// Verify permissions preserved.
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

// fakeRelease serves the GitHub API and download endpoints for one repo.
type fakeRelease struct {
	latest string
	files  map[string][]byte // "<tag>/<file>" → body

	mu    sync.Mutex
	paths []string
}

func (f *fakeRelease) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

func (f *fakeRelease) start(t *testing.T) *httptest.Server {
	t.Helper()
	const (
		apiPath      = "/repos/mathmaster/mathmaster/releases/latest"
		downloadPath = "/mathmaster/mathmaster/releases/download/"
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.paths = append(f.paths, r.URL.Path)
		f.mu.Unlock()
		if r.URL.Path == apiPath && f.latest != "" {
			_, _ = fmt.Fprintf(w, `{"tag_name":%q,"html_url":"https://example.com/%s"}`, f.latest, f.latest)
			return
		}
		if body, ok := f.files[strings.TrimPrefix(r.URL.Path, downloadPath)]; ok {
			_, _ = w.Write(body)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)
	return server
}

// publish adds a release archive holding content plus its checksums file.
// A non-empty sum overrides the real digest.
func (f *fakeRelease) publish(t *testing.T, tag string, content []byte, sum string) {
	t.Helper()
	asset, err := assetName()
	require.NoError(t, err)

	archive := buildTarGz(t, binaryName, content)
	if sum == "" {
		h := sha256.Sum256(archive)
		sum = hex.EncodeToString(h[:])
	}
	if f.files == nil {
		f.files = map[string][]byte{}
	}
	f.files[tag+"/"+asset] = archive
	f.files[tag+"/checksums.txt"] = []byte(fmt.Sprintf("%s  %s\n", sum, asset))
}

func oldBinary(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), binaryName)
	require.NoError(t, os.WriteFile(path, []byte("old"), 0755))
	return path
}

func TestUpdate(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("release archives are zip files on windows")
	}
	newBinary := []byte("new-mathmaster-binary")
	zeroSum := strings.Repeat("0", 64)

	tests := []struct {
		name       string
		current    string
		target     string
		setup      func(t *testing.T, f *fakeRelease)
		wantErr    error
		wantErrMsg string
		wantStages []string
	}{
		{
			name:    "latest release installed",
			current: "v1.0.0",
			setup: func(t *testing.T, f *fakeRelease) {
				f.latest = "v2.0.0"
				f.publish(t, "v2.0.0", newBinary, "")
			},
			wantStages: []string{"check", "download", "verify", "extract", "apply", "done"},
		},
		{
			name:    "pinned version skips the check",
			current: "v1.5.0",
			target:  "1.4.0",
			setup: func(t *testing.T, f *fakeRelease) {
				f.publish(t, "v1.4.0", newBinary, "")
			},
			wantStages: []string{"download", "verify", "extract", "apply", "done"},
		},
		{
			name:    "already latest",
			current: "v1.0.0",
			setup:   func(t *testing.T, f *fakeRelease) { f.latest = "v1.0.0" },
			wantErr: ErrAlreadyLatest,
		},
		{
			name:    "checksum mismatch",
			current: "v1.0.0",
			setup: func(t *testing.T, f *fakeRelease) {
				f.latest = "v2.0.0"
				f.publish(t, "v2.0.0", newBinary, zeroSum)
			},
			wantErr: ErrChecksum,
		},
		{
			name:       "missing archive",
			current:    "v1.0.0",
			setup:      func(t *testing.T, f *fakeRelease) { f.latest = "v2.0.0" },
			wantErrMsg: "download archive",
		},
		{
			name:    "dev build",
			current: "(devel)",
			setup:   func(*testing.T, *fakeRelease) {},
			wantErr: ErrDevBuild,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			release := &fakeRelease{}
			tt.setup(t, release)
			server := release.start(t)
			execPath := oldBinary(t)

			checker := NewChecker(
				WithBaseURL(server.URL),
				WithDownloadBaseURL(server.URL),
				withExecPath(func() (string, error) { return execPath, nil }),
			)

			var stages []string
			err := checker.Update(context.Background(),
				&UpdateInput{CurrentVersion: tt.current, TargetVersion: tt.target},
				func(p UpdateProgress) { stages = append(stages, p.Stage) })

			got, readErr := os.ReadFile(execPath)
			require.NoError(t, readErr)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, []byte("old"), got, "binary untouched on failure")
			case tt.wantErrMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				assert.Equal(t, []byte("old"), got)
			default:
				require.NoError(t, err)
				assert.Equal(t, newBinary, got)
				assert.Equal(t, tt.wantStages, stages)
			}
			if tt.target != "" {
				assert.NotContains(t, release.requested(), "/repos/mathmaster/mathmaster/releases/latest")
			}
		})
	}
}

// buildTarGz creates a tar.gz archive containing a single file.
func buildTarGz(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: name,
		Size: int64(len(content)),
		Mode: 0755,
	}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func TestCheck(t *testing.T) {
	server := (&fakeRelease{latest: "v1.2.0"}).start(t)

	tests := []struct {
		version string
		want    bool
	}{
		{"v1.0.0", true},
		{"1.1.9", true},
		{"v1.2.0", false},
		{"v1.10.0", false},
		{"(devel)", false},
	}

	checker := NewChecker(WithBaseURL(server.URL))
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			result, err := checker.Check(context.Background(), &CheckInput{Version: tt.version})
			require.NoError(t, err)
			assert.Equal(t, "v1.2.0", result.LatestVersion)
			assert.Equal(t, tt.want, result.UpdateAvailable)
		})
	}
}

func TestCheckRejectsBadTag(t *testing.T) {
	server := (&fakeRelease{latest: "nightly"}).start(t)

	_, err := NewChecker(WithBaseURL(server.URL)).Check(context.Background(), &CheckInput{Version: "v1.0.0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "semantic version")
}
