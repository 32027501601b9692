package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.viam.com/blobcam/logging"
)

const camJSON = `{"width": ${CAM_WIDTH}, "height": 480, "detect_yuv_min": [100, 150, 150], "detect_yuv_max": [255, 200, 200]}`

func TestRead(t *testing.T) {
	logger := logging.NewTestLogger(t)
	t.Setenv("CAM_WIDTH", "640")

	path := filepath.Join(t.TempDir(), "cam.json")
	test.That(t, os.WriteFile(path, []byte(camJSON), 0o600), test.ShouldBeNil)

	cfg, err := Read(path, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Width, test.ShouldEqual, 640)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, path)

	_, err = Read(filepath.Join(t.TempDir(), "missing.json"), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot read config")
}

func TestWatch(t *testing.T) {
	logger := logging.NewTestLogger(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "cam.json")
	write := func(s string) {
		test.That(t, os.WriteFile(path, []byte(s), 0o600), test.ShouldBeNil)
	}
	write(`{"width": 640, "height": 480, "detect_yuv_min": [100, 150, 150], "detect_yuv_max": [255, 200, 200]}`)

	var (
		mu   sync.Mutex
		seen []*Config
	)
	w, err := Watch(context.Background(), path, logger, func(cfg *Config) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, cfg)
	})
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, w.Close(), test.ShouldBeNil)
	}()

	// Other files in the directory and invalid rewrites are ignored.
	test.That(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o600), test.ShouldBeNil)
	write(`{"width": 641}`)
	write(`{"width": 640, "height": 480, "detect_yuv_min": [100, 150, 150], "detect_yuv_max": [255, 190, 200]}`)

	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		mu.Lock()
		defer mu.Unlock()
		test.That(tb, len(seen), test.ShouldBeGreaterThan, 0)
		if len(seen) == 0 {
			return
		}
		test.That(tb, seen[len(seen)-1].DetectYUVMax[1], test.ShouldEqual, uint8(190))
	})

	// Rewriting identical content does not fire again.
	mu.Lock()
	count := len(seen)
	mu.Unlock()
	write(`{"width": 640, "height": 480, "detect_yuv_min": [100, 150, 150], "detect_yuv_max": [255, 190, 200]}`)
	time.Sleep(3 * reloadDelay)
	mu.Lock()
	test.That(t, len(seen), test.ShouldEqual, count)
	mu.Unlock()
}

func TestWatchStopsWithContext(t *testing.T) {
	logger := logging.NewTestLogger(t)
	ctx, cancel := context.WithCancel(context.Background())
	w, err := Watch(ctx, filepath.Join(t.TempDir(), "cam.json"), logger, func(*Config) {})
	test.That(t, err, test.ShouldBeNil)
	cancel()
	test.That(t, w.Close(), test.ShouldBeNil)

	_, err = Watch(context.Background(), filepath.Join(t.TempDir(), "nodir", "cam.json"), logger, func(*Config) {})
	test.That(t, err, test.ShouldNotBeNil)
}
