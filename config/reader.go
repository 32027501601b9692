package config

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"go.viam.com/blobcam/logging"
)

// Read reads a config from the given file. Environment variables referenced as $VAR or ${VAR}
// are expanded first.
func Read(filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config %q", filePath)
	}
	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	cfg := Config{ConfigFilePath: originalPath}
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode Config from json")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(originalPath); err != nil {
		return nil, err
	}
	logger.Debugw("read config",
		"path", originalPath,
		"size", []int{cfg.Width, cfg.Height},
		"thresholds", cfg.Thresholds().String())
	return &cfg, nil
}
