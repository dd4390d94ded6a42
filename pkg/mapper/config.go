// pkg/mapper/config.go

package mapper

import (
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config for file mappers.
type Config struct {
	ChunkSize      int64         `yaml:"chunk-size"`     // bytes per chunk
	MaxLineWidth   int64         `yaml:"max-line-width"` // back-off before a chunk's nominal start
	CacheChunks    int           `yaml:"cache-chunks"`   // non-active chunks kept mapped
	IdleClose      time.Duration `yaml:"idle-close"`
	ProbeDelay     time.Duration `yaml:"probe-delay"`
	ProbeInterval  time.Duration `yaml:"probe-interval"`
	ProbeBatch     int           `yaml:"probe-batch"`
	ProbeRate      int64         `yaml:"probe-rate"` // bytes per second, 0 for unlimited
	ClipboardLimit int64         `yaml:"clipboard-limit"`
	MaxLines       int64         `yaml:"max-lines"`
}

func DefaultConfig() *Config {
	return &Config{
		ChunkSize:      1 << 20,
		MaxLineWidth:   1024,
		CacheChunks:    2,
		IdleClose:      150 * time.Millisecond,
		ProbeDelay:     50 * time.Millisecond,
		ProbeInterval:  20 * time.Millisecond,
		ProbeBatch:     4,
		ClipboardLimit: 5 << 20,
		MaxLines:       math.MaxInt32,
	}
}

// Check replaces unusable values by their defaults.
func (c *Config) Check() {
	def := DefaultConfig()
	if c.ChunkSize <= 0 {
		logger.Warnf("chunk size %d is invalid, use %d", c.ChunkSize, def.ChunkSize)
		c.ChunkSize = def.ChunkSize
	}
	if c.MaxLineWidth < 0 {
		c.MaxLineWidth = 0
	}
	if c.CacheChunks < 1 {
		c.CacheChunks = 1
	}
	if c.ProbeBatch <= 0 {
		c.ProbeBatch = def.ProbeBatch
	}
	if c.ProbeRate < 0 {
		c.ProbeRate = 0
	}
	if c.ClipboardLimit <= 0 {
		c.ClipboardLimit = def.ClipboardLimit
	}
	if c.MaxLines <= 0 {
		c.MaxLines = def.MaxLines
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (*Config, error) {
	conf := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if err = yaml.Unmarshal(data, conf); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	conf.Check()
	return conf, nil
}
