package config

import (
	"encoding/json"
	"os"
	"time"
)

// Create new config instance with conversion defaults applied.
func NewConfig() *Config {
	return &Config{
		Conversion: ConversionConfig{
			UploadsDir:     "uploads",
			ReservedDirs:   []string{"cache", "tmp", "backups"},
			DeleteOriginal: true,
			Quality: QualityConfig{
				Thumbnail:    95,
				Small:        90,
				Medium:       85,
				Large:        80,
				ThumbnailMax: 150,
			},
		},
		Lease: LeaseConfig{TTL: 300 * time.Second},
		Queue: QueueConfig{
			Name:         "retouch",
			MaxPending:   10,
			EnqueueDelay: 5 * time.Second,
			Concurrency:  1,
		},
	}
}

// Load configuration file in json format
func (c *Config) Read(file string) error {
	data, err := os.ReadFile(file)
	if err == nil {
		_ = json.Unmarshal(data, c)
	}
	return err
}
