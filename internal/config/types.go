package config

import (
	"fmt"
	"time"
)

type Config struct {
	Environment string           `json:"environment"`
	Server      ServerConfig     `json:"server"`
	Conversion  ConversionConfig `json:"conversion"`
	Lease       LeaseConfig      `json:"lease"`
	Queue       QueueConfig      `json:"queue"`
	Database    Database         `json:"database"`
	Redis       RedisConfig      `json:"redis"`
	Sentry      SentryConfig     `json:"sentry"`

	// ExternalScheduler must be set when the host's own cron has been
	// disabled in favor of an externally-triggered one. Together with
	// Environment == "development" it forms the deployment gate: unless
	// one of the two holds, the app refuses to mount triggers or start
	// the worker.
	ExternalScheduler bool `json:"external_scheduler"`
}

type ServerConfig struct {
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

type ConversionConfig struct {
	// Root is the asset root; no conversion ever reads or writes outside it.
	Root string `json:"root"`
	// UploadsDir is the designated upload subtree under Root.
	UploadsDir string `json:"uploads_dir"`
	// ReservedDirs are subtrees under Root that must never be converted.
	ReservedDirs []string `json:"reserved_dirs"`
	// DeleteOriginal controls whether the source file is removed after a
	// successful, validated conversion. Read per deletion decision.
	DeleteOriginal bool          `json:"delete_original"`
	Quality        QualityConfig `json:"quality"`
}

// QualityConfig holds the compression tiers applied by pixel area, with
// Thumbnail taking precedence whenever the smaller dimension is at or
// below ThumbnailMax.
type QualityConfig struct {
	Thumbnail    int `json:"thumbnail"`
	Small        int `json:"small"`
	Medium       int `json:"medium"`
	Large        int `json:"large"`
	ThumbnailMax int `json:"thumbnail_max"`
}

type LeaseConfig struct {
	// TTL bounds how long a crashed job can block its (subject, size) key.
	TTL time.Duration `json:"ttl"`
}

type QueueConfig struct {
	Name string `json:"name"`
	// MaxPending is the admission ceiling across all scheduled run-times.
	MaxPending int `json:"max_pending"`
	// EnqueueDelay keeps freshly registered jobs off the synchronous path.
	EnqueueDelay time.Duration `json:"enqueue_delay"`
	Concurrency  int           `json:"concurrency"`
}

type Database struct {
	DSN string `json:"dsn"`
}

type RedisConfig struct {
	Password            string        `json:"password"`
	DatabaseID          int           `json:"database_id"`
	HealthCheckInterval time.Duration `json:"health_check_interval"`
	DialTimeout         time.Duration `json:"dial_timeout"`
	ReadTimeout         time.Duration `json:"read_timeout"`
	WriteTimeout        time.Duration `json:"write_timeout"`
	PoolSize            int           `json:"pool_size"`
	Nodes               []RedisNode   `json:"nodes"`
}

type RedisNode struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

func (n RedisNode) Addr() string { return fmt.Sprintf("%s:%d", n.Host, n.Port) }

type SentryConfig struct {
	SentryDSN   string `json:"sentry_dsn"`
	Environment string `json:"environment"`
}
