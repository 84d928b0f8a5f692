package config

import (
	"flag"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// RecordCount is the number of records written by every run.
const RecordCount = 100

const DefaultOutput = "data"

const envPrefix = "EXPORTGEN_"

var (
	ErrMissingBucket   = errors.New("object target requires a bucket")
	ErrMissingEndpoint = errors.New("object target requires an endpoint")
	ErrInvalidLevel    = errors.New("invalid log level")
)

type Config struct {
	Output   string
	Dump     string
	LogLevel string
	Object   Object
}

// Object describes an S3 compatible destination. It is enabled when Bucket
// is set.
type Object struct {
	Endpoint  string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	Secure    bool
}

func (o Object) Enabled() bool {
	return o.Bucket != "" || o.Endpoint != ""
}

// Load parses args; every flag falls back to its EXPORTGEN_* variable.
func Load(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("exportgen", flag.ContinueOnError)

	fs.StringVar(&cfg.Output, "output", env("OUTPUT", DefaultOutput), "Output file path, or object name when a bucket is set")
	fs.StringVar(&cfg.Dump, "dump", env("DUMP", ""), "Decode the given export file instead of generating one")
	fs.StringVar(&cfg.LogLevel, "log.level", env("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.Object.Endpoint, "s3.endpoint", env("S3_ENDPOINT", ""), "S3 compatible endpoint")
	fs.StringVar(&cfg.Object.Bucket, "s3.bucket", env("S3_BUCKET", ""), "Destination bucket")
	fs.StringVar(&cfg.Object.Prefix, "s3.prefix", env("S3_PREFIX", ""), "Key prefix inside the bucket")
	fs.StringVar(&cfg.Object.AccessKey, "s3.access-key", env("S3_ACCESS_KEY", ""), "Access key id")
	fs.StringVar(&cfg.Object.SecretKey, "s3.secret-key", env("S3_SECRET_KEY", ""), "Secret access key")
	fs.BoolVar(&cfg.Object.Secure, "s3.secure", envBool("S3_SECURE", true), "Use TLS for the S3 endpoint")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.Wrapf(ErrInvalidLevel, "%q", c.LogLevel)
	}

	if !c.Object.Enabled() {
		return nil
	}

	if c.Object.Bucket == "" {
		return ErrMissingBucket
	}
	if c.Object.Endpoint == "" {
		return ErrMissingEndpoint
	}

	return nil
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return def
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
