package config

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/samber/lo"
)

const (
	BackendDynamoDB  = "dynamodb"
	BackendDatastore = "datastore"
	BackendRedis     = "redis"
	BackendMemory    = "memory"
)

var Backends = []string{BackendDynamoDB, BackendDatastore, BackendRedis, BackendMemory}

var LogEncodings = []string{"json", "console"}

// Config is shared by the binaries under cmd/.
type Config struct {
	// TableName selects the backing table, kind or key namespace.
	TableName   string
	Backend     string
	Listen      string
	Path        string
	LogLevel    string
	LogEncoding string

	ProjectID       string
	CredentialsFile string

	RedisAddr string

	AWSRegion        string
	DynamoDBEndpoint string
}

// FromEnv reads the environment. Unset variables fall back to defaults.
func FromEnv() Config {
	return Config{
		TableName:        os.Getenv("TABLE_NAME"),
		Backend:          getenv("COUNTER_BACKEND", BackendDynamoDB),
		Listen:           getenv("LISTEN_ADDR", ":8080"),
		Path:             getenv("COUNTER_PATH", "/views"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		LogEncoding:      getenv("LOG_ENCODING", "json"),
		ProjectID:        os.Getenv("PROJECT_ID"),
		CredentialsFile:  os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		AWSRegion:        os.Getenv("AWS_REGION"),
		DynamoDBEndpoint: os.Getenv("DYNAMODB_ENDPOINT"),
	}
}

// RegisterFlags binds flags whose defaults are the values already in c,
// so that parsed flags take precedence over the environment.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.TableName, "table", c.TableName, "name of the backing table/collection")
	fs.StringVar(&c.Backend, "backend", c.Backend, "dynamodb|datastore|redis|memory")
	fs.StringVar(&c.Listen, "listen", c.Listen, "addr:port to listen on")
	fs.StringVar(&c.Path, "path", c.Path, "path of the counter endpoint")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "info|warn|error")
	fs.StringVar(&c.LogEncoding, "log-encoding", c.LogEncoding, "json|console")
	fs.StringVar(&c.RedisAddr, "redis", c.RedisAddr, "addr:port of redis")
}

func (c Config) Validate() error {
	var errs []error
	if c.TableName == "" {
		errs = append(errs, errors.New("table name must be specified"))
	}
	if !lo.Contains(Backends, c.Backend) {
		errs = append(errs, fmt.Errorf("unknown backend: %s", c.Backend))
	}
	if !lo.Contains(LogEncodings, c.LogEncoding) {
		errs = append(errs, fmt.Errorf("unknown log encoding: %s", c.LogEncoding))
	}
	if c.Backend == BackendRedis && c.RedisAddr == "" {
		errs = append(errs, errors.New("redis address must be specified for redis backend"))
	}
	return errors.Join(errs...)
}

func getenv(key, def string) string {
	return lo.Ternary(os.Getenv(key) != "", os.Getenv(key), def)
}
