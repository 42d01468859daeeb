package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tckz/view-counter/internal/config"
	"github.com/tckz/view-counter/internal/counter"
	"github.com/tckz/view-counter/internal/log"
)

var (
	myName  = filepath.Base(os.Args[0])
	logger  *zap.SugaredLogger
	version string
)

var (
	optHumanize = flag.Bool("humanize", false, "Print the count with thousands separators")
	optTimeout  = flag.Duration("timeout", 10*time.Second, "Timeout of the store read")
)

func init() {
	godotenv.Load()
}

func main() {
	cfg := config.FromEnv()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	logger = log.Must(log.NewLogger(log.WithLogLevel(cfg.LogLevel), log.WithEncoding(cfg.LogEncoding))).Sugar().With(zap.String("app", myName))
	logger.Debugf("ver=%s, args=%s", version, os.Args)

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("*** Validate: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *optTimeout)
	defer cancel()

	cnt, err := counter.New(ctx, cfg)
	if err != nil {
		logger.Fatalf("*** counter.New: %v", err)
	}
	defer cnt.Close()

	if err := printCount(ctx, cnt, os.Stdout, *optHumanize); err != nil {
		logger.Fatalf("*** Get: %v", err)
	}
}

func printCount(ctx context.Context, c counter.Counter, w io.Writer, human bool) error {
	n, err := c.Get(ctx)
	if err != nil {
		return err
	}

	if human {
		_, err = fmt.Fprintln(w, humanize.Comma(n))
	} else {
		_, err = fmt.Fprintln(w, n)
	}
	return err
}
