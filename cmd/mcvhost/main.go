package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wzshiming/mcvhost"
)

var (
	config   = getenv("MCVHOST_CONFIG", "")
	logLevel = getenv("MCVHOST_LOG_LEVEL", "info")
	metrics  = getenv("MCVHOST_METRICS", "")
	envFile  = ""
	dump     = false
)

func init() {
	flag.StringVar(&config, "c", config, "config file")
	flag.StringVar(&logLevel, "log-level", logLevel, "log level: debug|info|warn|error")
	flag.StringVar(&metrics, "metrics", metrics, "listen address for prometheus metrics")
	flag.StringVar(&envFile, "env", envFile, "dotenv file to load before reading the environment")
	flag.BoolVar(&dump, "dump", dump, "print the parsed config as yaml and exit")
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "mcvhost: load env: %v\n", err)
			return 2
		}
		// Flags given on the command line still win over the file.
		set := map[string]bool{}
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		if !set["c"] {
			config = getenv("MCVHOST_CONFIG", config)
		}
		if !set["log-level"] {
			logLevel = getenv("MCVHOST_LOG_LEVEL", logLevel)
		}
		if !set["metrics"] {
			metrics = getenv("MCVHOST_METRICS", metrics)
		}
	}
	if config == "" {
		fmt.Fprintln(os.Stderr, "usage: mcvhost -c ./mcvhost.conf [-log-level info] [-metrics :9100] [-env ./.env] [-dump]")
		return 2
	}

	logger, err := mcvhost.NewLogger(os.Stderr, logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mcvhost: %v\n", err)
		return 2
	}

	conf, err := mcvhost.ParseFile(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mcvhost: %v\n", err)
		return 1
	}
	logger.Debug("config parsed", slog.String("file", config), slog.Int("lines", conf.Lines), slog.Int("listeners", len(conf.Listeners)))

	if dump {
		data, err := mcvhost.Dump(conf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "mcvhost: %v\n", err)
			return 1
		}
		os.Stdout.Write(data)
		return 0
	}

	if conf.Daemon {
		detached, err := daemonize()
		if err != nil {
			logger.Error("daemonize", slog.Any("err", err))
			return 1
		}
		if detached {
			return 0
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if metrics != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			err := http.ListenAndServe(metrics, mux)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", slog.Any("err", err))
			}
		}()
	}

	server := mcvhost.NewServer(ctx, logger)
	err = mcvhost.Dispatch(ctx, conf, server)
	if err != nil {
		if errors.Is(err, mcvhost.ErrNoListeners) {
			fmt.Fprintln(os.Stderr, "mcvhost: no listeners configured, did you pass the right config file?")
		} else {
			logger.Error("dispatch", slog.Any("err", err))
		}
		stop()
		server.Wait()
		return 1
	}

	err = server.Wait()
	if err != nil {
		logger.Error("run", slog.Any("err", err))
		return 1
	}
	return 0
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
