package main

import (
	"context"
	"fmt"
	"os"
	"path"

	"exportgen/config"
	"exportgen/export"
	"exportgen/storage"
	"exportgen/storage/recordfile"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := newLogger(cfg.LogLevel)

	if cfg.Dump != "" {
		err = dump(logger, cfg.Dump)
	} else {
		err = generate(logger, prometheus.NewRegistry(), cfg)
	}

	if err != nil {
		level.Error(logger).Log("msg", "run failed", "err", err)
		os.Exit(1)
	}
}

func newLogger(lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stdout))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	var opt level.Option
	switch lvl {
	case "debug":
		opt = level.AllowDebug()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		opt = level.AllowInfo()
	}

	return level.NewFilter(logger, opt)
}

func newSinkFactory(cfg config.Config) (storage.SinkFactory, string, error) {
	if !cfg.Object.Enabled() {
		return &storage.FileSinkFactory{}, cfg.Output, nil
	}

	client, err := storage.NewMinioClient(cfg.Object)
	if err != nil {
		return nil, "", err
	}

	factory := &storage.ObjectSinkFactory{
		Ctx:    context.Background(),
		Client: client,
		Bucket: cfg.Object.Bucket,
		Prefix: cfg.Object.Prefix,
	}

	return factory, path.Base(cfg.Output), nil
}

func generate(logger log.Logger, registerer prometheus.Registerer, cfg config.Config) error {
	logger = log.With(logger, "run_id", uuid.NewString())

	records, err := export.Generate(config.RecordCount, export.WithObserver(export.LogObserver(logger)))
	if err != nil {
		return err
	}

	factory, name, err := newSinkFactory(cfg)
	if err != nil {
		return err
	}

	sink, err := factory.Create(name)
	if err != nil {
		return err
	}

	n, err := recordfile.Export(logger, registerer, sink, records)
	if err != nil {
		return err
	}

	level.Info(logger).Log("msg", "export written", "target", name, "records", len(records), "bytes", n, "size", humanize.Bytes(uint64(n)))

	return nil
}

func dump(logger log.Logger, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	r := recordfile.NewReader(f, recordfile.WithRoundRobinCheck())

	for r.Next() {
		rec := r.Record()
		level.Info(logger).Log("index", r.Index()-1, "kind", rec.Kind, "record", rec)
	}

	if err := r.Err(); err != nil {
		return err
	}

	level.Info(logger).Log("msg", "dump complete", "file", name, "records", r.Index())

	return nil
}
