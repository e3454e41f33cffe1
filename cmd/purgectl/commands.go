package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hackclub/s3purge/internal/config"
	"github.com/hackclub/s3purge/internal/purge"
	"github.com/hackclub/s3purge/internal/storage"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.LoadFile(path)
	}
	return config.Load(), nil
}

func newLogger(c *cli.Context) zerolog.Logger {
	level := zerolog.InfoLevel
	if c.Bool("verbose") {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: c.App.ErrWriter}).Level(level).With().Timestamp().Logger()
}

func readRecord(c *cli.Context) (purge.FileRecord, error) {
	var (
		r    io.Reader
		path = c.String("metadata")
	)
	if path == "-" {
		r = c.App.Reader
	} else {
		f, err := os.Open(path)
		if err != nil {
			return purge.FileRecord{}, fmt.Errorf("open metadata: %w", err)
		}
		defer f.Close()
		r = f
	}

	var record purge.FileRecord
	if err := json.NewDecoder(r).Decode(&record); err != nil {
		return purge.FileRecord{}, fmt.Errorf("read metadata %s: %w", path, err)
	}
	return record, nil
}

func newPurger(c *cli.Context, cfg *config.Config, client storage.API) (*purge.Purger, error) {
	return purge.New(purge.Options{
		Bucket:   cfg.S3Bucket,
		Region:   cfg.S3Region,
		BasePath: cfg.S3BasePath,
	}, client, newLogger(c))
}

func runKeys(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	record, err := readRecord(c)
	if err != nil {
		return err
	}

	basePath := cfg.S3BasePath
	if c.IsSet("base-path") {
		basePath = c.String("base-path")
	}

	keys, err := purge.DeriveKeys(record, basePath)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Fprintln(c.App.Writer, k)
	}
	return nil
}

func runPurge(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	record, err := readRecord(c)
	if err != nil {
		return err
	}

	client, err := storage.FromConfig(c.Context, cfg)
	if err != nil {
		return err
	}
	purger, err := newPurger(c, cfg, client)
	if err != nil {
		return err
	}

	out, err := purger.Purge(c.Context, c.String("id"), record)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}

	if !out.OK() {
		return fmt.Errorf("%d of %d keys failed", len(out.Errors), len(out.Keys))
	}
	return nil
}

func runCheck(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	record, err := readRecord(c)
	if err != nil {
		return err
	}

	client, err := storage.FromConfig(c.Context, cfg)
	if err != nil {
		return err
	}
	purger, err := newPurger(c, cfg, client)
	if err != nil {
		return err
	}

	keys, err := purger.Keys(record)
	if err != nil {
		return err
	}

	for _, k := range keys {
		exists, err := storage.ObjectExists(c.Context, client, purger.Bucket(), k)
		if err != nil {
			return err
		}
		state := "absent"
		if exists {
			state = "present"
		}
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", state, k)
	}
	return nil
}
