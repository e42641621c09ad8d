package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-formfields/components/choices"
	"github.com/goliatone/go-formfields/internal/backends"
	"github.com/goliatone/go-formfields/pkg/definitions"
	"github.com/goliatone/go-formfields/pkg/registry"
)

// environment is a loaded registry plus the backend it persists to.
type environment struct {
	set      *definitions.Set
	opened   *backends.Opened
	registry *registry.Registry
	choices  *choices.Registry
}

func (e *environment) Close() error {
	return e.opened.Close()
}

func loadDefinitions() (*definitions.Set, error) {
	set, err := definitions.LoadDir(cfg.Definitions)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Sugar().Warnf("definitions directory %s not found, starting empty", cfg.Definitions)
		return &definitions.Set{}, nil
	}
	return set, err
}

func openEnvironment(ctx context.Context) (*environment, error) {
	set, err := loadDefinitions()
	if err != nil {
		return nil, err
	}
	opened, err := backends.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	reg := registry.New(registry.WithBackend(opened.Backend), registry.WithLogger(logger))
	if err := set.Apply(reg); err != nil {
		_ = opened.Close()
		return nil, err
	}
	sources, err := backends.Choices(set.Datasources(), opened.DB)
	if err != nil {
		_ = opened.Close()
		return nil, err
	}
	return &environment{set: set, opened: opened, registry: reg, choices: sources}, nil
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Sugar().Infof("form written to %s", path)
	return nil
}
