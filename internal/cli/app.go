// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Shared command context: config, stores, and contact resolution.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jeranaias/chatvault/internal/config"
	"github.com/jeranaias/chatvault/internal/contacts"
	"github.com/jeranaias/chatvault/internal/metadata"
	"github.com/jeranaias/chatvault/internal/msgstore"
)

// App bundles the handles every command needs. Built once per invocation
// and closed when the command returns.
type App struct {
	Config   *config.Config
	Store    *msgstore.Store
	Meta     *metadata.Store
	Resolver contacts.Resolver
}

// loadConfig resolves the configuration: the --config flag wins, then the
// default path, then built-in defaults, with environment overrides applied
// last.
func loadConfig(parser *ArgParser) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if path := parser.Flag("config"); path != "" {
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp builds the shared command context. The source database is opened
// read-only from a private snapshot unless a prepared working copy is
// configured.
func newApp(parser *ArgParser) (*App, error) {
	cfg, err := loadConfig(parser)
	if err != nil {
		return nil, err
	}

	var store *msgstore.Store
	if cfg.WorkDBPath != "" {
		store, err = msgstore.Open(cfg.WorkDBPath)
	} else {
		store, err = msgstore.OpenCopy(cfg.DBPath, snapshotDir())
	}
	if err != nil {
		return nil, err
	}

	meta := metadata.Open(cfg.MetadataPath)

	// Contact resolution degrades quietly: saved aliases alone are enough.
	var resolver contacts.Resolver
	if cfg.ContactsDir != "" {
		resolver, err = contacts.Load(cfg.ContactsDir, meta.HandleAliases())
		if err != nil {
			slog.Warn("address book load failed", "dir", cfg.ContactsDir, "error", err)
			resolver = nil
		}
	}
	if resolver == nil {
		resolver = contacts.NewMapResolver(meta.HandleAliases())
	}

	return &App{Config: cfg, Store: store, Meta: meta, Resolver: resolver}, nil
}

// Close releases the message store, removing its snapshot.
func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close()
	}
}

// snapshotDir is where database snapshots are created.
func snapshotDir() string {
	if dir, err := config.ConfigDir(); err == nil {
		if os.MkdirAll(dir, 0755) == nil {
			return dir
		}
	}
	return os.TempDir()
}
