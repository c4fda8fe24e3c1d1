// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Config command implementation for chatvault.
//
// Command: config
//
// Examples:
//   chatvault config            Show effective configuration
//   chatvault config show       Same
//   chatvault config init       Write the default config file
//   chatvault config path       Print the config file path
package cli

import (
	"fmt"

	"github.com/jeranaias/chatvault/internal/config"
	"github.com/jeranaias/chatvault/internal/util"
)

// HandleConfig shows or initializes the configuration file.
func HandleConfig(args []string) error {
	parser := NewArgParser(args)

	switch parser.Positional(0) {
	case "", "show":
		return configShow(parser)
	case "init":
		return configInit()
	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	default:
		return fmt.Errorf("unknown config subcommand: %s (want show, init, or path)", parser.Positional(0))
	}
}

func configShow(parser *ArgParser) error {
	cfg, err := loadConfig(parser)
	if err != nil {
		return err
	}

	fmt.Printf("db_path               = %s\n", cfg.DBPath)
	if cfg.WorkDBPath != "" {
		fmt.Printf("work_db_path          = %s\n", cfg.WorkDBPath)
	}
	if cfg.ContactsDir != "" {
		fmt.Printf("contacts_dir          = %s\n", cfg.ContactsDir)
	}
	fmt.Printf("output_dir            = %s\n", cfg.OutputDir)
	fmt.Printf("metadata_path         = %s\n", cfg.MetadataPath)
	fmt.Printf("workers               = %d\n", cfg.Workers)
	fmt.Printf("helper_timeout_secs   = %d\n", cfg.HelperTimeoutSecs)
	fmt.Printf("timestamped_filenames = %v\n", cfg.TimestampedFilenames)
	fmt.Printf("ocr.bin               = %s\n", orUnset(cfg.OCR.Bin))
	fmt.Printf("transcribe.bin        = %s\n", orUnset(cfg.Transcribe.Bin))
	fmt.Printf("log.level             = %s\n", cfg.Log.Level)
	fmt.Printf("log.format            = %s\n", cfg.Log.Format)
	return nil
}

func configInit() error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if util.FileExists(path) {
		return fmt.Errorf("config already exists: %s", path)
	}
	if err := config.Save(config.Default()); err != nil {
		return err
	}
	fmt.Printf("Wrote default configuration to %s\n", path)
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
