// SPDX-License-Identifier: AGPL-3.0-or-later
// remoteprotocols - Encode and decode remote control signals
// Copyright (C) 2023-2026 Adrian Panella
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/ianchi/remoteprotocols>

// Package cmd implements the command line interface: a thin shell over the
// protocol registry.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/USA-RedDragon/configulator"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/ianchi/remoteprotocols/internal/config"
	"github.com/ianchi/remoteprotocols/internal/registry"
)

// NewCommand builds the root command with all subcommands attached.
func NewCommand(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remoteprotocols",
		Short:   "Encode and decode IR/RF remote control signals",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		SilenceErrors:     true,
		SilenceUsage:      true,
		DisableAutoGenTag: true,
	}

	cmd.AddCommand(
		newValidateProtocolCommand(),
		newValidateCommandCommand(),
		newEncodeCommand(),
		newConvertCommand(),
		newListCommand(),
	)

	return cmd
}

// loadConfig loads the configuration from context.
func loadConfig(ctx context.Context) (*config.Config, error) {
	c, err := configulator.FromContext[config.Config](ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get config from context: %w", err)
	}

	cfg, err := c.LoadWithoutValidation()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setupLogger configures the structured logger.
func setupLogger(cfg *config.Config) {
	var logger *slog.Logger
	switch cfg.LogLevel {
	case config.LogLevelDebug:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug}))
	case config.LogLevelInfo:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	case config.LogLevelWarn:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))
	case config.LogLevelError:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelError}))
	default:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	}
	slog.SetDefault(logger)
}

// setup loads the configuration, configures logging and builds the registry
// with the built-in catalogue plus any configured protocol files.
func setup(cmd *cobra.Command) (*config.Config, *registry.Registry, error) {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return nil, nil, err
	}

	setupLogger(cfg)

	var opts []registry.Option
	if cfg.Broadlink.StrictLength {
		opts = append(opts, registry.WithStrictBroadlink())
	}

	reg, err := registry.New(opts...)
	if err != nil {
		return nil, nil, err
	}

	for _, file := range cfg.ProtocolFiles {
		if err := reg.Load(file); err != nil {
			return nil, nil, err
		}
	}

	return cfg, reg, nil
}
