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

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ianchi/remoteprotocols/internal/catalogue"
)

func newValidateProtocolCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-protocol FILES...",
		Short: "Validate protocol definition files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runValidateProtocol,
	}
}

func runValidateProtocol(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}
	setupLogger(cfg)

	for _, file := range args {
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		if _, err := catalogue.Parse(file, data); err != nil {
			return err
		}
	}

	fmt.Println("Protocol definitions are OK")
	return nil
}
