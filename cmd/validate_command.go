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
	"github.com/spf13/cobra"
)

func newValidateCommandCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-command COMMANDS...",
		Short: "Validate send command strings",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runValidateCommand,
	}
}

func runValidateCommand(cmd *cobra.Command, args []string) error {
	_, reg, err := setup(cmd)
	if err != nil {
		return err
	}

	for _, command := range args {
		if _, err := reg.ParseCommand(command); err != nil {
			return err
		}
	}

	return nil
}
