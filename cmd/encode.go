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

	"github.com/spf13/cobra"
)

func newEncodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "encode COMMANDS...",
		Short: "Encode command strings into raw signals",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runEncode,
	}
}

func runEncode(cmd *cobra.Command, args []string) error {
	_, reg, err := setup(cmd)
	if err != nil {
		return err
	}

	for _, command := range args {
		parsed, err := reg.ParseCommand(command)
		if err != nil {
			return err
		}

		signal, err := parsed.Protocol.Encode(parsed.Args)
		if err != nil {
			return err
		}

		fmt.Println(command)
		fmt.Printf("frequency: %d Hz, bursts: %v\n", signal.Frequency, signal.Bursts)

		// Re-render through the duration codec when available.
		for _, match := range reg.Decode(signal, 0, []string{"duration"}) {
			rendered, err := match.Protocol.ToCommand(match.Args)
			if err != nil {
				continue
			}
			fmt.Println(rendered)
		}
	}

	return nil
}
