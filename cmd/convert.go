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
	"sort"

	"github.com/spf13/cobra"
)

func newConvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert COMMANDS...",
		Short: "Re-express commands in every compatible protocol",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runConvert,
	}

	cmd.Flags().Float64P("tolerance", "t", -1, "relative tolerance for matching (default from config)")
	cmd.Flags().StringSliceP("protocols", "p", nil, "restrict conversion to these protocols")
	cmd.Flags().BoolP("verbose", "v", false, "include tolerance and unique match details")

	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, reg, err := setup(cmd)
	if err != nil {
		return err
	}

	tolerance, err := cmd.Flags().GetFloat64("tolerance")
	if err != nil {
		return err
	}
	if tolerance < 0 {
		tolerance = cfg.Tolerance
	}
	protocols, err := cmd.Flags().GetStringSlice("protocols")
	if err != nil {
		return err
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return err
	}

	for _, command := range args {
		matches, err := reg.Convert(command, tolerance, protocols)
		if err != nil {
			return err
		}

		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Tolerance < matches[j].Tolerance
		})

		fmt.Println(command)
		for _, match := range matches {
			rendered, err := match.Protocol.ToCommand(match.Args)
			if err != nil {
				continue
			}
			if verbose {
				fmt.Printf("  %s (tolerance %.2f%%, unique %t)\n",
					rendered, match.Tolerance*100, match.UniqueMatch)
			} else {
				fmt.Printf("  %s\n", rendered)
			}
		}
	}

	return nil
}
