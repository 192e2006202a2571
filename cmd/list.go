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
	"strings"

	"github.com/spf13/cobra"

	"github.com/ianchi/remoteprotocols/internal/protocol"
	"github.com/ianchi/remoteprotocols/internal/registry"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [PROTOCOLS...]",
		Short: "List supported protocols",
		RunE:  runList,
	}

	cmd.Flags().BoolP("verbose", "v", false, "include detailed protocol descriptions")
	cmd.Flags().Bool("markdown", false, "render the list as a markdown table")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	_, reg, err := setup(cmd)
	if err != nil {
		return err
	}

	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return err
	}
	markdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = reg.List()
	}

	if markdown {
		return listMarkdown(reg, names)
	}

	for _, name := range names {
		proto, ok := reg.Get(strings.ToLower(name))
		if !ok {
			return fmt.Errorf("%w %q", registry.ErrUnknownProtocol, name)
		}

		if !verbose {
			fmt.Println(protocol.Signature(proto))
			continue
		}

		info := proto.Info()
		fmt.Println(info.Name)
		fmt.Println(info.Desc)
		if info.Note != "" {
			fmt.Println(info.Note)
		}
		for _, link := range info.Link {
			fmt.Println(link)
		}
		fmt.Println(protocol.Signature(proto))
		for _, arg := range proto.Args() {
			line := fmt.Sprintf("  <%s> %s", arg.Name, arg.Desc)
			if arg.Example != nil {
				line += fmt.Sprintf(" (e.g. %s)", arg.Format(*arg.Example))
			}
			fmt.Println(line)
		}
		fmt.Println()
	}

	return nil
}

func listMarkdown(reg *registry.Registry, names []string) error {
	fmt.Println("| Protocol | Type | Description | Signature |")
	fmt.Println("|---|---|---|---|")

	for _, name := range names {
		proto, ok := reg.Get(strings.ToLower(name))
		if !ok {
			return fmt.Errorf("%w %q", registry.ErrUnknownProtocol, name)
		}
		info := proto.Info()
		fmt.Printf("| %s | %s | %s | `%s` |\n",
			info.Name, info.Type, info.Desc, protocol.Signature(proto))
	}

	return nil
}
