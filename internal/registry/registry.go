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

// Package registry holds all available protocols and dispatches command
// parsing, encoding, decoding and conversion to them.
package registry

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/sync/errgroup"

	"github.com/ianchi/remoteprotocols/internal/catalogue"
	"github.com/ianchi/remoteprotocols/internal/protocol"
	"github.com/ianchi/remoteprotocols/internal/raw"
	"github.com/ianchi/remoteprotocols/internal/validators"
)

var (
	// ErrMissingProtocol indicates a command string without a protocol name.
	ErrMissingProtocol = errors.New("missing protocol in command")
	// ErrUnknownProtocol indicates a command for a protocol not in the registry.
	ErrUnknownProtocol = errors.New("unknown protocol")
	// ErrInvalidCommand wraps any argument error, together with the expected
	// signature.
	ErrInvalidCommand = errors.New("invalid command")
)

// Registry stores all available protocols. Lookups and decodes are safe for
// concurrent use; registration normally happens once at startup.
type Registry struct {
	protocols *xsync.Map[string, protocol.Protocol]
}

// Option configures the registry construction.
type Option func(*options)

type options struct {
	withoutBuiltin  bool
	broadlinkStrict bool
}

// WithoutBuiltin skips loading the embedded catalogue and the raw formats.
func WithoutBuiltin() Option {
	return func(o *options) { o.withoutBuiltin = true }
}

// WithStrictBroadlink makes the broadlink codec reject payloads with an
// inconsistent declared length instead of just logging them.
func WithStrictBroadlink() Option {
	return func(o *options) { o.broadlinkStrict = true }
}

// New creates a registry pre-loaded with the embedded catalogue and the four
// raw formats, unless configured otherwise.
func New(opts ...Option) (*Registry, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{protocols: xsync.NewMap[string, protocol.Protocol]()}
	if o.withoutBuiltin {
		return r, nil
	}

	codecs, err := catalogue.Builtin()
	if err != nil {
		return nil, err
	}
	for _, c := range codecs {
		r.Add(c)
	}

	r.Add(raw.Duration{})
	r.Add(raw.Pronto{})
	r.Add(raw.Broadlink{StrictLength: o.broadlinkStrict})
	r.Add(raw.Miio{})

	return r, nil
}

// Add registers a single protocol, replacing any previous one with the same name.
func (r *Registry) Add(p protocol.Protocol) {
	r.protocols.Store(p.Info().Name, p)
}

// Load reads a protocol definition file and adds its protocols.
func (r *Registry) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading protocol file: %w", err)
	}

	codecs, err := catalogue.Parse(path, data)
	if err != nil {
		return err
	}
	for _, c := range codecs {
		r.Add(c)
	}
	return nil
}

// Get returns a protocol by name.
func (r *Registry) Get(name string) (protocol.Protocol, bool) {
	return r.protocols.Load(name)
}

// List returns all protocol names in alphabetical order.
func (r *Registry) List() []string {
	var names []string
	r.protocols.Range(func(name string, _ protocol.Protocol) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// ParseCommand parses and validates a command string. The protocol name and
// each argument are split by ':', honouring single and double quoting.
func (r *Registry) ParseCommand(command string) (*protocol.Command, error) {
	parts := validators.QuotedSplit(command, ':')
	if len(parts) == 0 || parts[0] == "" {
		return nil, ErrMissingProtocol
	}

	name := strings.ToLower(parts[0])
	proto, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownProtocol, name)
	}

	args, err := proto.ParseArgs(parts[1:])
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w\nexpected '%s'",
			ErrInvalidCommand, command, err, protocol.Signature(proto))
	}

	return &protocol.Command{
		Raw:      command,
		Name:     name,
		Args:     args,
		Protocol: proto,
	}, nil
}

// Decode matches a signal against all protocols, or against the filtered
// subset, and concatenates the matches ordered by protocol name. Decoding is
// pure, so the fan-out runs protocols in parallel.
func (r *Registry) Decode(signal protocol.SignalData, tolerance float64, filter []string) []protocol.DecodeMatch {
	names := r.List()
	if len(filter) > 0 {
		allowed := make(map[string]struct{}, len(filter))
		for _, f := range filter {
			allowed[strings.ToLower(f)] = struct{}{}
		}
		kept := names[:0]
		for _, name := range names {
			if _, ok := allowed[name]; ok {
				kept = append(kept, name)
			}
		}
		names = kept
	}

	results := make([][]protocol.DecodeMatch, len(names))

	var group errgroup.Group
	group.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		proto, ok := r.Get(name)
		if !ok {
			continue
		}
		group.Go(func() error {
			results[i] = proto.Decode(signal, tolerance)
			return nil
		})
	}
	_ = group.Wait()

	var matches []protocol.DecodeMatch
	for _, result := range results {
		matches = append(matches, result...)
	}
	return matches
}

// Convert re-expresses a command in every compatible protocol: it parses the
// command, encodes it and decodes the resulting signal across the protocol
// set.
func (r *Registry) Convert(command string, tolerance float64, filter []string) ([]protocol.DecodeMatch, error) {
	cmd, err := r.ParseCommand(command)
	if err != nil {
		return nil, err
	}

	signal, err := cmd.Protocol.Encode(cmd.Args)
	if err != nil {
		return nil, err
	}

	return r.Decode(signal, tolerance, filter), nil
}
