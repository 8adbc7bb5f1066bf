// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/hashicorp/vault-credentials-resolver/internal/config"
	"github.com/hashicorp/vault-credentials-resolver/internal/resolver"
	"github.com/hashicorp/vault-credentials-resolver/internal/vault"
)

var ErrCredentialNotFound = errors.New("credential not found")

// File is the on-disk layout of a credentials file.
type File struct {
	Credentials []*Credential `yaml:"credentials"`
}

type entry struct {
	credential *Credential
	resolver   *resolver.Resolver
}

// Store holds the configured credentials, each with its own Resolver. All
// resolvers share the same vault.Client and config.Provider.
type Store struct {
	order   []string
	entries map[string]*entry
}

// NewStore validates creds and builds a Resolver for each of them. The opts
// are applied to every resolver before the credential's own options.
func NewStore(creds []*Credential, provider config.Provider, client vault.Client, opts ...resolver.Option) (*Store, error) {
	s := &Store{
		entries: make(map[string]*entry, len(creds)),
	}

	var errs error
	for i, c := range creds {
		if c == nil {
			errs = errors.Join(errs, fmt.Errorf("credential at index %d is empty", i))
			continue
		}

		c.SetDefaults()
		if err := c.Validate(); err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		if _, ok := s.entries[c.ID]; ok {
			errs = errors.Join(errs, fmt.Errorf("duplicate credential ID %q", c.ID))
			continue
		}

		r, err := resolver.New(c.Path, provider, client, slices.Concat(opts, c.ResolverOptions())...)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("invalid credential %q: %w", c.ID, err))
			continue
		}

		s.order = append(s.order, c.ID)
		s.entries[c.ID] = &entry{
			credential: c,
			resolver:   r,
		}
	}

	if errs != nil {
		return nil, errs
	}

	return s, nil
}

// LoadStore reads a credentials file from path.
func LoadStore(path string, provider config.Provider, client vault.Client, opts ...resolver.Option) (*Store, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	creds, err := Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %q: %w", path, err)
	}

	return NewStore(creds, provider, client, opts...)
}

// Decode parses a credentials file. Unknown fields are rejected.
func Decode(r io.Reader) ([]*Credential, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	return f.Credentials, nil
}

// Lookup returns the Credential with id.
func (s *Store) Lookup(id string) (*Credential, error) {
	e, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return e.credential, nil
}

// Resolver returns the Resolver for the Credential with id.
func (s *Store) Resolver(id string) (*resolver.Resolver, error) {
	e, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return e.resolver, nil
}

// List returns all credentials in the order they were configured.
func (s *Store) List() []*Credential {
	result := make([]*Credential, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.entries[id].credential)
	}
	return result
}

func (s *Store) Len() int {
	return len(s.order)
}

func (s *Store) get(id string) (*entry, error) {
	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCredentialNotFound, id)
	}
	return e, nil
}
