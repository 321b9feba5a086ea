/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package storage reads and writes rule set documents on local disk or S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStore abstracts object storage operations.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Resolve maps a location to a store and the key inside it. Locations of the
// form s3://bucket/key use S3; anything else is a local file path.
func Resolve(ctx context.Context, location string, cfg S3Config) (ObjectStore, string, error) {
	if strings.HasPrefix(location, "s3://") {
		bucket, key, err := parseS3Location(location)
		if err != nil {
			return nil, "", err
		}
		cfg.Bucket = bucket
		store, err := NewS3Store(ctx, cfg)
		if err != nil {
			return nil, "", err
		}
		return store, key, nil
	}

	if location == "" {
		return nil, "", fmt.Errorf("empty location")
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return nil, "", fmt.Errorf("resolve path %q: %w", location, err)
	}
	return NewFSStore(filepath.Dir(abs)), filepath.Base(abs), nil
}

// Read fetches the object at location.
func Read(ctx context.Context, location string, cfg S3Config) ([]byte, error) {
	store, key, err := Resolve(ctx, location, cfg)
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, key)
}

// Write stores data at location.
func Write(ctx context.Context, location string, data []byte, cfg S3Config) error {
	store, key, err := Resolve(ctx, location, cfg)
	if err != nil {
		return err
	}
	return store.Put(ctx, key, data)
}

func parseS3Location(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("parse s3 location: %w", err)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 location %q must be s3://bucket/key", location)
	}
	return bucket, key, nil
}
