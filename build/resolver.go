// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"path/filepath"

	log "github.com/golang/glog"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultResolverCacheSize is the number of paths a Resolver remembers.
const DefaultResolverCacheSize = 4096

// Resolver canonicalizes paths reported by the preprocessor.
// The same header is reported many times in a preprocessed file,
// so results are cached.
type Resolver struct {
	dir   string
	cache *lru.Cache[string, string]
}

// NewResolver creates a resolver for paths relative to dir,
// i.e. the working directory of the preprocessor.
func NewResolver(dir string, size int) (*Resolver, error) {
	if size <= 0 {
		size = DefaultResolverCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Resolver{
		dir:   dir,
		cache: cache,
	}, nil
}

// Resolve returns canonical path of path.
// If path doesn't exist on the filesystem, it returns path as is.
func (r *Resolver) Resolve(path string) string {
	if p, ok := r.cache.Get(path); ok {
		return p
	}
	p := path
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.dir, p)
	}
	canon, err := Canonicalize(p)
	if err != nil {
		if log.V(1) {
			log.Infof("unresolved %q: %v", path, err)
		}
		canon = path
	}
	r.cache.Add(path, canon)
	return canon
}
