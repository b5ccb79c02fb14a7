package generator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/iconforge/model"
	"github.com/c360studio/iconforge/svg"
)

// DefaultTransformCacheSize bounds the transform cache.
const DefaultTransformCacheSize = 2048

type optimizerKey struct {
	dir string
	t   model.IconType
}

type loadedOptimizer struct {
	optimizer   svg.Optimizer
	fingerprint string
}

// ConfigCache loads each directory's optimizer configuration once per run.
// A fresh cache is created for every build so edits to optimize.yaml are
// picked up by the next run.
type ConfigCache struct {
	loaded map[optimizerKey]loadedOptimizer
}

// NewConfigCache returns an empty cache.
func NewConfigCache() *ConfigCache {
	return &ConfigCache{loaded: make(map[optimizerKey]loadedOptimizer)}
}

// Optimizer returns the optimizer for icons of type t in dir, along with a
// fingerprint of the configuration that built it.
func (c *ConfigCache) Optimizer(dir string, t model.IconType) (svg.Optimizer, string, error) {
	key := optimizerKey{dir: dir, t: t}
	if l, ok := c.loaded[key]; ok {
		return l.optimizer, l.fingerprint, nil
	}

	cfg, err := svg.LoadOptimizeConfig(dir, t)
	if err != nil {
		return nil, "", err
	}
	opt, err := svg.NewOptimizer(cfg)
	if err != nil {
		return nil, "", fmt.Errorf("optimizer for %s: %w", dir, err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, "", fmt.Errorf("fingerprint optimizer config: %w", err)
	}
	sum := sha256.Sum256(data)

	l := loadedOptimizer{optimizer: opt, fingerprint: hex.EncodeToString(sum[:8])}
	c.loaded[key] = l
	return l.optimizer, l.fingerprint, nil
}

// TransformCache memoizes svg.Transform results by content, type and
// optimizer configuration. It survives across runs of a long-lived
// process such as the watcher. A nil cache never hits.
type TransformCache struct {
	cache *lru.Cache[string, *svg.Result]
}

// NewTransformCache creates a cache holding up to size results.
func NewTransformCache(size int) (*TransformCache, error) {
	if size <= 0 {
		size = DefaultTransformCacheSize
	}
	c, err := lru.New[string, *svg.Result](size)
	if err != nil {
		return nil, fmt.Errorf("create transform cache: %w", err)
	}
	return &TransformCache{cache: c}, nil
}

// Key identifies a transform input.
func (c *TransformCache) Key(raw []byte, t model.IconType, fingerprint string) string {
	sum := sha256.Sum256(raw)
	return string(t) + ":" + fingerprint + ":" + hex.EncodeToString(sum[:])
}

// Get returns a cached result.
func (c *TransformCache) Get(key string) (*svg.Result, bool) {
	if c == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

// Add stores a result.
func (c *TransformCache) Add(key string, res *svg.Result) {
	if c == nil {
		return
	}
	c.cache.Add(key, res)
}

// Len returns the number of cached results.
func (c *TransformCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}
