package persist

import (
	"errors"

	"github.com/petrijr/asyncvalue/pkg/api"
)

var (
	ErrMissingKey   = errors.New("persist: snapshot key is required")
	ErrMissingStore = errors.New("persist: snapshot store is required")
)

// Config describes where and how a Persistor saves state.
type Config struct {
	Key       string
	Store     api.SnapshotStore
	Transform Transform    // optional
	Observer  api.Observer // optional, defaults to NoopObserver
}

// Validate reports whether the config can drive a Persistor.
func (c Config) Validate() error {
	if c.Key == "" {
		return ErrMissingKey
	}
	if c.Store == nil {
		return ErrMissingStore
	}
	return nil
}

// ConfigBuilder assembles a Config fluently.
type ConfigBuilder struct {
	cfg        Config
	transforms []Transform
}

// NewConfigBuilder starts a Config for the given snapshot key.
func NewConfigBuilder(key string) *ConfigBuilder {
	return &ConfigBuilder{cfg: Config{Key: key}}
}

func (b *ConfigBuilder) WithStore(store api.SnapshotStore) *ConfigBuilder {
	b.cfg.Store = store
	return b
}

// WithTransforms appends transforms; they compose in the order given.
func (b *ConfigBuilder) WithTransforms(ts ...Transform) *ConfigBuilder {
	b.transforms = append(b.transforms, ts...)
	return b
}

func (b *ConfigBuilder) WithObserver(obs api.Observer) *ConfigBuilder {
	b.cfg.Observer = obs
	return b
}

// Build validates and returns the Config.
func (b *ConfigBuilder) Build() (Config, error) {
	cfg := b.cfg
	if len(b.transforms) > 0 {
		cfg.Transform = ComposeTransforms(b.transforms...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
