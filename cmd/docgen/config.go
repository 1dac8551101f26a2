package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gnana997/docgen/pkg/docgen"
	"github.com/gnana997/docgen/pkg/pipeline"
)

const defaultConfigPath = ".docgen/config.yaml"

// ProjectConfig holds the contents of .docgen/config.yaml. Paths are
// relative to the directory being documented.
type ProjectConfig struct {
	Include []string `yaml:"include" validate:"dive,required"`
	Exclude []string `yaml:"exclude" validate:"dive,required"`

	// Resolver is a docgen.ResolverByName name.
	Resolver string `yaml:"resolver" validate:"omitempty,oneof=all exported single findAllComponentDefinitions findAllExportedComponentDefinitions findExportedComponentDefinition"`

	// Cwd makes paths in error reports relative; defaults to the root.
	Cwd string `yaml:"cwd"`

	Workers int                  `yaml:"workers" validate:"gte=0,lte=256"`
	Parser  docgen.ParserOptions `yaml:"parser"`
	Cache   CacheConfig          `yaml:"cache"`
	Catalog CatalogConfig        `yaml:"catalog"`
	Log     LogConfig            `yaml:"log"`
}

// CacheConfig configures the persistent result cache.
type CacheConfig struct {
	// Path of the bolt database; empty disables the cache.
	Path string `yaml:"path"`

	// Salt invalidates every entry when changed.
	Salt string `yaml:"salt"`

	MemoSize int `yaml:"memo_size" validate:"gte=0"`
}

// CatalogConfig names the catalog written by extract and served by serve.
type CatalogConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// LogConfig sets defaults for --log-level and --log-format.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report yaml keys so errors match what users wrote.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func defaultProjectConfig() *ProjectConfig {
	opts := pipeline.DefaultOptions()
	return &ProjectConfig{
		Include: opts.Include,
		Exclude: opts.Exclude,
		Cache:   CacheConfig{Path: filepath.Join(".docgen", "cache.db"), MemoSize: opts.MemoSize},
		Catalog: CatalogConfig{Name: "components", Version: "0.0.0"},
	}
}

// loadProjectConfig reads the config file at path, layered over the
// defaults. A missing file yields the defaults unless required is set.
func loadProjectConfig(path string, required bool) (*ProjectConfig, error) {
	cfg := defaultProjectConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field constraints and that every glob compiles.
func (c *ProjectConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return pipeline.ValidatePatterns(c.Include, c.Exclude)
}

// pipelineOptions converts the config for a run rooted at root.
func (c *ProjectConfig) pipelineOptions(root string) (pipeline.Options, error) {
	resolver, err := docgen.ResolverByName(c.Resolver)
	if err != nil {
		return pipeline.Options{}, err
	}

	opts := pipeline.DefaultOptions()
	opts.Include = c.Include
	opts.Exclude = c.Exclude
	opts.Workers = c.Workers
	opts.MemoSize = c.Cache.MemoSize
	opts.CacheSalt = c.cacheSalt()
	opts.Normalize.Resolver = resolver
	opts.Normalize.ParserOptions = c.Parser
	opts.Normalize.Cwd = resolvePath(root, c.Cwd)
	return opts, nil
}

// cacheSalt covers every setting that changes normalize results for the
// same content.
func (c *ProjectConfig) cacheSalt() string {
	return strings.Join([]string{
		c.Cache.Salt,
		version,
		"resolver=" + c.Resolver,
		"language=" + c.Parser.Language,
		"recovery=" + strconv.FormatBool(c.Parser.ErrorRecovery),
	}, "\x00")
}

// resolvePath makes a config path absolute against root; empty stays empty.
func resolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
