// Package config loads brook.yaml, the per-project configuration: the
// suppress-type allowlist, suppress-comment patterns, the library file list
// and the elaboration worker count.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dlclark/regexp2"
	"gopkg.in/yaml.v3"
)

// FileName is the config file Discover looks for.
const FileName = "brook.yaml"

// Config is the loaded project configuration.
type Config struct {
	// Path is the absolute location of the loaded file, empty for Default.
	Path string

	// SuppressTypes are names whose use in annotation position elaborates to
	// a suppressed `any` instead of a diagnostic.
	SuppressTypes []string

	// SuppressComments are compiled patterns. A diagnostic whose preceding
	// comment matches any of them is dropped by the driver.
	SuppressComments []*regexp2.Regexp

	// Libs are library declaration files elaborated into the shared global
	// environment before any project file. Relative entries are resolved
	// against the config file's directory on load.
	Libs []string

	// Workers bounds parallel per-file elaboration.
	Workers int
}

// Default is the configuration assumed when no brook.yaml exists.
func Default() *Config {
	return &Config{Workers: runtime.NumCPU()}
}

// Load parses and validates one config file. An empty file is a valid
// all-defaults configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}

	cfg, err := raw.toConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", absPath, err)
	}
	cfg.Path = absPath

	root := filepath.Dir(absPath)
	for i, lib := range cfg.Libs {
		if !filepath.IsAbs(lib) {
			cfg.Libs[i] = filepath.Join(root, lib)
		}
	}
	return cfg, nil
}

// Discover walks from start upward to the filesystem root looking for the
// nearest brook.yaml. Returns "" when none exists on the path.
func Discover(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("config: resolve %s: %w", start, err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// SuppressesComment reports whether the comment text matches any configured
// suppress pattern. Pattern evaluation failures count as no match.
func (c *Config) SuppressesComment(comment string) bool {
	for _, re := range c.SuppressComments {
		if ok, err := re.MatchString(comment); err == nil && ok {
			return true
		}
	}
	return false
}

type configFile struct {
	SuppressTypes    stringList `yaml:"suppress_types"`
	SuppressComments stringList `yaml:"suppress_comments"`
	Libs             stringList `yaml:"libs"`
	Workers          *int       `yaml:"workers"`
}

func (cf configFile) toConfig() (*Config, error) {
	cfg := &Config{
		SuppressTypes: cf.SuppressTypes.Clone(),
		Libs:          cf.Libs.Clone(),
		Workers:       runtime.NumCPU(),
	}
	if cf.Workers != nil {
		if *cf.Workers <= 0 {
			return nil, fmt.Errorf("workers must be a positive integer, got %d", *cf.Workers)
		}
		cfg.Workers = *cf.Workers
	}
	for i, pattern := range cf.SuppressComments {
		re, err := regexp2.Compile(pattern, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("suppress_comments[%d]: %w", i, err)
		}
		cfg.SuppressComments = append(cfg.SuppressComments, re)
	}
	return cfg, nil
}

// stringList accepts both a single scalar and a sequence, so `libs: lib.js`
// and a multi-entry list both parse.
type stringList []string

func (l stringList) Clone() []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, item := range l {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			str = strings.TrimSpace(str)
			if str == "" {
				continue
			}
			items = append(items, str)
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("expected string or sequence for list but found %s", value.ShortTag())
	}
}
