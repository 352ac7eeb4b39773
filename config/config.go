// Package config loads component parameter bundles from a YAML file.
//
// The file maps component names (see di.Named) to their bundles:
//
//	components:
//	  ConsoleOutput:
//	    prefix: "${OUTPUT_PREFIX}"
//	    count: 3
//	  TodayWriter:
//	    today: June 19
//
// ${VAR} references inside scalar values are expanded from the environment
// after dotenv files have been loaded. Expansion runs on the parsed document,
// so a substituted value is never read as YAML, and a bare $ is kept as is.
// A *Source is a di.ParameterSource.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"regexp"
	"sort"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sghaida/modi/di"
)

// DefaultEnvFile is loaded by Load when no env files are given. It is
// optional; explicitly named env files are not.
const DefaultEnvFile = ".env"

// file is the on-disk layout.
type file struct {
	Components map[string]yaml.Node `yaml:"components"`
}

// Source serves parameter bundles decoded from a config file.
type Source struct {
	path       string
	components map[string]yaml.Node
}

var _ di.ParameterSource = (*Source)(nil)

// Load reads env files into the process environment (existing variables
// win), then reads and parses the YAML file at path.
func Load(path string, envFiles ...string) (*Source, error) {
	if err := loadEnv(envFiles); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	src, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	src.path = path
	return src, nil
}

func loadEnv(files []string) error {
	if len(files) == 0 {
		// Non-fatal: .env may not exist in production
		if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: %s: %w", DefaultEnvFile, err)
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("config: env files: %w", err)
	}
	return nil
}

// Parse parses raw and expands environment references in its scalars.
func Parse(raw []byte) (*Source, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	if f.Components == nil {
		f.Components = map[string]yaml.Node{}
	}
	for name, node := range f.Components {
		expandNode(&node)
		f.Components[name] = node
	}
	return &Source{components: f.Components}, nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func expandNode(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode {
		n.Value = envRef.ReplaceAllStringFunc(n.Value, func(ref string) string {
			return os.Getenv(ref[2 : len(ref)-1])
		})
		return
	}
	for _, c := range n.Content {
		expandNode(c)
	}
}

// Path returns the file the source was loaded from, if any.
func (s *Source) Path() string { return s.path }

// Components returns the configured component names, sorted.
func (s *Source) Components() []string {
	names := make([]string, 0, len(s.components))
	for name := range s.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parameters implements di.ParameterSource. It decodes the component's
// section into a new bundle of type t. Defaults from di.Defaulter are
// applied first so the file only needs the fields it changes.
func (s *Source) Parameters(component string, t reflect.Type) (any, bool, error) {
	node, ok := s.components[component]
	if !ok {
		return nil, false, nil
	}

	ptr := reflect.New(t)
	if d, ok := ptr.Interface().(di.Defaulter); ok {
		d.SetDefaults()
	}
	if err := node.Decode(ptr.Interface()); err != nil {
		return nil, false, fmt.Errorf("config: component %q: %w", component, err)
	}
	return ptr.Elem().Interface(), true, nil
}
