package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"go/format"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

const defaultDIImport = "github.com/sghaida/modi/di"

// Manifest is the on-disk generator input (*.modi.yaml).
type Manifest struct {
	Package    string      `yaml:"package"`
	DI         string      `yaml:"di"`
	Imports    []string    `yaml:"imports"`
	Components []Component `yaml:"components"`
}

// Component describes one interface binding.
type Component struct {
	Impl      string `yaml:"impl"`
	Interface string `yaml:"interface"`

	// Optional: defaults to Impl. Config files key parameter sections by it.
	Name string `yaml:"name"`

	// Optional: "singleton" (default) or "transient".
	Lifetime string `yaml:"lifetime"`

	// Optional: the Impl field receiving the parameter bundle (default "params").
	ParamsField string `yaml:"paramsField"`

	Inject []Inject `yaml:"inject"`
	Params []Param  `yaml:"params"`
}

// Inject assigns a resolved interface to an Impl field.
type Inject struct {
	Field string `yaml:"field"`
	Type  string `yaml:"type"`
}

// Param is one field of the generated parameter bundle.
type Param struct {
	Field string `yaml:"field"`
	Type  string `yaml:"type"`

	// Optional: yaml key (defaults to the lower-cased field name).
	Key string `yaml:"key"`

	// Optional: Go expression assigned in SetDefaults.
	Default string `yaml:"default"`
}

func run(args []string) error {
	fs := flag.NewFlagSet("modigen", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	specPath := fs.String("spec", "", "path to components.modi.yaml")
	outPath := fs.String("out", "", "output .go file path")
	check := fs.Bool("check", false, "fail if -out is not up to date instead of writing it")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*specPath) == "" {
		return fmt.Errorf("missing -spec")
	}
	if strings.TrimSpace(*outPath) == "" {
		return fmt.Errorf("missing -out")
	}

	src, err := generate(*specPath)
	if err != nil {
		return err
	}

	if *check {
		current, err := os.ReadFile(*outPath)
		if err != nil {
			return fmt.Errorf("check: %w", err)
		}
		if !bytes.Equal(current, src) {
			return fmt.Errorf("check: %s is out of date with %s", *outPath, *specPath)
		}
		return nil
	}

	return os.WriteFile(*outPath, src, 0o644)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "modigen:", err)
		os.Exit(1)
	}
}

// generate reads the manifest at specPath and returns formatted Go source.
func generate(specPath string) ([]byte, error) {
	raw, err := os.ReadFile(specPath)
	if err != nil {
		return nil, err
	}

	m, err := parseManifest(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", specPath, err)
	}

	applyDefaults(&m)
	if err := validateManifest(&m); err != nil {
		return nil, fmt.Errorf("%s: %w", specPath, err)
	}

	data := map[string]any{
		"M":        m,
		"SpecPath": filepath.ToSlash(specPath),
		"SpecHash": sha256Hex(raw),
		"Imports":  imports(m),
	}

	var buf bytes.Buffer
	if err := componentsTpl.Execute(&buf, data); err != nil {
		return nil, err
	}

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w", err)
	}
	return out, nil
}

func parseManifest(raw []byte) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return m, fmt.Errorf("empty manifest")
		}
		return m, err
	}
	return m, nil
}

func applyDefaults(m *Manifest) {
	if m.DI == "" {
		m.DI = defaultDIImport
	}
	for i := range m.Components {
		c := &m.Components[i]
		if c.Name == "" {
			c.Name = c.Impl
		}
		if c.Lifetime == "" {
			c.Lifetime = "singleton"
		}
		if c.ParamsField == "" {
			c.ParamsField = "params"
		}
		for j := range c.Params {
			if c.Params[j].Key == "" {
				c.Params[j].Key = lowerFirst(c.Params[j].Field)
			}
		}
	}
}

func validateManifest(m *Manifest) error {
	if !token.IsIdentifier(m.Package) {
		return fmt.Errorf("invalid package %q", m.Package)
	}
	if len(m.Components) == 0 {
		return fmt.Errorf("no components")
	}

	var errs []error
	impls := map[string]bool{}
	ifaces := map[string]bool{}
	names := map[string]bool{}

	for _, c := range m.Components {
		if err := validateComponent(c); err != nil {
			errs = append(errs, err)
			continue
		}
		if impls[c.Impl] {
			errs = append(errs, fmt.Errorf("component %q: duplicate impl", c.Impl))
		}
		if ifaces[c.Interface] {
			errs = append(errs, fmt.Errorf("component %q: interface %s already bound", c.Impl, c.Interface))
		}
		if names[c.Name] {
			errs = append(errs, fmt.Errorf("component %q: duplicate name %q", c.Impl, c.Name))
		}
		impls[c.Impl], ifaces[c.Interface], names[c.Name] = true, true, true
	}
	return errors.Join(errs...)
}

func validateComponent(c Component) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("component %q: %s", c.Impl, fmt.Sprintf(format, args...))
	}

	if !token.IsIdentifier(c.Impl) || !token.IsExported(c.Impl) {
		return fail("impl must be an exported identifier")
	}
	if strings.TrimSpace(c.Interface) == "" {
		return fail("missing interface")
	}
	if c.Lifetime != "singleton" && c.Lifetime != "transient" {
		return fail("unknown lifetime %q", c.Lifetime)
	}
	if !token.IsIdentifier(c.ParamsField) {
		return fail("invalid paramsField %q", c.ParamsField)
	}

	fields := map[string]bool{}
	if len(c.Params) > 0 {
		fields[c.ParamsField] = true
	}
	for _, in := range c.Inject {
		if !token.IsIdentifier(in.Field) || strings.TrimSpace(in.Type) == "" {
			return fail("inject entries need field and type")
		}
		if fields[in.Field] {
			return fail("field %q assigned twice", in.Field)
		}
		fields[in.Field] = true
	}

	keys := map[string]bool{}
	params := map[string]bool{}
	for _, p := range c.Params {
		if !token.IsIdentifier(p.Field) || !token.IsExported(p.Field) || strings.TrimSpace(p.Type) == "" {
			return fail("params entries need an exported field and a type")
		}
		if params[p.Field] {
			return fail("duplicate param field %q", p.Field)
		}
		if keys[p.Key] {
			return fail("duplicate param key %q", p.Key)
		}
		params[p.Field], keys[p.Key] = true, true
	}
	return nil
}

// GoImport is one line of the generated import block.
type GoImport struct {
	Name string
	Path string
}

func imports(m Manifest) []GoImport {
	out := []GoImport{{Name: "di", Path: m.DI}}
	for _, p := range m.Imports {
		if p == m.DI || slices.ContainsFunc(out, func(g GoImport) bool { return g.Path == p }) {
			continue
		}
		out = append(out, GoImport{Path: p})
	}
	slices.SortFunc(out[1:], func(a, b GoImport) int { return strings.Compare(a.Path, b.Path) })
	return out
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}

func hasDefaults(c Component) bool {
	return slices.ContainsFunc(c.Params, func(p Param) bool { return p.Default != "" })
}

// -------------------------
// Template
// -------------------------

var componentsTpl = template.Must(
	template.New("components").
		Funcs(template.FuncMap{
			"hasDefaults": hasDefaults,
			"isTransient": func(c Component) bool { return c.Lifetime == "transient" },
		}).
		Parse(`// Code generated by modigen; DO NOT EDIT.
// Spec: {{.SpecPath}}
// Spec-SHA256: {{.SpecHash}}

package {{.M.Package}}

import (
{{- range .Imports }}
	{{- if .Name }}
	{{ .Name }} "{{ .Path }}"
	{{- else }}
	"{{ .Path }}"
	{{- end }}
{{- end }}
)
{{ range .M.Components }}
{{- if .Params }}

// {{.Impl}}Parameters configures {{.Impl}}. Config files set it under
// components.{{.Name}}.
type {{.Impl}}Parameters struct {
{{- range .Params }}
	{{.Field}} {{.Type}} ` + "`" + `yaml:"{{.Key}}"` + "`" + `
{{- end }}
}
{{ if hasDefaults . }}
// SetDefaults implements di.Defaulter.
func (p *{{.Impl}}Parameters) SetDefaults() {
{{- range .Params }}{{ if .Default }}
	p.{{.Field}} = {{.Default}}
{{- end }}{{ end }}
}
{{ end }}
{{- end }}

// Register{{.Impl}} binds {{.Interface}} to *{{.Impl}}.
func Register{{.Impl}}(m *di.ModuleBuilder) *di.ModuleBuilder {
	return di.Bind(m, func({{ if .Inject }}ctx{{ else }}_{{ end }} *di.BuildContext, {{ if .Params }}p {{.Impl}}Parameters{{ else }}_ struct{}{{ end }}) ({{.Interface}}, error) {
{{- range $i, $in := .Inject }}
		dep{{$i}}, err := di.Resolve[{{$in.Type}}](ctx)
		if err != nil {
			return nil, err
		}
{{- end }}
		return &{{.Impl}}{
{{- if .Params }}
			{{.ParamsField}}: p,
{{- end }}
{{- range $i, $in := .Inject }}
			{{$in.Field}}: dep{{$i}},
{{- end }}
		}, nil
	},
		di.Named("{{.Name}}"),
{{- if isTransient . }}
		di.WithLifetime(di.Transient),
{{- end }}
{{- range .Inject }}
		di.DependsOn[{{.Type}}](),
{{- end }}
	)
}
{{ end }}
// RegisterComponents binds every component in {{.SpecPath}}.
func RegisterComponents(m *di.ModuleBuilder) *di.ModuleBuilder {
{{- range .M.Components }}
	Register{{.Impl}}(m)
{{- end }}
	return m
}
`))
