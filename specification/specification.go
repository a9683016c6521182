// Package specification holds the declarative description of an application
// bundle: its name, identifier, version, icon and the path patterns that select
// sources, resources and data models. A Specification is created once per build
// and never mutated; path patterns are resolved to concrete files when it is
// created.
package specification

import (
	"path/filepath"
	"regexp"
	"strings"
)

const (
	DefaultVersion     = "1.0"
	DefaultPackageType = "APPL"
	DefaultSignature   = "????"
)

// Document is the raw, decodable form of a specification. The same struct is
// used for YAML, TOML and HCL documents and for writing new documents.
type Document struct {
	Name       string   `yaml:"name" toml:"name" hcl:"name,optional"`
	Identifier string   `yaml:"identifier" toml:"identifier" hcl:"identifier,optional"`
	Version    string   `yaml:"version,omitempty" toml:"version,omitempty" hcl:"version,optional"`
	Icon       string   `yaml:"icon,omitempty" toml:"icon,omitempty" hcl:"icon,optional"`
	InfoString string   `yaml:"info_string,omitempty" toml:"info_string,omitempty" hcl:"info_string,optional"`
	Sources    []string `yaml:"sources,omitempty" toml:"sources,omitempty" hcl:"sources,optional"`
	Resources  []string `yaml:"resources,omitempty" toml:"resources,omitempty" hcl:"resources,optional"`
	DataModels []string `yaml:"data_models,omitempty" toml:"data_models,omitempty" hcl:"data_models,optional"`
	Overwrite  bool     `yaml:"overwrite,omitempty" toml:"overwrite,omitempty" hcl:"overwrite,optional"`
	Agent      bool     `yaml:"agent,omitempty" toml:"agent,omitempty" hcl:"agent,optional"`
	Stdlib     *bool    `yaml:"stdlib,omitempty" toml:"stdlib,omitempty" hcl:"stdlib,optional"`
	Type       string   `yaml:"type,omitempty" toml:"type,omitempty" hcl:"type,optional"`
	Signature  string   `yaml:"signature,omitempty" toml:"signature,omitempty" hcl:"signature,optional"`
	Gems       []string `yaml:"gems,omitempty" toml:"gems,omitempty" hcl:"gems,optional"`
	EmbedBS    bool     `yaml:"embed_bs,omitempty" toml:"embed_bs,omitempty" hcl:"embed_bs,optional"`
	Compile    bool     `yaml:"compile,omitempty" toml:"compile,omitempty" hcl:"compile,optional"`
}

// Specification is the validated, resolved description of one bundle.
type Specification struct {
	name        string
	identifier  string
	version     string
	icon        string
	infoString  string
	packageType string
	signature   string
	agent       bool
	overwrite   bool
	stdlib      bool
	embedBS     bool
	compile     bool
	gems        []string
	sources     []string
	resources   []string
	dataModels  []string
	baseDir     string
}

var fourCharCode = regexp.MustCompile(`^[\x20-\x7e]{4}$`)

// New validates doc, applies defaults and resolves its path patterns relative
// to baseDir. An empty baseDir means the working directory.
func New(doc Document, baseDir string) (*Specification, error) {
	if baseDir == "" {
		baseDir = "."
	}

	s := &Specification{
		name:        strings.TrimSpace(doc.Name),
		identifier:  strings.TrimSpace(doc.Identifier),
		version:     doc.Version,
		infoString:  doc.InfoString,
		packageType: doc.Type,
		signature:   doc.Signature,
		agent:       doc.Agent,
		overwrite:   doc.Overwrite,
		stdlib:      doc.Stdlib == nil || *doc.Stdlib,
		embedBS:     doc.EmbedBS,
		compile:     doc.Compile,
		gems:        append([]string(nil), doc.Gems...),
		baseDir:     baseDir,
	}
	if s.version == "" {
		s.version = DefaultVersion
	}
	if s.packageType == "" {
		s.packageType = DefaultPackageType
	}
	if s.signature == "" {
		s.signature = DefaultSignature
	}
	if doc.Icon != "" {
		s.icon = s.Path(doc.Icon)
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	var err error
	if s.sources, err = resolvePatterns(baseDir, "sources", doc.Sources, nil); err != nil {
		return nil, err
	}
	if s.resources, err = resolvePatterns(baseDir, "resources", doc.Resources, nil); err != nil {
		return nil, err
	}
	if s.dataModels, err = resolvePatterns(baseDir, "data_models", doc.DataModels, IsDataModel); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Specification) validate() error {
	if s.name == "" {
		return missing("name")
	}
	if strings.ContainsAny(s.name, `/\`) {
		return invalid("name", "%q contains a path separator", s.name)
	}
	if s.identifier == "" {
		return missing("identifier")
	}
	if !fourCharCode.MatchString(s.packageType) {
		return invalid("type", "%q is not a four character code", s.packageType)
	}
	if !fourCharCode.MatchString(s.signature) {
		return invalid("signature", "%q is not a four character code", s.signature)
	}
	for _, gem := range s.gems {
		if strings.TrimSpace(gem) == "" || strings.HasPrefix(gem, "-") {
			return invalid("gems", "%q is not a package name", gem)
		}
	}
	return nil
}

// Name is the bundle name; the bundle root is "<Name>.app".
func (s *Specification) Name() string { return s.name }

// Identifier is the reverse-DNS bundle identifier.
func (s *Specification) Identifier() string { return s.identifier }

func (s *Specification) Version() string { return s.version }

// Icon is the icon path resolved against the base directory, or "".
func (s *Specification) Icon() string { return s.icon }

func (s *Specification) InfoString() string { return s.infoString }

// PackageType is the four character bundle package type.
func (s *Specification) PackageType() string { return s.packageType }

// Signature is the four character creator signature.
func (s *Specification) Signature() string { return s.signature }

// Agent reports whether the application hides from the Dock (LSUIElement).
func (s *Specification) Agent() bool { return s.agent }

// Overwrite reports whether an existing bundle is removed before building.
func (s *Specification) Overwrite() bool { return s.overwrite }

// Stdlib reports whether the deploy step keeps the runtime's standard library.
func (s *Specification) Stdlib() bool { return s.stdlib }

// EmbedBridgeSupport reports whether the deploy step embeds BridgeSupport files.
func (s *Specification) EmbedBridgeSupport() bool { return s.embedBS }

// Compile reports whether the deploy step compiles sources.
func (s *Specification) Compile() bool { return s.compile }

// BaseDir is the directory path patterns were resolved against.
func (s *Specification) BaseDir() string { return s.baseDir }

// Gems lists the extra packages the deploy step embeds.
func (s *Specification) Gems() []string { return clone(s.gems) }

// Sources lists resolved source paths. Relative entries are relative to BaseDir.
func (s *Specification) Sources() []string { return clone(s.sources) }

// Resources lists resolved resource paths. Relative entries are relative to BaseDir.
func (s *Specification) Resources() []string { return clone(s.resources) }

// DataModels lists resolved data-model paths. Relative entries are relative to BaseDir.
func (s *Specification) DataModels() []string { return clone(s.dataModels) }

// IconExists reports whether an icon is declared and present on disk.
func (s *Specification) IconExists() bool {
	return s.icon != "" && exists(s.icon)
}

// Path maps a path from the document onto the filesystem.
func (s *Specification) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.baseDir, p)
}

func clone(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return append([]string(nil), in...)
}
