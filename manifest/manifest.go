// Package manifest loads capability declaration files and applies them to
// an engine.
//
// A manifest is the surface syntax in front of the core: it declares
// capabilities with their defining sites, tags entities with capability
// sets, states named requirements as boolean expressions, and lists
// specialization variants per contract. TOML and YAML are both accepted,
// chosen by file extension.
package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/tolaworks/caps"
	"github.com/tolaworks/caps/capset"
	"github.com/tolaworks/caps/dispatch"
	"github.com/tolaworks/caps/errors"
	"github.com/tolaworks/caps/identity"
	"github.com/tolaworks/caps/logger"
	"github.com/tolaworks/caps/query"
)

// CapabilityDecl declares one capability at its defining site.
type CapabilityDecl struct {
	Name   string `toml:"name" yaml:"name"`
	Module string `toml:"module" yaml:"module"`
	File   string `toml:"file" yaml:"file"`
	Line   int    `toml:"line" yaml:"line"`
	Column int    `toml:"column" yaml:"column"`
}

// EntityDecl tags a named entity with the capabilities it holds.
type EntityDecl struct {
	Name         string   `toml:"name" yaml:"name"`
	Capabilities []string `toml:"capabilities" yaml:"capabilities"`
}

// RequirementDecl states a named boolean requirement over capabilities.
type RequirementDecl struct {
	Name       string `toml:"name" yaml:"name"`
	Expression string `toml:"expression" yaml:"expression"`
}

// VariantDecl declares one implementation variant of a contract.
type VariantDecl struct {
	Name       string `toml:"name" yaml:"name"`
	Guard      string `toml:"guard,omitempty" yaml:"guard,omitempty"` // empty means always-true
	Tier       string `toml:"tier" yaml:"tier"`
	BoundCount int    `toml:"bound_count,omitempty" yaml:"bound_count,omitempty"`
	Body       string `toml:"body" yaml:"body"`
}

// SpecializationDecl groups the variants declared for one contract.
type SpecializationDecl struct {
	Contract string        `toml:"contract" yaml:"contract"`
	Variants []VariantDecl `toml:"variants" yaml:"variants"`
}

// Manifest is a parsed declaration file.
type Manifest struct {
	Capabilities    []CapabilityDecl     `toml:"capabilities" yaml:"capabilities"`
	Entities        []EntityDecl         `toml:"entities" yaml:"entities"`
	Requirements    []RequirementDecl    `toml:"requirements" yaml:"requirements"`
	Specializations []SpecializationDecl `toml:"specializations" yaml:"specializations"`
}

// Load reads and parses a manifest file. The format is chosen by
// extension: .toml, .yaml, or .yml.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes manifest content in the format implied by ext.
func Parse(data []byte, ext string) (*Manifest, error) {
	var m Manifest
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(err, "parsing TOML manifest")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(err, "parsing YAML manifest")
		}
	default:
		return nil, errors.Newf("unsupported manifest format %q (want .toml, .yaml, or .yml)", ext)
	}
	return &m, nil
}

// Project is a manifest applied to an engine: everything a call site
// needs to run checks and resolutions by name.
type Project struct {
	Engine          *caps.Engine
	Entities        map[string]capset.Set
	Requirements    map[string]query.Expr
	Specializations map[string]*dispatch.Set
}

// Apply registers the manifest's declarations into a fresh engine and
// freezes it. All declaration errors are build-time fatal.
func (m *Manifest) Apply() (*Project, error) {
	engine := caps.NewEngine()

	for _, decl := range m.Capabilities {
		site := identity.Site{Module: decl.Module, File: decl.File, Line: decl.Line, Column: decl.Column}
		if _, err := engine.RegisterCapability(decl.Name, site); err != nil {
			return nil, err
		}
	}

	project := &Project{
		Engine:          engine,
		Entities:        map[string]capset.Set{},
		Requirements:    map[string]query.Expr{},
		Specializations: map[string]*dispatch.Set{},
	}

	for _, decl := range m.Entities {
		members := make([]*identity.Capability, 0, len(decl.Capabilities))
		for _, name := range decl.Capabilities {
			c, ok := engine.Lookup(name)
			if !ok {
				return nil, errors.NewUnknownCapability("entity %q holds undeclared capability %q", decl.Name, name)
			}
			members = append(members, c)
		}
		project.Entities[decl.Name] = capset.New(members...)
	}

	for _, decl := range m.Requirements {
		node, err := ParseExpression(decl.Expression)
		if err != nil {
			return nil, errors.Wrapf(err, "requirement %q", decl.Name)
		}
		expr, err := engine.BuildQuery(node)
		if err != nil {
			return nil, errors.Wrapf(err, "requirement %q", decl.Name)
		}
		project.Requirements[decl.Name] = expr
	}

	for _, spec := range m.Specializations {
		decls := make([]caps.Declaration, 0, len(spec.Variants))
		for _, v := range spec.Variants {
			tier, err := dispatch.ParseTier(v.Tier)
			if err != nil {
				return nil, errors.Wrapf(err, "variant %q of contract %q", v.Name, spec.Contract)
			}
			var guard query.Node
			if v.Guard != "" {
				guard, err = ParseExpression(v.Guard)
				if err != nil {
					return nil, errors.Wrapf(err, "variant %q of contract %q", v.Name, spec.Contract)
				}
			}
			decls = append(decls, caps.Declaration{
				Name:       v.Name,
				Guard:      guard,
				Tier:       tier,
				BoundCount: v.BoundCount,
				Body:       v.Body,
			})
		}
		set, err := engine.BuildSpecializationSet(spec.Contract, decls)
		if err != nil {
			return nil, err
		}
		project.Specializations[spec.Contract] = set
	}

	engine.Freeze()
	logger.Logger.Infow("manifest applied",
		"capabilities", len(m.Capabilities),
		"entities", len(m.Entities),
		"requirements", len(m.Requirements),
		"contracts", len(m.Specializations),
	)
	return project, nil
}
