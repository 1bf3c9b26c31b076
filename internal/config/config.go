// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package config reads the relation engine's YAML configuration.
package config

import (
	"os"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/schema"
	"gopkg.in/yaml.v3"

	"github.com/juju/hadoop-relations/core/relation"
)

const (
	// DefaultDatabase is the fact store path used when none is configured.
	DefaultDatabase = "relations.db"

	// DefaultLogLevel is the root logging level used when none is
	// configured.
	DefaultLogLevel = "INFO"
)

// Interface names a relation protocol.
type Interface string

const (
	Mapred Interface = "mapred"
	YARN   Interface = "yarn"
)

// Relation binds a relation name to the interface and role this unit
// implements on it.
type Relation struct {
	Name      string        `yaml:"name"`
	Interface Interface     `yaml:"interface"`
	Role      relation.Role `yaml:"role"`
}

// Config holds the engine configuration.
type Config struct {
	Database  string     `yaml:"database"`
	LogLevel  string     `yaml:"log-level"`
	Relations []Relation `yaml:"relations"`
}

// Validate returns an error if the config is inconsistent.
func (c Config) Validate() error {
	if c.Database == "" {
		return errors.NotValidf("empty database")
	}
	if _, ok := loggo.ParseLevel(c.LogLevel); !ok {
		return errors.NotValidf("log level %q", c.LogLevel)
	}
	seen := set.NewStrings()
	for _, rel := range c.Relations {
		if rel.Name == "" {
			return errors.NotValidf("relation with empty name")
		}
		if seen.Contains(rel.Name) {
			return errors.NotValidf("duplicate relation %q", rel.Name)
		}
		seen.Add(rel.Name)
		switch rel.Interface {
		case Mapred, YARN:
		default:
			return errors.NotValidf("relation %q interface %q", rel.Name, rel.Interface)
		}
		if err := rel.Role.Validate(); err != nil {
			return errors.Annotatef(err, "relation %q", rel.Name)
		}
	}
	return nil
}

// Relation returns the named relation's binding.
func (c Config) Relation(name string) (Relation, error) {
	for _, rel := range c.Relations {
		if rel.Name == name {
			return rel, nil
		}
	}
	return Relation{}, errors.NotFoundf("relation %q", name)
}

var relationChecker = schema.FieldMap(
	schema.Fields{
		"name":      schema.String(),
		"interface": schema.OneOf(schema.Const(string(Mapred)), schema.Const(string(YARN))),
		"role":      schema.OneOf(schema.Const(string(relation.Provides)), schema.Const(string(relation.Requires))),
	},
	schema.Defaults{
		"role": string(relation.Requires),
	},
)

var configChecker = schema.FieldMap(
	schema.Fields{
		"database":  schema.String(),
		"log-level": schema.String(),
		"relations": schema.List(relationChecker),
	},
	schema.Defaults{
		"database":  DefaultDatabase,
		"log-level": DefaultLogLevel,
		"relations": schema.Omit,
	},
)

// Parse decodes and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Annotate(err, "parsing config")
	}
	if raw == nil {
		raw = make(map[string]interface{})
	}
	coerced, err := configChecker.Coerce(raw, nil)
	if err != nil {
		return nil, errors.Annotate(err, "config schema check failed")
	}
	valid := coerced.(map[string]interface{})
	cfg := &Config{
		Database: valid["database"].(string),
		LogLevel: valid["log-level"].(string),
	}
	if rels, ok := valid["relations"]; ok {
		for _, r := range rels.([]interface{}) {
			m := r.(map[string]interface{})
			cfg.Relations = append(cfg.Relations, Relation{
				Name:      m["name"].(string),
				Interface: Interface(m["interface"].(string)),
				Role:      relation.Role(m["role"].(string)),
			})
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return cfg, nil
}

// Read parses the configuration file at path.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "reading config %q", path)
	}
	cfg, err := Parse(data)
	return cfg, errors.Annotatef(err, "config %q", path)
}
