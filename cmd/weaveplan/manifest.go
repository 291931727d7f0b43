package main

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/sghaida/iocaop/aop"
	"github.com/sghaida/iocaop/di"
	"gopkg.in/yaml.v3"
)

// Manifest describes components and aspects without any code behind them.
type Manifest struct {
	Components []ComponentSpec `yaml:"components"`
	Aspects    []AspectSpec    `yaml:"aspects"`
}

type ComponentSpec struct {
	Module  string   `yaml:"module"`
	Class   string   `yaml:"class"`
	Methods []string `yaml:"methods"`
}

type AspectSpec struct {
	Name   string       `yaml:"name"`
	Order  int          `yaml:"order"`
	Advice []AdviceSpec `yaml:"advice"`
}

type AdviceSpec struct {
	Kind     string `yaml:"kind"`
	Pointcut string `yaml:"pointcut"`
}

var errNoComponents = errors.New("manifest: no components")

// manifestError points at the offending manifest entry.
type manifestError struct {
	path string
	msg  string
}

func (e *manifestError) Error() string { return "manifest: " + e.path + ": " + e.msg }

func loadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	applyManifestDefaults(&m)
	if err := validateManifest(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func applyManifestDefaults(m *Manifest) {
	for i := range m.Components {
		c := &m.Components[i]
		c.Module = strings.TrimSpace(c.Module)
		if c.Module == "" {
			c.Module = di.DefaultModule
		}
		c.Class = strings.TrimSpace(c.Class)
	}
	for i := range m.Aspects {
		a := &m.Aspects[i]
		if strings.TrimSpace(a.Name) == "" {
			a.Name = "aspect" + strconv.Itoa(i)
		}
	}
}

func validateManifest(m *Manifest) error {
	if len(m.Components) == 0 {
		return errNoComponents
	}

	seen := map[string]bool{}
	for i, c := range m.Components {
		path := "components[" + strconv.Itoa(i) + "]"
		if !di.IsIdentifier(c.Module) {
			return &manifestError{path: path + ".module", msg: "invalid identifier " + strconv.Quote(c.Module)}
		}
		if !di.IsIdentifier(c.Class) {
			return &manifestError{path: path + ".class", msg: "invalid identifier " + strconv.Quote(c.Class)}
		}
		key := c.Module + "." + c.Class
		if seen[key] {
			return &manifestError{path: path, msg: "duplicate component " + key}
		}
		seen[key] = true
		for j, name := range c.Methods {
			if !di.IsIdentifier(name) {
				return &manifestError{
					path: path + ".methods[" + strconv.Itoa(j) + "]",
					msg:  "invalid identifier " + strconv.Quote(name),
				}
			}
		}
	}

	for i, a := range m.Aspects {
		for j, adv := range a.Advice {
			if _, err := aop.ParseKind(adv.Kind); err != nil {
				return &manifestError{
					path: "aspects[" + strconv.Itoa(i) + "].advice[" + strconv.Itoa(j) + "].kind",
					msg:  err.Error(),
				}
			}
		}
	}
	return nil
}
