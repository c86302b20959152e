// Package yamlschema loads checked-schema documents: YAML renditions
// of type-checked ASN.1 modules with bounds already computed by an
// external constraint checker. The loader materialises both the type
// tree and its mirrored checker; it validates structure only and
// trusts the bounds as given.
package yamlschema

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-asn1gen/pkg/asn1"
)

type document struct {
	Modules map[string]map[string]node `yaml:"modules"`
}

type node struct {
	Kind     string       `yaml:"type"`
	Minimum  *int64       `yaml:"minimum"`
	Maximum  *int64       `yaml:"maximum"`
	Values   []string     `yaml:"values"`
	Members  []memberNode `yaml:"members"`
	Element  *node        `yaml:"element"`
	TypeName string       `yaml:"type-name"`
	Module   string       `yaml:"module"`
}

type memberNode struct {
	Node     node   `yaml:",inline"`
	Name     string `yaml:"name"`
	Optional bool   `yaml:"optional"`
	Default  any    `yaml:"default"`
}

// LoadFile reads and parses a checked-schema document from disk.
func LoadFile(path string) (asn1.Modules, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("yamlschema: open %s: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// Load parses a checked-schema document.
func Load(r io.Reader) (asn1.Modules, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("yamlschema: parse document: %w", err)
	}
	if len(doc.Modules) == 0 {
		return nil, fmt.Errorf("yamlschema: document has no modules")
	}

	modules := make(asn1.Modules, len(doc.Modules))
	for moduleName, types := range doc.Modules {
		compiled := make(map[string]asn1.CompiledType, len(types))
		for typeName, n := range types {
			t, err := buildType(n)
			if err != nil {
				return nil, fmt.Errorf("yamlschema: %s.%s: %w", moduleName, typeName, err)
			}
			compiled[typeName] = asn1.CompiledType{
				Type:    t,
				Checker: buildChecker("", n),
			}
		}
		modules[moduleName] = compiled
	}
	return modules, nil
}

func buildType(n node) (asn1.Type, error) {
	switch n.Kind {
	case "integer":
		return asn1.Integer{}, nil
	case "boolean":
		return asn1.Boolean{}, nil
	case "real":
		return asn1.Real{}, nil
	case "null":
		return asn1.Null{}, nil
	case "octet-string":
		return asn1.OctetString{}, nil
	case "utf8-string":
		return asn1.UTF8String{}, nil
	case "enumerated":
		if len(n.Values) == 0 {
			return nil, fmt.Errorf("enumerated needs values")
		}
		return asn1.Enumerated{Values: n.Values}, nil
	case "sequence":
		members, err := buildMembers(n.Members)
		if err != nil {
			return nil, err
		}
		return asn1.Sequence{Members: members}, nil
	case "choice":
		members, err := buildMembers(n.Members)
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			return nil, fmt.Errorf("choice needs members")
		}
		return asn1.Choice{Alternatives: members}, nil
	case "sequence-of":
		if n.Element == nil {
			return nil, fmt.Errorf("sequence-of needs an element")
		}
		element, err := buildType(*n.Element)
		if err != nil {
			return nil, err
		}
		return asn1.SequenceOf{Element: element}, nil
	case "ref":
		if n.TypeName == "" || n.Module == "" {
			return nil, fmt.Errorf("ref needs type-name and module")
		}
		return asn1.TypeRef{TypeName: n.TypeName, ModuleName: n.Module}, nil
	case "":
		return nil, fmt.Errorf("missing type")
	default:
		return nil, fmt.Errorf("unknown type %q", n.Kind)
	}
}

func buildMembers(nodes []memberNode) ([]asn1.Member, error) {
	members := make([]asn1.Member, 0, len(nodes))
	for _, mn := range nodes {
		if mn.Name == "" {
			return nil, fmt.Errorf("member without a name")
		}
		t, err := buildType(mn.Node)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", mn.Name, err)
		}
		members = append(members, asn1.Member{
			Name:     mn.Name,
			Type:     t,
			Optional: mn.Optional,
			Default:  normalizeDefault(mn.Default),
		})
	}
	return members, nil
}

// buildChecker mirrors the node tree into bound carriers, one checker
// per composite member so the generator can look them up by name.
func buildChecker(name string, n node) *asn1.Checker {
	c := &asn1.Checker{
		Name:    name,
		Minimum: n.Minimum,
		Maximum: n.Maximum,
	}
	for _, mn := range n.Members {
		c.Members = append(c.Members, buildChecker(mn.Name, mn.Node))
	}
	if n.Element != nil {
		c.Element = buildChecker("", *n.Element)
	}
	return c
}

// normalizeDefault maps YAML scalar defaults onto the int64/bool forms
// the generator formats into C literals.
func normalizeDefault(v any) any {
	switch value := v.(type) {
	case int:
		return int64(value)
	case int64, bool, nil:
		return value
	default:
		return v
	}
}
