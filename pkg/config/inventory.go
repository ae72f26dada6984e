package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInventoryRead the inventory file is missing, unreadable, not YAML or empty.
	ErrInventoryRead = errors.New("inventory read failed")
	// ErrInventoryParse the inventory is YAML but not a sequence of entries.
	ErrInventoryParse = errors.New("inventory parse failed")
)

func init() {
	// report yaml keys ("endpoint") instead of Go field names in validation errors
	valid.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
}

// ClusterDescriptor one `cluster:` entry of the inventory, as written by the operator.
type ClusterDescriptor struct {
	Endpoint string `yaml:"endpoint" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Port     int    `yaml:"port" validate:"omitempty,min=1,max=65535"`
	// Name pins the cluster_name label and skips the identity lookup.
	Name string `yaml:"name"`

	// Line is the 1-based line of the entry in the inventory file.
	Line int `yaml:"-"`
}

// Validate reports the first required key that is missing.
func (d ClusterDescriptor) Validate() error {
	err := valid.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return fmt.Errorf("missing key (%s)", fe.Field())
		}
		return fmt.Errorf("invalid key (%s): failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return err
}

// String renders the entry for log lines.
func (d ClusterDescriptor) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "{endpoint: %q, user: %q", d.Endpoint, d.User)
	if d.Port != 0 {
		fmt.Fprintf(&b, ", port: %d", d.Port)
	}
	if d.Name != "" {
		fmt.Fprintf(&b, ", name: %q", d.Name)
	}
	b.WriteString("}")
	return b.String()
}

// UnknownEntry an inventory item that is not a cluster entry.
type UnknownEntry struct {
	Line int
	Text string
}

// Inventory the decoded inventory file, in file order.
type Inventory struct {
	Clusters []ClusterDescriptor
	Unknown  []UnknownEntry
}

// LoadInventory reads the cluster inventory at path.
// Errors wrap ErrInventoryRead or ErrInventoryParse.
func LoadInventory(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInventoryRead, err)
	}
	return ParseInventory(data)
}

// ParseInventory decodes inventory YAML. The document must be a sequence; every item that
// is a mapping with a `cluster` key becomes a descriptor, everything else is Unknown.
// Descriptors are not validated here so that the registry can log and skip each one.
func ParseInventory(data []byte) (*Inventory, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInventoryRead, err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInventoryRead)
	}
	doc := root.Content[0]
	if doc.Kind == yaml.ScalarNode && doc.Tag == "!!null" {
		return nil, fmt.Errorf("%w: file is empty", ErrInventoryRead)
	}
	if doc.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: line %d: expected a list of entries", ErrInventoryParse, doc.Line)
	}

	inv := &Inventory{}
	for _, item := range doc.Content {
		value := clusterValue(item)
		if value == nil {
			inv.Unknown = append(inv.Unknown, UnknownEntry{Line: item.Line, Text: render(item)})
			continue
		}
		d := ClusterDescriptor{Line: item.Line}
		if value.Kind == yaml.MappingNode {
			if err := value.Decode(&d); err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrInventoryParse, item.Line, err)
			}
		}
		// a non-mapping cluster value decodes to an empty descriptor and fails validation later
		inv.Clusters = append(inv.Clusters, d)
	}
	return inv, nil
}

func clusterValue(item *yaml.Node) *yaml.Node {
	if item.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(item.Content); i += 2 {
		if item.Content[i].Value == "cluster" {
			return item.Content[i+1]
		}
	}
	return nil
}

func render(n *yaml.Node) string {
	out, err := yaml.Marshal(n)
	if err != nil {
		return n.Value
	}
	return strings.TrimSpace(strings.ReplaceAll(string(out), "\n", " "))
}
