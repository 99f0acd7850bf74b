// Package manifest parses a project's *.project.json file into a Project
// tree. Parsing preserves the declaration order of child keys, since
// order-preservation of sibling instances is an observable, tested property
// of the snapshot pipeline that a plain map[string]*ProjectNode would lose.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// RawValue is a $properties entry before it has been resolved to a typed
// rbxvalue.Value. It may be "tagged" ({"Type": ..., "Value": ...}) or a bare
// JSON literal to be resolved against the reflection schema.
type RawValue struct {
	Tagged   bool
	TypeName string
	Raw      json.RawMessage
}

func (v *RawValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var probe struct {
			Type  *string         `json:"Type"`
			Value json.RawMessage `json:"Value"`
		}
		if err := json.Unmarshal(data, &probe); err == nil && probe.Type != nil {
			v.Tagged = true
			v.TypeName = *probe.Type
			v.Raw = probe.Value
			return nil
		}
	}
	v.Tagged = false
	v.Raw = append(json.RawMessage(nil), trimmed...)
	return nil
}

func (v RawValue) MarshalJSON() ([]byte, error) {
	if v.Tagged {
		return json.Marshal(struct {
			Type  string          `json:"Type"`
			Value json.RawMessage `json:"Value"`
		}{v.TypeName, v.Raw})
	}
	return v.Raw, nil
}

// ChildEntry is one declared child of a ProjectNode, in manifest order.
type ChildEntry struct {
	Name string
	Node *ProjectNode
}

// ProjectNode is the recursive description of one instance in a project
// manifest's tree.
type ProjectNode struct {
	ClassName              *string
	Path                   *string
	Properties             map[string]RawValue
	IgnoreUnknownInstances *bool
	Children               []ChildEntry
}

func (n *ProjectNode) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("project node must be a JSON object")
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("project node key must be a string")
		}

		switch key {
		case "$className":
			var s string
			if err := dec.Decode(&s); err != nil {
				return fmt.Errorf("$className: %w", err)
			}
			n.ClassName = &s
		case "$path":
			var s string
			if err := dec.Decode(&s); err != nil {
				return fmt.Errorf("$path: %w", err)
			}
			n.Path = &s
		case "$properties":
			var props map[string]RawValue
			if err := dec.Decode(&props); err != nil {
				return fmt.Errorf("$properties: %w", err)
			}
			n.Properties = props
		case "$ignoreUnknownInstances":
			var b bool
			if err := dec.Decode(&b); err != nil {
				return fmt.Errorf("$ignoreUnknownInstances: %w", err)
			}
			n.IgnoreUnknownInstances = &b
		default:
			if strings.HasPrefix(key, "$") {
				return fmt.Errorf("unknown project node key %q", key)
			}
			child := new(ProjectNode)
			if err := dec.Decode(child); err != nil {
				return fmt.Errorf("child %q: %w", key, err)
			}
			n.Children = append(n.Children, ChildEntry{Name: key, Node: child})
		}
	}

	// Consume the closing '}'.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func (n *ProjectNode) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	writeComma := func() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
	}
	if n.ClassName != nil {
		writeComma()
		b, _ := json.Marshal(*n.ClassName)
		buf.WriteString(`"$className":`)
		buf.Write(b)
	}
	if n.Path != nil {
		writeComma()
		b, _ := json.Marshal(*n.Path)
		buf.WriteString(`"$path":`)
		buf.Write(b)
	}
	if len(n.Properties) > 0 {
		writeComma()
		b, _ := json.Marshal(n.Properties)
		buf.WriteString(`"$properties":`)
		buf.Write(b)
	}
	if n.IgnoreUnknownInstances != nil {
		writeComma()
		b, _ := json.Marshal(*n.IgnoreUnknownInstances)
		buf.WriteString(`"$ignoreUnknownInstances":`)
		buf.Write(b)
	}
	for _, child := range n.Children {
		writeComma()
		nameB, _ := json.Marshal(child.Name)
		childB, err := json.Marshal(child.Node)
		if err != nil {
			return nil, err
		}
		buf.Write(nameB)
		buf.WriteByte(':')
		buf.Write(childB)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Project is a parsed *.project.json manifest.
type Project struct {
	Name            string        `json:"name"`
	Tree            *ProjectNode  `json:"tree"`
	GlobIgnorePaths []string      `json:"globIgnorePaths,omitempty"`
	ServePort       int           `json:"servePort,omitempty"`
	ServePlaceIds   []int         `json:"servePlaceIds,omitempty"`

	// Folder is the directory containing the manifest file, used to resolve
	// relative $path entries. It is not part of the JSON wire shape.
	Folder string `json:"-"`
}

// Parse parses manifest bytes read from manifestPath. Relative $path
// entries in the tree are resolved against the manifest's containing
// directory.
func Parse(data []byte, manifestPath string) (*Project, error) {
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", manifestPath, err)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("parse %s: missing required \"name\" field", manifestPath)
	}
	if p.Tree == nil {
		return nil, fmt.Errorf("parse %s: missing required \"tree\" field", manifestPath)
	}
	p.Folder = filepath.Dir(manifestPath)
	return &p, nil
}
