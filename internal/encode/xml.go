package encode

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/jra3/instancesync/internal/rbxvalue"
	"github.com/jra3/instancesync/internal/snapshot"
	"github.com/jra3/instancesync/internal/tree"
)

// xmlProperty is one <Property> element: Name/Type attributes, text content
// the value's decimal or literal representation.
type xmlProperty struct {
	XMLName xml.Name `xml:"Property"`
	Name    string   `xml:"name,attr"`
	Type    string   `xml:"type,attr"`
	Value   string   `xml:",chardata"`
}

// xmlItem is one <Item> element: a recursive instance node, mirroring the
// nesting the real XML scene format uses for its own <Item> elements.
type xmlItem struct {
	XMLName    xml.Name      `xml:"Item"`
	ClassName  string        `xml:"class,attr"`
	Name       string        `xml:"name,attr"`
	Properties []xmlProperty `xml:"Properties>Property"`
	Children   []xmlItem     `xml:"Item"`
}

// XMLEncoder writes a tree as nested <Item> elements via encoding/xml.
type XMLEncoder struct{}

func (e *XMLEncoder) Encode(w io.Writer, t *tree.Tree, roots []tree.Id) error {
	type document struct {
		XMLName xml.Name  `xml:"roblox"`
		Items   []xmlItem `xml:"Item"`
	}
	doc := document{}
	for _, id := range roots {
		item, err := buildXMLItem(t, id)
		if err != nil {
			return err
		}
		doc.Items = append(doc.Items, *item)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(doc)
}

func buildXMLItem(t *tree.Tree, id tree.Id) (*xmlItem, error) {
	view, ok := t.Get(id)
	if !ok {
		return nil, fmt.Errorf("encode: unknown instance %s", id)
	}
	item := &xmlItem{ClassName: view.ClassName, Name: view.Name}
	for key, val := range view.Properties {
		item.Properties = append(item.Properties, xmlProperty{
			Name:  key,
			Type:  string(val.Type()),
			Value: valueText(val),
		})
	}
	for _, child := range view.Children {
		childItem, err := buildXMLItem(t, child)
		if err != nil {
			return nil, err
		}
		item.Children = append(item.Children, *childItem)
	}
	return item, nil
}

func valueText(v rbxvalue.Value) string {
	switch v.Type() {
	case rbxvalue.TypeString:
		s, _ := v.AsString()
		return s
	case rbxvalue.TypeBool:
		b, _ := v.AsBool()
		return fmt.Sprintf("%v", b)
	case rbxvalue.TypeInt, rbxvalue.TypeEnumValue:
		i, _ := v.AsInt()
		return fmt.Sprintf("%d", i)
	case rbxvalue.TypeFloat:
		f, _ := v.AsFloat()
		return fmt.Sprintf("%g", f)
	case rbxvalue.TypeVector3, rbxvalue.TypeColor3:
		vec, _ := v.AsVector3()
		return fmt.Sprintf("%g,%g,%g", vec[0], vec[1], vec[2])
	case rbxvalue.TypeRef:
		s, _ := v.AsRef()
		return s
	default:
		return ""
	}
}

// XMLDecoder reads the format XMLEncoder writes, back into a single
// snapshot.Instance (the model-file middleware's contract).
type XMLDecoder struct{}

func (d *XMLDecoder) Decode(r io.Reader) (*snapshot.Instance, error) {
	type document struct {
		XMLName xml.Name  `xml:"roblox"`
		Items   []xmlItem `xml:"Item"`
	}
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(doc.Items) == 0 {
		return nil, fmt.Errorf("decode: no root instance present")
	}
	return instanceFromXMLItem(&doc.Items[0])
}

func instanceFromXMLItem(item *xmlItem) (*snapshot.Instance, error) {
	inst := &snapshot.Instance{
		Name:       item.Name,
		ClassName:  item.ClassName,
		Properties: map[string]rbxvalue.Value{},
	}
	for _, p := range item.Properties {
		val, err := valueFromText(rbxvalue.Type(p.Type), p.Value)
		if err != nil {
			return nil, fmt.Errorf("decode: property %s: %w", p.Name, err)
		}
		inst.Properties[p.Name] = val
	}
	for i := range item.Children {
		child, err := instanceFromXMLItem(&item.Children[i])
		if err != nil {
			return nil, err
		}
		inst.Children = append(inst.Children, child)
	}
	return inst, nil
}

func valueFromText(typ rbxvalue.Type, text string) (rbxvalue.Value, error) {
	switch typ {
	case rbxvalue.TypeString:
		return rbxvalue.String(text), nil
	case rbxvalue.TypeBool:
		return rbxvalue.Bool(text == "true"), nil
	case rbxvalue.TypeInt:
		var i int64
		_, err := fmt.Sscanf(text, "%d", &i)
		return rbxvalue.Int(i), err
	case rbxvalue.TypeEnumValue:
		var i int64
		_, err := fmt.Sscanf(text, "%d", &i)
		return rbxvalue.EnumValue(i), err
	case rbxvalue.TypeFloat:
		var f float64
		_, err := fmt.Sscanf(text, "%g", &f)
		return rbxvalue.Float(f), err
	case rbxvalue.TypeVector3:
		var x, y, z float64
		_, err := fmt.Sscanf(text, "%g,%g,%g", &x, &y, &z)
		return rbxvalue.Vector3(x, y, z), err
	case rbxvalue.TypeColor3:
		var r, g, b float64
		_, err := fmt.Sscanf(text, "%g,%g,%g", &r, &g, &b)
		return rbxvalue.Color3(r, g, b), err
	case rbxvalue.TypeRef:
		return rbxvalue.Ref(text), nil
	default:
		return rbxvalue.Value{}, fmt.Errorf("unsupported value type %q", typ)
	}
}
