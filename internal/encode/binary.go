package encode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jra3/instancesync/internal/rbxvalue"
	"github.com/jra3/instancesync/internal/tree"
)

// BinaryEncoder writes a compact, length-prefixed walk of a tree: each
// instance is [nameLen,name][classLen,class][propCount][prop]*[childCount],
// followed immediately by its children's own encodings, depth-first. There
// is no version header or magic number — this is a neutral, in-repo-only
// format, not an attempt at wire compatibility with any real scene format.
type BinaryEncoder struct{}

func (e *BinaryEncoder) Encode(w io.Writer, t *tree.Tree, roots []tree.Id) error {
	if err := writeUvarint(w, uint64(len(roots))); err != nil {
		return err
	}
	for _, id := range roots {
		if err := e.encodeInstance(w, t, id); err != nil {
			return err
		}
	}
	return nil
}

func (e *BinaryEncoder) encodeInstance(w io.Writer, t *tree.Tree, id tree.Id) error {
	view, ok := t.Get(id)
	if !ok {
		return fmt.Errorf("encode: unknown instance %s", id)
	}
	if err := writeString(w, view.Name); err != nil {
		return err
	}
	if err := writeString(w, view.ClassName); err != nil {
		return err
	}
	if err := writeUvarint(w, uint64(len(view.Properties))); err != nil {
		return err
	}
	for key, val := range view.Properties {
		if err := writeString(w, key); err != nil {
			return err
		}
		if err := writeValue(w, val); err != nil {
			return err
		}
	}
	if err := writeUvarint(w, uint64(len(view.Children))); err != nil {
		return err
	}
	for _, child := range view.Children {
		if err := e.encodeInstance(w, t, child); err != nil {
			return err
		}
	}
	return nil
}

func writeValue(w io.Writer, v rbxvalue.Value) error {
	if err := writeString(w, string(v.Type())); err != nil {
		return err
	}
	switch v.Type() {
	case rbxvalue.TypeString:
		s, _ := v.AsString()
		return writeString(w, s)
	case rbxvalue.TypeBool:
		b, _ := v.AsBool()
		var n uint64
		if b {
			n = 1
		}
		return writeUvarint(w, n)
	case rbxvalue.TypeInt, rbxvalue.TypeEnumValue:
		i, _ := v.AsInt()
		return binary.Write(w, binary.LittleEndian, i)
	case rbxvalue.TypeFloat:
		f, _ := v.AsFloat()
		return binary.Write(w, binary.LittleEndian, f)
	case rbxvalue.TypeVector3, rbxvalue.TypeColor3:
		vec, _ := v.AsVector3()
		return binary.Write(w, binary.LittleEndian, vec)
	case rbxvalue.TypeRef:
		s, _ := v.AsRef()
		return writeString(w, s)
	default:
		return fmt.Errorf("encode: unsupported value type %q", v.Type())
	}
}

func writeString(w io.Writer, s string) error {
	if err := writeUvarint(w, uint64(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func writeUvarint(w io.Writer, n uint64) error {
	var buf [binary.MaxVarintLen64]byte
	size := binary.PutUvarint(buf[:], n)
	_, err := w.Write(buf[:size])
	return err
}
