package encode

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jra3/instancesync/internal/rbxvalue"
	"github.com/jra3/instancesync/internal/snapshot"
)

// BinaryDecoder reads the format BinaryEncoder writes, back into
// snapshot.Instance trees. It satisfies both encode.Decoder and
// snapshot.ModelDecoder, so a compiled model file written by BinaryEncoder
// can be handed straight back to the model-file middleware.
type BinaryDecoder struct{}

func (d *BinaryDecoder) Decode(r io.Reader) (*snapshot.Instance, error) {
	br := bufio.NewReader(r)
	count, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, fmt.Errorf("decode: root count: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("decode: no root instance present")
	}
	inst, err := decodeInstance(br)
	if err != nil {
		return nil, err
	}
	// A model file is decoded into the single Instance the middleware
	// expects; additional siblings beyond the first root are discarded,
	// matching the modelFileMiddleware's "one instance per compiled model
	// file" contract.
	return inst, nil
}

func decodeInstance(r *bufio.Reader) (*snapshot.Instance, error) {
	name, err := readString(r)
	if err != nil {
		return nil, fmt.Errorf("decode: name: %w", err)
	}
	className, err := readString(r)
	if err != nil {
		return nil, fmt.Errorf("decode: class name: %w", err)
	}
	propCount, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("decode: property count: %w", err)
	}
	props := make(map[string]rbxvalue.Value, propCount)
	for i := uint64(0); i < propCount; i++ {
		key, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("decode: property key: %w", err)
		}
		val, err := readValue(r)
		if err != nil {
			return nil, fmt.Errorf("decode: property %s: %w", key, err)
		}
		props[key] = val
	}
	childCount, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("decode: child count: %w", err)
	}
	children := make([]*snapshot.Instance, 0, childCount)
	for i := uint64(0); i < childCount; i++ {
		child, err := decodeInstance(r)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return &snapshot.Instance{
		Name:       name,
		ClassName:  className,
		Properties: props,
		Children:   children,
	}, nil
}

func readValue(r *bufio.Reader) (rbxvalue.Value, error) {
	typeName, err := readString(r)
	if err != nil {
		return rbxvalue.Value{}, err
	}
	switch rbxvalue.Type(typeName) {
	case rbxvalue.TypeString:
		s, err := readString(r)
		return rbxvalue.String(s), err
	case rbxvalue.TypeBool:
		n, err := binary.ReadUvarint(r)
		return rbxvalue.Bool(n != 0), err
	case rbxvalue.TypeInt:
		var i int64
		err := binary.Read(r, binary.LittleEndian, &i)
		return rbxvalue.Int(i), err
	case rbxvalue.TypeEnumValue:
		var i int64
		err := binary.Read(r, binary.LittleEndian, &i)
		return rbxvalue.EnumValue(i), err
	case rbxvalue.TypeFloat:
		var f float64
		err := binary.Read(r, binary.LittleEndian, &f)
		return rbxvalue.Float(f), err
	case rbxvalue.TypeVector3:
		var vec [3]float64
		err := binary.Read(r, binary.LittleEndian, &vec)
		return rbxvalue.Vector3(vec[0], vec[1], vec[2]), err
	case rbxvalue.TypeColor3:
		var vec [3]float64
		err := binary.Read(r, binary.LittleEndian, &vec)
		return rbxvalue.Color3(vec[0], vec[1], vec[2]), err
	case rbxvalue.TypeRef:
		s, err := readString(r)
		return rbxvalue.Ref(s), err
	default:
		return rbxvalue.Value{}, fmt.Errorf("decode: unsupported value type %q", typeName)
	}
}

func readString(r *bufio.Reader) (string, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
