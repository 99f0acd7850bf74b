// Package encode serializes a reconciled tree.Tree subtree to a writer, and
// decodes a compiled model file back into a snapshot.Instance. Two encodings
// are implemented — a compact binary walk and an XML walk — selected by the
// CLI's build command from the output file's extension. Real scene file
// formats are out of scope, so both encodings here are neutral,
// self-describing formats rather than an attempt at binary compatibility
// with anything external.
package encode

import (
	"io"

	"github.com/jra3/instancesync/internal/snapshot"
	"github.com/jra3/instancesync/internal/tree"
)

// Encoder writes roots (and their descendants) from t to w.
type Encoder interface {
	Encode(w io.Writer, t *tree.Tree, roots []tree.Id) error
}

// Decoder reads a single Instance (and its descendants) from r, for the
// model-file snapshot middleware to consume.
type Decoder interface {
	Decode(r io.Reader) (*snapshot.Instance, error)
}

// ForExtension picks the Encoder matching a build output path's extension,
// or nil if ext names no known kind.
func ForExtension(ext string) Encoder {
	switch ext {
	case ".bin", ".rbxm", ".rbxl":
		return &BinaryEncoder{}
	case ".xml", ".rbxmx", ".rbxlx":
		return &XMLEncoder{}
	default:
		return nil
	}
}
