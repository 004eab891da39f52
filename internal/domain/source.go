package domain

// TypeTagOffset and TypeTagSize locate the 4-byte type code inside raw file bytes.
const (
	TypeTagOffset = 8
	TypeTagSize   = 4

	// MinRawSize is the smallest raw payload that carries a full type tag.
	MinRawSize = TypeTagOffset + TypeTagSize
)

// SourceFile is one named file from the upstream document, already decoded
// to raw bytes.
type SourceFile struct {
	// Name is the display name, written into the container name field
	Name string

	// Raw is the decoded file content
	Raw []byte

	// Description is optional free text shown next to the codes
	Description string
}

// TypeTag returns the 4 bytes at [8,12) of Raw, or nil if Raw is too short.
func (f SourceFile) TypeTag() []byte {
	if len(f.Raw) < MinRawSize {
		return nil
	}
	return f.Raw[TypeTagOffset:MinRawSize]
}
