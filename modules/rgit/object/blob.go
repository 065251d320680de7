package object

// Blob is raw file content. Unlike the richer object kinds it has no
// header fields — spec.md's data model stores blob payload verbatim, with
// no compression or chunking layer — so there is nothing to encode or
// decode beyond the Type/payload split object.go already does.
type Blob struct {
	Content []byte
}

func (b *Blob) Encode() []byte { return b.Content }

func DecodeBlob(payload []byte) *Blob {
	return &Blob{Content: payload}
}
