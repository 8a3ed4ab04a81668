package object

// Blob is file content.
type Blob struct {
	Data []byte
}

// Kind implements Object.
func (*Blob) Kind() Kind { return KindBlob }

// Encode returns the content.
func (b *Blob) Encode() []byte { return b.Data }
