// Package content defines the document payload passed between the fetcher,
// the cache store and the resolution controller.
package content

// Blob is an opaque UTF-8 document. Nothing in the shell interprets its structure.
type Blob struct {
	Text string
}

// FromBytes wraps raw bytes as a Blob.
func FromBytes(b []byte) Blob {
	return Blob{Text: string(b)}
}

// Len returns the byte length of the document.
func (b Blob) Len() int {
	return len(b.Text)
}

// Bytes returns the document bytes.
func (b Blob) Bytes() []byte {
	return []byte(b.Text)
}
