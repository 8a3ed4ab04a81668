package object

import (
	"bytes"

	"github.com/NicolasDP/git/internal/hash"
)

// Tag is an annotated tag.
type Tag struct {
	Object hash.SHA1
	Type   Kind
	Name   string
	Tagger *Person
	Extra  []Header
	// Message includes any trailing signature block.
	Message string
}

// Kind implements Object.
func (*Tag) Kind() Kind { return KindTag }

// ParseTag decodes an annotated tag body.
func ParseTag(body []byte) (*Tag, error) {
	headers, msg, err := splitHeaders(body)
	if err != nil {
		return nil, err
	}
	t := &Tag{Message: msg}
	var seenObject, seenType bool
	for _, h := range headers {
		switch h.Key {
		case "object":
			if t.Object, err = hash.FromHex(h.Value); err != nil {
				return nil, ErrMalformed.WithContext("reason", "invalid tag object id").WithContext("value", h.Value)
			}
			seenObject = true
		case "type":
			if t.Type, err = ParseKind(h.Value); err != nil {
				return nil, err
			}
			seenType = true
		case "tag":
			t.Name = h.Value
		case "tagger":
			p, err := ParsePerson(h.Value)
			if err != nil {
				return nil, err
			}
			t.Tagger = &p
		default:
			t.Extra = append(t.Extra, h)
		}
	}
	if !seenObject || !seenType {
		return nil, ErrMalformed.WithContext("reason", "tag missing object or type")
	}
	return t, nil
}

// Encode returns the tag body.
func (t *Tag) Encode() []byte {
	var buf bytes.Buffer
	writeHeader(&buf, "object", t.Object.String())
	writeHeader(&buf, "type", t.Type.String())
	writeHeader(&buf, "tag", t.Name)
	if t.Tagger != nil {
		writeHeader(&buf, "tagger", t.Tagger.String())
	}
	for _, h := range t.Extra {
		writeHeader(&buf, h.Key, h.Value)
	}
	buf.WriteByte('\n')
	buf.WriteString(t.Message)
	return buf.Bytes()
}
