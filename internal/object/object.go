package object

import (
	"github.com/NicolasDP/git/internal/hash"
)

// Object is a decoded commit, tree, blob or tag.
type Object interface {
	Kind() Kind
	Encode() []byte
}

// Decode parses body as an object of the given kind.
func Decode(kind Kind, body []byte) (Object, error) {
	var (
		o   Object
		err error
	)
	switch kind {
	case KindCommit:
		o, err = ParseCommit(body)
	case KindTree:
		o, err = ParseTree(body)
	case KindBlob:
		o = &Blob{Data: body}
	case KindTag:
		o, err = ParseTag(body)
	default:
		return nil, ErrMalformed.WithContext("reason", "unknown object kind").WithContext("kind", int(kind))
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// IDOf returns the id of an object.
func IDOf(o Object) hash.SHA1 {
	return ID(o.Kind(), o.Encode())
}

// Pretty renders an object for cat-file -p: trees as a listing, every other
// kind as its raw body.
func Pretty(o Object) []byte {
	if t, ok := o.(*Tree); ok {
		return []byte(t.String())
	}
	return o.Encode()
}
