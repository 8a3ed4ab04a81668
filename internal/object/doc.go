// Package object encodes and decodes the four git object kinds.
//
// Every object is stored as an envelope "<kind> <size>\x00<body>" and named by
// the SHA-1 of that envelope. Encoding is byte exact: decoding an object read
// from a repository and encoding it again yields the same bytes, so the id
// can be recomputed with ID.
package object
