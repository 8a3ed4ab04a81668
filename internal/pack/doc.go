// Package pack reads git pack files and their .idx indexes.
//
// An index maps object ids to offsets inside the matching pack. Both index
// versions are supported. Objects inside a pack may be stored as deltas
// against another object of the same pack (OFS_DELTA, addressed by a
// relative offset, or REF_DELTA, addressed by id); Pack resolves them.
package pack
