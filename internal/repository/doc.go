// Package repository reads and writes an on-disk git directory without
// shelling out to git.
//
// A Repository combines the reference files under refs/ (and packed-refs)
// with an object store made of loose objects and packfiles. Reads go through
// the storage package; writes create loose objects and update references
// through a lock file, the way git itself does.
package repository
