package watch

import (
	"log/slog"
	"sort"

	"github.com/NicolasDP/git/internal/hash"
	"github.com/NicolasDP/git/internal/logfields"
	"github.com/NicolasDP/git/internal/refs"
	"github.com/NicolasDP/git/internal/repository"
)

// Snapshot maps full ref names to the object they resolve to.
type Snapshot map[string]hash.SHA1

// ChangeKind classifies a Change.
type ChangeKind string

const (
	Created ChangeKind = "created"
	Updated ChangeKind = "updated"
	Deleted ChangeKind = "deleted"
)

// Change is one ref that differs between two snapshots. Old is zero for
// created refs and New is zero for deleted ones.
type Change struct {
	Ref  string
	Kind ChangeKind
	Old  hash.SHA1
	New  hash.SHA1
}

// Take resolves HEAD and every branch, remote and tag of repo. Refs that
// fail to resolve are logged and left out.
func Take(repo *repository.Repository) (Snapshot, error) {
	snap := Snapshot{}
	for _, list := range []func() ([]refs.SpecRef, error){repo.ListBranches, repo.ListRemotes, repo.ListTags} {
		names, err := list()
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			snap.add(repo, name)
		}
	}
	snap.add(repo, refs.Head())
	return snap, nil
}

func (s Snapshot) add(repo *repository.Repository, name refs.SpecRef) {
	id, err := repo.Resolve(name)
	if err != nil {
		if !repository.IsNotFound(err) {
			slog.Warn("Skipping unresolvable ref", logfields.Ref(name.String()), logfields.Error(err))
		}
		return
	}
	s[name.String()] = id
}

// Diff lists the changes from old to cur, ordered by ref name.
func Diff(old, cur Snapshot) []Change {
	var changes []Change
	for name, id := range cur {
		prev, ok := old[name]
		switch {
		case !ok:
			changes = append(changes, Change{Ref: name, Kind: Created, New: id})
		case prev != id:
			changes = append(changes, Change{Ref: name, Kind: Updated, Old: prev, New: id})
		}
	}
	for name, id := range old {
		if _, ok := cur[name]; !ok {
			changes = append(changes, Change{Ref: name, Kind: Deleted, Old: id})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Ref < changes[j].Ref })
	return changes
}
