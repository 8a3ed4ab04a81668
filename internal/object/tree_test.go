package object

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicolasDP/git/internal/hash"
)

func TestParseTree_RealTree(t *testing.T) {
	raw := mustBase64(t, smockTree)
	assert.Equal(t, smockTreeID, hash.Sum(raw).String())

	kind, body, err := DecodeEnvelope(raw)
	require.NoError(t, err)
	require.Equal(t, KindTree, kind)

	tree, err := ParseTree(body)
	require.NoError(t, err)
	require.Equal(t, 7, tree.Len())

	names := make([]string, 0, tree.Len())
	for _, e := range tree.Entries() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{".gitignore", ".travis-gh-page.sh", ".travis.yml", "Cargo.toml", "README.md", "src", "test_ref"}, names)

	script, ok := tree.Get(".travis-gh-page.sh")
	require.True(t, ok)
	assert.Equal(t, ModeExecutable, script.Mode)
	assert.Equal(t, "46c34f7f3255d98af92409fc9800d9578b7cf413", script.Hash.String())

	assert.Equal(t, body, tree.Encode())
	assert.Equal(t, smockTreeID, IDOf(tree).String())

	lines := strings.Split(strings.TrimSuffix(tree.String(), "\n"), "\n")
	assert.Equal(t, "040000 tree b757dbdc40b35d90bb9bafbe9b5e0bdd173fb588\tsrc", lines[5])
	assert.Equal(t, "100644 blob a9d37c560c6ab8d4afbf47eda643e8c42e857716\t.gitignore", lines[0])
}

func TestTree_CanonicalOrder(t *testing.T) {
	id := hash.MustFromHex("e69de29bb2d1d6434b8b29ae775ad8c2e48c5391")
	tree := NewTree(
		TreeEntry{Mode: ModeFile, Name: "foo.c", Hash: id},
		TreeEntry{Mode: ModeDir, Name: "foo", Hash: id},
		TreeEntry{Mode: ModeFile, Name: "foo-bar", Hash: id},
	)
	var names []string
	for _, e := range tree.Entries() {
		names = append(names, e.Name)
	}
	// "foo/" sorts after "foo.c" because '/' > '.'
	assert.Equal(t, []string{"foo-bar", "foo.c", "foo"}, names)
}

func TestTree_SetOperations(t *testing.T) {
	a := hash.MustFromHex("1111111111111111111111111111111111111111")
	b := hash.MustFromHex("2222222222222222222222222222222222222222")

	left := NewTree(
		TreeEntry{Mode: ModeFile, Name: "README.md", Hash: a},
		TreeEntry{Mode: ModeDir, Name: "src", Hash: a},
	)
	right := NewTree(
		TreeEntry{Mode: ModeFile, Name: "README.md", Hash: b},
		TreeEntry{Mode: ModeFile, Name: "LICENSE", Hash: b},
	)

	diff := left.Difference(right)
	require.Equal(t, 1, diff.Len())
	_, ok := diff.Get("src")
	assert.True(t, ok)

	inter := left.Intersection(right)
	require.Equal(t, 1, inter.Len())
	readme, _ := inter.Get("README.md")
	assert.Equal(t, a, readme.Hash)

	union := left.Union(right)
	assert.Equal(t, 3, union.Len())
	readme, _ = union.Get("README.md")
	assert.Equal(t, a, readme.Hash)

	assert.True(t, left.Insert(TreeEntry{Mode: ModeExecutable, Name: "README.md", Hash: b}))
	readme, _ = left.Get("README.md")
	assert.Equal(t, ModeExecutable, readme.Mode)
	assert.False(t, left.Insert(TreeEntry{Mode: ModeSymlink, Name: "link", Hash: b}))
	assert.Equal(t, 3, left.Len())

	assert.True(t, left.Remove("link"))
	assert.False(t, left.Remove("link"))
	_, ok = left.Get("link")
	assert.False(t, ok)
}

func TestParseTree_Invalid(t *testing.T) {
	id := make([]byte, hash.Size)
	entry := func(mode, name string) []byte {
		return append([]byte(mode+" "+name+"\x00"), id...)
	}
	tests := map[string][]byte{
		"no mode":        []byte("100644"),
		"bad mode":       entry("100600", "a"),
		"no name end":    []byte("100644 a"),
		"short id":       []byte("100644 a\x00abc"),
		"slash in name":  entry("100644", "a/b"),
		"out of order":   append(entry("100644", "b"), entry("100644", "a")...),
		"dir before dot": append(entry("40000", "foo"), entry("100644", "foo.c")...),
		"duplicate name": append(entry("100644", "a"), entry("100644", "a")...),
		"file and dir":   append(append(entry("100644", "a"), entry("100644", "a-b")...), entry("40000", "a")...),
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTree(body)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestModePermissions(t *testing.T) {
	assert.Equal(t, "rwxr-xr-x", ModeExecutable.Permissions().String())
	assert.Equal(t, "rw-r--r--", ModeFile.Permissions().String())
	assert.Equal(t, "rw-rw-r--", ModeGroupWritable.Permissions().String())
	assert.True(t, ModeExecutable.Permissions().User.Has(PermExecute|PermRead))
	assert.False(t, ModeFile.Permissions().Other.Has(PermWrite))

	assert.Equal(t, "040000", ModeDir.String())
	assert.Equal(t, KindTree, ModeDir.ObjectKind())
	assert.Equal(t, KindCommit, ModeGitlink.ObjectKind())
	assert.Equal(t, KindBlob, ModeSymlink.ObjectKind())

	m, err := ParseMode("40000")
	require.NoError(t, err)
	assert.Equal(t, ModeDir, m)
	_, err = ParseMode("9")
	assert.ErrorIs(t, err, ErrMalformed)
}
