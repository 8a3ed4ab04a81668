package object

import (
	"encoding/base64"
	"testing"
)

// smockTree is a complete tree envelope taken from a real repository.
const smockTree = "dHJlZSAyNjMAMTAwNjQ0IC5naXRpZ25vcmUAqdN8VgxquNSvv0ftpkPoxC6FdxYxMDA3NTUgLnRyYXZpcy1naC1wYWdlLnNoAEbDT38yVdmK+SQJ/JgA2VeLfPQTMTAwNjQ0IC50cmF2aXMueW1sAPKTh71UE3UZ1pX/I+m45CZPg/1MMTAwNjQ0IENhcmdvLnRvbWwAIR9U4vc2yn3bOSfhZsDykymwSE8xMDA2NDQgUkVBRE1FLm1kAFCdqnEhZDulIY7WRPP9DExTXeJGNDAwMDAgc3JjALdX29xAs12Qu5uvvpteC90XP7WINDAwMDAgdGVzdF9yZWYAceDFuGz0fxAO5C2fua8aqLT+1dE="

const smockTreeID = "2ef959163566f29b4a5acb8cbe217c8b036747bc"

const signedMerge = "tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904\n" +
	"parent 3b18e512dba79e4c8300dd08aeb37f8e728b8dad\n" +
	"parent e69de29bb2d1d6434b8b29ae775ad8c2e48c5391\n" +
	"author Nicolas Di Prima <nicolas@di-prima.fr> 1467471225 +0100\n" +
	"committer Nicolas Di Prima <nicolas@di-prima.fr> 1467471300 -0000\n" +
	"encoding ISO-8859-1\n" +
	"gpgsig -----BEGIN PGP SIGNATURE-----\n \n iQEcBAABAgAGBQJXd1\n -----END PGP SIGNATURE-----\n" +
	"\n" +
	"Merge branch 'dev'\n\nBody line\n"

const signedMergeID = "dce17af69f7367e5fb7be25e319b52f764486581"

const releaseTag = "object 3b18e512dba79e4c8300dd08aeb37f8e728b8dad\n" +
	"type commit\n" +
	"tag v0.1.0\n" +
	"tagger Nicolas Di Prima <nicolas@di-prima.fr> 1467471225 +0100\n" +
	"\n" +
	"release 0.1.0\n"

const releaseTagID = "ba42911806ad9fa95662ac324194538abea1789e"

func mustBase64(t *testing.T, s string) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return b
}
