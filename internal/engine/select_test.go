package engine

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.proto":            "",
		"nested/b.proto":     "",
		"nested/c.proto.bak": "",
		"service.v1.proto":   "",
		"notes.txt":          "",
	})

	tests := []struct {
		filter string
		want   []string
	}{
		{".*", []string{"a.proto", "nested/b.proto", "service.v1.proto"}},
		{"^b$", []string{"nested/b.proto"}},
		{"v1", []string{"service.v1.proto"}},
		{"^zzz$", nil},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			files, err := SelectFiles(root, regexp.MustCompile(tt.filter))
			require.NoError(t, err)
			var rel []string
			for _, f := range files {
				r, err := filepath.Rel(root, f)
				require.NoError(t, err)
				rel = append(rel, filepath.ToSlash(r))
			}
			assert.Equal(t, tt.want, rel)
		})
	}
}

func TestSelectFilesMissingRoot(t *testing.T) {
	_, err := SelectFiles(filepath.Join(t.TempDir(), "nope"), regexp.MustCompile(".*"))
	assert.Error(t, err)
}

func TestParseReferences(t *testing.T) {
	content := []byte(`syntax = "proto3";

package acme.api;

import "acme/common/types.proto";
import public "acme/common/money.proto";
  import weak "legacy/old.proto" ;
// import "commented/out.proto";
import "acme/common/types.proto";
import "google/protobuf/any-v2.proto";

message Foo {}
`)

	got := ParseReferences(content)
	assert.Equal(t, []string{
		"acme/common/types.proto",
		"acme/common/money.proto",
		"legacy/old.proto",
		"google/protobuf/any-v2.proto",
	}, got)
}

func TestParseReferencesSameLine(t *testing.T) {
	content := []byte(`syntax = "proto3"; import "a.proto";
/* c */ import "c.proto";
package p; import public "d/e.proto"; // import "trailing.proto";
/* import "inside/block.proto";
import "inside/block2.proto"; */
message M {} // done
`)

	assert.Equal(t, []string{"a.proto", "c.proto", "d/e.proto"}, ParseReferences(content))
}

func TestResolveReferencePrefersProtoDir(t *testing.T) {
	work := writeTree(t, map[string]string{
		"proto/x/a.proto": "inner",
		"x/a.proto":       "outer",
		"y/b.proto":       "root only",
	})
	protoRoot := filepath.Join(work, "proto")

	target, base, ok := resolveReference(work, protoRoot, "x/a.proto")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(protoRoot, "x", "a.proto"), target)
	assert.Equal(t, protoRoot, base)

	target, base, ok = resolveReference(work, protoRoot, "y/b.proto")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(work, "y", "b.proto"), target)
	assert.Equal(t, work, base)

	_, _, ok = resolveReference(work, protoRoot, "google/protobuf/empty.proto")
	assert.False(t, ok)
	_, _, ok = resolveReference(work, protoRoot, "../escape.proto")
	assert.False(t, ok)
}
