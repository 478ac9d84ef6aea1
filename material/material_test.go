package material

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestList_IndexOf_ByIdentity(t *testing.T) {
	grass := NewSimple("grass")
	rock := NewSimple("rock")
	otherGrass := NewSimple("grass")

	l := List{grass, rock}

	require.Equal(t, 0, l.IndexOf(grass))
	require.Equal(t, 1, l.IndexOf(rock))
	// Same name, distinct identity.
	require.Equal(t, -1, l.IndexOf(otherGrass))
	require.Equal(t, -1, l.IndexOf(Default))
}

func TestList_Dedup(t *testing.T) {
	grass := NewSimple("grass")
	rock := NewSimple("rock")

	l := List{grass, rock, grass, rock, grass}
	out, remap := l.Dedup()

	require.Equal(t, List{grass, rock}, out)
	require.Equal(t, []int{0, 1, 0, 1, 0}, remap)
}

func TestList_DedupEmpty(t *testing.T) {
	out, remap := List{}.Dedup()
	require.Empty(t, out)
	require.Empty(t, remap)
}
