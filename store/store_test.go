package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"badc0de.net/pkg/go-redmoon/lst"
	"badc0de.net/pkg/go-redmoon/rle"
)

func openTest(t *testing.T, opts Options) *Store {
	t.Helper()
	s, err := Open(":memory:", opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Reset(context.Background()))
	return s
}

var testResources = []rle.Resource{
	{FileNumber: 1, Index: 0, Length: 50, OffsetX: 3, OffsetY: 4, Width: 2, Height: 1, Pixels: []byte{0x00, 0xF8, 0x00, 0x00}},
	{FileNumber: 1, Index: 4, Width: 8000, Height: 1, Pixels: []byte{0x00, 0x00}},
}

func TestRGBA(t *testing.T) {
	require.Equal(t, []byte{255, 0, 0, 255, 0, 0, 0, 0}, RGBA(&testResources[0]))
	require.Equal(t, []byte{0, 0, 0, 0}, RGBA(&testResources[1]))
}

func TestInsertAndQuery(t *testing.T) {
	for _, compress := range []bool{false, true} {
		ctx := context.Background()
		s := openTest(t, Options{CompressImages: compress})

		require.NoError(t, s.InsertList(ctx, "Icons", []lst.Item{
			{ID: 9, Name: "Red Potion", FileNumber: 1, Index: 0},
			{ID: 10, Name: "Unused", FileNumber: 2, Index: 0},
		}))
		require.NoError(t, s.InsertResources(ctx, "Icons", testResources))

		lists, resources, err := s.Counts(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, lists)
		require.Equal(t, 2, resources)

		row, err := s.Sprite(ctx, "Icons", 1, 0)
		require.NoError(t, err)
		require.Equal(t, uint32(2), row.Width)
		require.Equal(t, uint32(1), row.Height)
		require.Equal(t, uint32(50), row.Length)
		require.Equal(t, uint32(3), row.OffsetX)
		require.Equal(t, uint32(4), row.OffsetY)
		require.Equal(t, RGBA(&testResources[0]), row.Image)
		require.True(t, row.Verify())

		names, err := s.Names(ctx, "Icons")
		require.NoError(t, err)
		require.Equal(t, map[lst.Key]string{{FileNumber: 1, Index: 0}: "Red Potion"}, names)

		_, err = s.Sprite(ctx, "Icons", 1, 1)
		require.ErrorIs(t, err, sql.ErrNoRows)
	}
}

func TestResetClearsTables(t *testing.T) {
	ctx := context.Background()
	s := openTest(t, Options{})
	require.NoError(t, s.InsertResources(ctx, "Tiles", testResources))
	require.NoError(t, s.Reset(ctx))

	lists, resources, err := s.Counts(ctx)
	require.NoError(t, err)
	require.Zero(t, lists)
	require.Zero(t, resources)
}
