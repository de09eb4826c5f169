package lst

import (
	"strings"
	"testing"

	"badc0de.net/pkg/go-redmoon/ttesting"
)

func TestByKey(t *testing.T) {
	l := &List{Items: []Item{
		{ID: 1, Name: "a", FileNumber: 0, Index: 0},
		{ID: 2, Name: "b", FileNumber: 0, Index: 5},
		{ID: 3, Name: "c", FileNumber: 2, Index: 5},
	}}
	m := l.ByKey()
	ttesting.AssertEqualInt(t, "entries", len(m), 3)
	ttesting.AssertEqualUint32(t, "file 2 index 5", m[Key{2, 5}].ID, 3)

	if _, ok := l.Lookup(1, 5); ok {
		t.Error("Lookup(1, 5) found an entry")
	}
}

func TestReadError(t *testing.T) {
	if _, err := Read(strings.NewReader("<list><item")); err == nil {
		t.Error("Read() of broken xml succeeded")
	}
}
