// Package lst reads the name and id list that accompanies a folder of RLE
// resource files.
//
// The game ships the lists in a binary format of their own; this package
// reads the XML export of them. Entries are joined to decoded resources by
// file number and offset table index.
package lst

import (
	"encoding/xml"
	"io"

	"github.com/pkg/errors"
)

// List is every entry of one list file.
type List struct {
	XMLName xml.Name `xml:"list"`
	Type    string   `xml:"type,attr"`
	Items   []Item   `xml:"item"`
}

// Item names one resource.
type Item struct {
	ID         uint32 `xml:"id,attr"`
	Name       string `xml:"name,attr"`
	FileNumber uint32 `xml:"file,attr"`
	Index      uint32 `xml:"index,attr"`
}

// Key identifies a resource across all files of a folder.
type Key struct {
	FileNumber uint32
	Index      uint32
}

func (i Item) Key() Key {
	return Key{FileNumber: i.FileNumber, Index: i.Index}
}

// Read parses a list export.
func Read(r io.Reader) (*List, error) {
	dec := xml.NewDecoder(r)
	l := &List{}
	if err := dec.Decode(l); err != nil {
		return nil, errors.Wrap(err, "lst: decoding list")
	}
	return l, nil
}

// ByKey indexes the list. Later entries win if a key repeats.
func (l *List) ByKey() map[Key]Item {
	m := make(map[Key]Item, len(l.Items))
	for _, it := range l.Items {
		m[it.Key()] = it
	}
	return m
}

// Lookup finds the entry for a resource.
func (l *List) Lookup(fileNumber, index uint32) (Item, bool) {
	for _, it := range l.Items {
		if it.FileNumber == fileNumber && it.Index == index {
			return it, true
		}
	}
	return Item{}, false
}
