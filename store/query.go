package store

import (
	"context"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-redmoon/lst"
)

// Row is one stored resource.
type Row struct {
	GID        int64
	Type       string
	FileNumber uint32
	Index      uint32
	Length     uint32
	OffsetX    uint32
	OffsetY    uint32
	Width      uint32
	Height     uint32
	Image      []byte // RGBA, decompressed.
	Hash       string
}

// Sprite loads a stored resource. A missing row is reported as
// sql.ErrNoRows.
func (s *Store) Sprite(ctx context.Context, typ string, fileNum, fileIdx uint32) (*Row, error) {
	var r Row
	var encoding string
	err := s.db.QueryRowContext(ctx, `SELECT gid, type, file_num, file_idx, length, offset_x, offset_y,
			width, height, image, image_encoding, image_hash
		FROM rle WHERE type = ?1 AND file_num = ?2 AND file_idx = ?3`, typ, fileNum, fileIdx).Scan(
		&r.GID, &r.Type, &r.FileNumber, &r.Index, &r.Length, &r.OffsetX, &r.OffsetY,
		&r.Width, &r.Height, &r.Image, &encoding, &r.Hash)
	if err != nil {
		return nil, errors.Wrapf(err, "store: sprite %s %d/%d", typ, fileNum, fileIdx)
	}

	switch encoding {
	case EncodingRaw:
	case EncodingZstd:
		img, err := s.dec.DecodeAll(r.Image, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "store: decompressing sprite %s %d/%d", typ, fileNum, fileIdx)
		}
		r.Image = img
	default:
		return nil, errors.Errorf("store: sprite %s %d/%d: unknown image encoding %q", typ, fileNum, fileIdx, encoding)
	}
	return &r, nil
}

// Verify reports whether the image still matches the hash stored with it.
func (r *Row) Verify() bool {
	return hashImage(r.Image) == r.Hash
}

// Counts returns the number of rows in the list and rle tables.
func (s *Store) Counts(ctx context.Context) (lists, resources int, err error) {
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM list").Scan(&lists); err != nil {
		return 0, 0, errors.Wrap(err, "store: counting list")
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rle").Scan(&resources); err != nil {
		return 0, 0, errors.Wrap(err, "store: counting rle")
	}
	return lists, resources, nil
}

// Names returns the list names of every stored resource of a type which has
// one, keyed by file number and index.
func (s *Store) Names(ctx context.Context, typ string) (map[lst.Key]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT rle.file_num, rle.file_idx, list.name
		FROM rle JOIN list
		ON rle.type = list.type AND rle.file_num = list.file_num AND rle.file_idx = list.file_idx
		WHERE rle.type = ?1`, typ)
	if err != nil {
		return nil, errors.Wrap(err, "store: querying names")
	}
	defer rows.Close()

	names := map[lst.Key]string{}
	for rows.Next() {
		var k lst.Key
		var name string
		if err := rows.Scan(&k.FileNumber, &k.Index, &name); err != nil {
			return nil, errors.Wrap(err, "store: scanning names")
		}
		names[k] = name
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "store: reading names")
	}
	return names, nil
}
