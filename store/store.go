// Package store persists list entries and decoded resources in SQLite.
//
// The schema has two tables, list and rle, joined by type, file_num and
// file_idx. Images are stored as RGBA, four bytes per pixel, with unpainted
// pixels fully transparent.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/golang/glog"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	_ "modernc.org/sqlite"

	"badc0de.net/pkg/go-redmoon/lst"
	"badc0de.net/pkg/go-redmoon/pixel"
	"badc0de.net/pkg/go-redmoon/rle"
)

// Image encodings stored in rle.image_encoding.
const (
	EncodingRaw  = "rgba"
	EncodingZstd = "rgba+zstd"
)

const schema = `
CREATE TABLE list (
	gid      INTEGER PRIMARY KEY,
	type     TEXT NOT NULL,
	file_num INTEGER,
	file_idx INTEGER,
	name     TEXT NOT NULL,
	list_id  INTEGER
);
CREATE TABLE rle (
	gid            INTEGER PRIMARY KEY,
	type           TEXT NOT NULL,
	file_num       INTEGER,
	file_idx       INTEGER,
	length         INTEGER,
	offset_x       INTEGER,
	offset_y       INTEGER,
	width          INTEGER,
	height         INTEGER,
	image          BLOB,
	image_encoding TEXT NOT NULL,
	image_hash     TEXT NOT NULL
);
CREATE INDEX rle_key ON rle (type, file_num, file_idx);
CREATE INDEX list_key ON list (type, file_num, file_idx);
`

// Options tunes a Store.
type Options struct {
	CompressImages bool // zstd-compress image blobs.
}

// Store is a SQLite database of sprites.
type Store struct {
	db   *sql.DB
	opts Options

	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Open opens (creating if needed) the database at path. ":memory:" gives a
// private in-memory database.
func Open(path string, opts Options) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "store: opening %s", path)
	}
	// One connection keeps ":memory:" a single database and serializes writers.
	db.SetMaxOpenConns(1)

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "store: creating zstd encoder")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "store: creating zstd decoder")
	}
	return &Store{db: db, opts: opts, enc: enc, dec: dec}, nil
}

func (s *Store) Close() error {
	s.dec.Close()
	s.enc.Close()
	return s.db.Close()
}

// Reset drops and recreates both tables.
func (s *Store) Reset(ctx context.Context) error {
	for _, table := range []string{"list", "rle"} {
		if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return errors.Wrapf(err, "store: dropping %s", table)
		}
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "store: creating schema")
	}
	return nil
}

// InsertList stores list entries of one type in a single transaction.
func (s *Store) InsertList(ctx context.Context, typ string, items []lst.Item) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO list (type, name, list_id, file_num, file_idx) VALUES (?1, ?2, ?3, ?4, ?5)")
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, it := range items {
			if _, err := stmt.ExecContext(ctx, typ, it.Name, it.ID, it.FileNumber, it.Index); err != nil {
				return errors.Wrapf(err, "list item %d (%q)", it.ID, it.Name)
			}
		}
		glog.V(1).Infof("store: %s: %d list items", typ, len(items))
		return nil
	})
}

// InsertResources stores resources of one type in a single transaction.
func (s *Store) InsertResources(ctx context.Context, typ string, resources []rle.Resource) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO rle (
				type,   file_num, file_idx,
				length, offset_x, offset_y,
				width,  height,   image,
				image_encoding, image_hash)
			VALUES (?1, ?2, ?3,
				?4, ?5, ?6,
				?7, ?8, ?9,
				?10, ?11)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i := range resources {
			r := &resources[i]
			img := RGBA(r)
			hash := hashImage(img)
			encoding := EncodingRaw
			if s.opts.CompressImages {
				img = s.enc.EncodeAll(img, nil)
				encoding = EncodingZstd
			}
			if _, err := stmt.ExecContext(ctx,
				typ, r.FileNumber, r.Index,
				r.Length, r.OffsetX, r.OffsetY,
				r.Width, r.Height, img,
				encoding, hash); err != nil {
				return errors.Wrapf(err, "resource %d/%d", r.FileNumber, r.Index)
			}
		}
		glog.V(1).Infof("store: %s: %d resources", typ, len(resources))
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "store: begin")
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "store")
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "store: commit")
	}
	return nil
}

// RGBA converts a resource's packed pixels to RGBA bytes. Blank pixels become
// transparent black.
func RGBA(r *rle.Resource) []byte {
	out := make([]byte, 0, len(r.Pixels)*2)
	for i := 0; i+1 < len(r.Pixels); i += 2 {
		lo, hi := r.Pixels[i], r.Pixels[i+1]
		if pixel.IsBlank(lo, hi) {
			out = append(out, 0, 0, 0, 0)
			continue
		}
		cr, cg, cb := pixel.Normalize(uint16(pixel.FromBytes(lo, hi)))
		out = append(out, cr, cg, cb, 0xff)
	}
	return out
}

func hashImage(img []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(img))
}
