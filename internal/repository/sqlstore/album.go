package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hoangchien/portfolio/internal/apperror"
	"github.com/hoangchien/portfolio/internal/model"
	"github.com/hoangchien/portfolio/internal/repository"
)

// Albums returns the photo_albums/photos repository.
func (db *DB) Albums() *AlbumStore { return &AlbumStore{db: db} }

// AlbumStore implements repository.AlbumRepository.
type AlbumStore struct{ db *DB }

var _ repository.AlbumRepository = (*AlbumStore)(nil)

// List returns every album with its photos, newest date first.
//
// A single LEFT JOIN fetches albums and photos together; rows arrive grouped
// by album, so consecutive rows with the same album id are folded into one
// model.PhotoAlbum.
func (s *AlbumStore) List(ctx context.Context) ([]model.PhotoAlbum, error) {
	rows, err := s.db.query(ctx, s.db.conn, `
		SELECT a.id, a.slug, a.title, a.description, a.location, a.date,
		       p.id, p.src, p.alt
		FROM photo_albums a
		LEFT JOIN photos p ON p.album_id = a.id
		ORDER BY a.date DESC, a.id DESC, p.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing albums: %w", err)
	}
	defer rows.Close()

	albums := []model.PhotoAlbum{}
	for rows.Next() {
		var (
			a       model.PhotoAlbum
			photoID sql.NullInt64
			src     sql.NullString
			alt     sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Slug, &a.Title, &a.Description, &a.Location, &a.Date,
			&photoID, &src, &alt); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning album: %w", err)
		}

		if n := len(albums); n == 0 || albums[n-1].ID != a.ID {
			a.Photos = []model.Photo{}
			albums = append(albums, a)
		}
		if photoID.Valid {
			last := &albums[len(albums)-1]
			last.Photos = append(last.Photos, model.Photo{
				ID: photoID.Int64, AlbumID: a.ID, Src: src.String, Alt: alt.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating albums: %w", err)
	}
	return albums, nil
}

func (s *AlbumStore) GetBySlug(ctx context.Context, slug string) (*model.PhotoAlbum, error) {
	var a model.PhotoAlbum
	err := s.db.queryRow(ctx, s.db.conn,
		`SELECT id, slug, title, description, location, date FROM photo_albums WHERE slug = ?`,
		slug,
	).Scan(&a.ID, &a.Slug, &a.Title, &a.Description, &a.Location, &a.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundBySlug("album", slug)
		}
		return nil, fmt.Errorf("sqlstore: getting album: %w", err)
	}

	photos, err := s.photos(ctx, s.db.conn, a.ID)
	if err != nil {
		return nil, err
	}
	a.Photos = photos
	return &a, nil
}

// Photos returns the photos of an album. An unknown album yields
// apperror.ErrNotFound rather than an empty list.
func (s *AlbumStore) Photos(ctx context.Context, albumID int64) ([]model.Photo, error) {
	var exists int
	err := s.db.queryRow(ctx, s.db.conn, `SELECT 1 FROM photo_albums WHERE id = ?`, albumID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("album", fmt.Sprint(albumID))
		}
		return nil, fmt.Errorf("sqlstore: checking album: %w", err)
	}
	return s.photos(ctx, s.db.conn, albumID)
}

func (s *AlbumStore) photos(ctx context.Context, q dbtx, albumID int64) ([]model.Photo, error) {
	rows, err := s.db.query(ctx, q,
		`SELECT id, album_id, src, alt FROM photos WHERE album_id = ? ORDER BY id ASC`, albumID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing photos: %w", err)
	}
	defer rows.Close()

	photos := []model.Photo{}
	for rows.Next() {
		var p model.Photo
		if err := rows.Scan(&p.ID, &p.AlbumID, &p.Src, &p.Alt); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning photo: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating photos: %w", err)
	}
	return photos, nil
}

func (s *AlbumStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	err := s.db.queryRow(ctx, s.db.conn, `SELECT COUNT(*) FROM photo_albums WHERE slug = ?`, slug).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlstore: checking album slug: %w", err)
	}
	return n > 0, nil
}

// Create inserts the album row and one row per photo in a single
// transaction, then fills in the generated ids.
func (s *AlbumStore) Create(ctx context.Context, a *model.PhotoAlbum) error {
	err := s.db.withTx(ctx, func(tx *sql.Tx) error {
		err := s.db.queryRow(ctx, tx,
			`INSERT INTO photo_albums (slug, title, description, location, date)
			 VALUES (?, ?, ?, ?, ?) RETURNING id`,
			a.Slug, a.Title, a.Description, a.Location, a.Date,
		).Scan(&a.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.Conflict("album", a.Slug)
			}
			return fmt.Errorf("inserting album: %w", err)
		}

		for i := range a.Photos {
			p := &a.Photos[i]
			p.AlbumID = a.ID
			err := s.db.queryRow(ctx, tx,
				`INSERT INTO photos (album_id, src, alt) VALUES (?, ?, ?) RETURNING id`,
				p.AlbumID, p.Src, p.Alt,
			).Scan(&p.ID)
			if err != nil {
				return fmt.Errorf("inserting photo: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return err
		}
		return fmt.Errorf("sqlstore: creating album: %w", err)
	}
	return nil
}

// Delete removes the album's photos and then the album itself in one
// transaction. The removed photos are returned so the caller can unlink
// their files once the rows are gone.
func (s *AlbumStore) Delete(ctx context.Context, id int64) ([]model.Photo, error) {
	var removed []model.Photo
	err := s.db.withTx(ctx, func(tx *sql.Tx) error {
		photos, err := s.photos(ctx, tx, id)
		if err != nil {
			return err
		}

		if _, err := s.db.exec(ctx, tx, `DELETE FROM photos WHERE album_id = ?`, id); err != nil {
			return fmt.Errorf("deleting photos: %w", err)
		}

		res, err := s.db.exec(ctx, tx, `DELETE FROM photo_albums WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting album: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if n == 0 {
			return apperror.NotFound("album", fmt.Sprint(id))
		}

		removed = photos
		return nil
	})
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("sqlstore: deleting album: %w", err)
	}
	return removed, nil
}
