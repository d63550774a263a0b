package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoangchien/portfolio/internal/apperror"
	"github.com/hoangchien/portfolio/internal/model"
)

// The functions in this file exercise the repositories against any dialect.
// sqlite_test.go runs them on a temporary SQLite file and
// postgres_integration_test.go runs them on a PostgreSQL container.
// They never assume empty tables, so they can share one database.

var storeSuite = []struct {
	name string
	fn   func(t *testing.T, db *DB)
}{
	{"Users", testUsers},
	{"About", testAbout},
	{"Projects", testProjects},
	{"AlbumsCreateAndList", testAlbumsCreateAndList},
	{"AlbumsDeleteRemovesPhotos", testAlbumsDeleteRemovesPhotos},
	{"AlbumsSlugUnique", testAlbumsSlugUnique},
	{"Posts", testPosts},
	{"PostsSlugUnique", testPostsSlugUnique},
	{"Tokens", testTokens},
}

func strPtr(s string) *string { return &s }

func testUsers(t *testing.T, db *DB) {
	ctx := context.Background()
	users := db.Users()

	u := &model.User{Username: "admin-" + t.Name(), PasswordHash: "hash", IsAdmin: true}
	require.NoError(t, users.Create(ctx, u))
	assert.Positive(t, u.ID)

	got, err := users.GetByUsername(ctx, u.Username)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.IsAdmin)
	assert.Equal(t, "hash", got.PasswordHash)

	err = users.Create(ctx, &model.User{Username: u.Username, PasswordHash: "x"})
	assert.True(t, errors.Is(err, apperror.ErrConflict), "duplicate username should conflict, got %v", err)

	require.NoError(t, users.UpdatePassword(ctx, u.ID, "new-hash"))
	got, _ = users.GetByUsername(ctx, u.Username)
	assert.Equal(t, "new-hash", got.PasswordHash)

	_, err = users.GetByUsername(ctx, "nobody")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	assert.True(t, errors.Is(users.UpdatePassword(ctx, 987654, "h"), apperror.ErrNotFound))
}

func testAbout(t *testing.T, db *DB) {
	ctx := context.Background()
	about := db.About()

	first := &model.AboutProfile{Name: "First", Job: "Dev"}
	require.NoError(t, about.Create(ctx, first))
	second := &model.AboutProfile{Name: "Second", Job: "Photographer", Avatar: strPtr("https://cdn.example/a.jpg")}
	require.NoError(t, about.Create(ctx, second))

	latest, err := about.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	require.NotNil(t, latest.Avatar)
	assert.Equal(t, "https://cdn.example/a.jpg", *latest.Avatar)

	first.Job = "Engineer"
	first.Quote = "ship it"
	require.NoError(t, about.Update(ctx, first))
	got, err := about.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Engineer", got.Job)
	assert.Equal(t, "ship it", got.Quote)
	assert.Nil(t, got.Avatar)

	err = about.Update(ctx, &model.AboutProfile{ID: 987654, Name: "x", Job: "y"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func testProjects(t *testing.T, db *DB) {
	ctx := context.Background()
	projects := db.Projects()

	p := &model.Project{Name: "foo", Owner: "bar", Title: "Foo", GitHubLink: "https://github.com/bar/foo"}
	require.NoError(t, projects.Create(ctx, p))
	assert.Positive(t, p.ID)

	newer := &model.Project{Name: "baz", Owner: "bar", Title: "Baz", GitHubLink: "https://github.com/bar/baz"}
	require.NoError(t, projects.Create(ctx, newer))

	list, err := projects.List(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(list), 2)
	assert.Equal(t, newer.ID, list[0].ID, "newest project first")

	var found bool
	for _, got := range list {
		if got.ID == p.ID {
			found = true
			assert.Equal(t, "https://github.com/bar/foo", got.GitHubLink)
		}
	}
	assert.True(t, found)

	require.NoError(t, projects.Delete(ctx, p.ID))
	err = projects.Delete(ctx, p.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "second delete should be not found, got %v", err)
}

func createAlbum(t *testing.T, db *DB, slug, date string, photos int) *model.PhotoAlbum {
	t.Helper()
	a := &model.PhotoAlbum{Slug: slug, Title: slug, Location: "Hanoi", Date: date}
	for i := 0; i < photos; i++ {
		a.Photos = append(a.Photos, model.Photo{Src: "https://cdn.example/" + slug + ".jpg", Alt: "photo.jpg"})
	}
	require.NoError(t, db.Albums().Create(context.Background(), a))
	return a
}

func testAlbumsCreateAndList(t *testing.T, db *DB) {
	ctx := context.Background()
	albums := db.Albums()

	older := createAlbum(t, db, "older-"+suffix(), "2023-01-01", 1)
	newer := createAlbum(t, db, "newer-"+suffix(), "2099-06-30", 3)
	empty := createAlbum(t, db, "empty-"+suffix(), "2099-06-29", 0)

	for _, p := range newer.Photos {
		assert.Positive(t, p.ID)
		assert.Equal(t, newer.ID, p.AlbumID)
	}

	list, err := albums.List(ctx)
	require.NoError(t, err)

	index := map[int64]int{}
	for i, a := range list {
		index[a.ID] = i
	}
	assert.Less(t, index[newer.ID], index[empty.ID])
	assert.Less(t, index[empty.ID], index[older.ID])
	assert.Len(t, list[index[newer.ID]].Photos, 3)
	assert.NotNil(t, list[index[empty.ID]].Photos)
	assert.Empty(t, list[index[empty.ID]].Photos)

	got, err := albums.GetBySlug(ctx, newer.Slug)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)
	assert.Len(t, got.Photos, 3)
	assert.Less(t, got.Photos[0].ID, got.Photos[1].ID)

	photos, err := albums.Photos(ctx, older.ID)
	require.NoError(t, err)
	assert.Len(t, photos, 1)

	_, err = albums.GetBySlug(ctx, "no-such-album")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	_, err = albums.Photos(ctx, 987654)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func testAlbumsDeleteRemovesPhotos(t *testing.T, db *DB) {
	ctx := context.Background()
	albums := db.Albums()

	a := createAlbum(t, db, "doomed-"+suffix(), "2024-05-05", 4)

	removed, err := albums.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, removed, 4)

	var orphans int
	require.NoError(t, db.queryRow(ctx, db.conn,
		`SELECT COUNT(*) FROM photos WHERE album_id = ?`, a.ID).Scan(&orphans))
	assert.Zero(t, orphans, "no photo rows may outlive their album")

	list, err := albums.List(ctx)
	require.NoError(t, err)
	for _, got := range list {
		assert.NotEqual(t, a.ID, got.ID)
	}

	_, err = albums.Delete(ctx, a.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "repeat delete should be not found, got %v", err)
}

func testAlbumsSlugUnique(t *testing.T, db *DB) {
	ctx := context.Background()
	slug := "dup-" + suffix()
	createAlbum(t, db, slug, "2024-01-01", 1)

	exists, err := db.Albums().SlugExists(ctx, slug)
	require.NoError(t, err)
	assert.True(t, exists)

	err = db.Albums().Create(ctx, &model.PhotoAlbum{Slug: slug, Title: "again", Date: "2024-01-02",
		Photos: []model.Photo{{Src: "https://cdn.example/x.jpg"}}})
	assert.True(t, errors.Is(err, apperror.ErrConflict), "duplicate slug should conflict, got %v", err)

	// The failed transaction must not leave a photo behind.
	var n int
	require.NoError(t, db.queryRow(ctx, db.conn,
		`SELECT COUNT(*) FROM photos p LEFT JOIN photo_albums a ON a.id = p.album_id WHERE a.id IS NULL`).Scan(&n))
	assert.Zero(t, n)
}

func testPosts(t *testing.T, db *DB) {
	ctx := context.Background()
	posts := db.Posts()

	older := &model.BlogPost{Slug: "older-" + suffix(), Title: "Older", Date: "2020-01-01"}
	newer := &model.BlogPost{Slug: "newer-" + suffix(), Title: "Newer", Date: "2098-01-01",
		Description: "<p>hi</p>", ImagePath: strPtr("https://cdn.example/p.jpg")}
	require.NoError(t, posts.Create(ctx, older))
	require.NoError(t, posts.Create(ctx, newer))

	list, err := posts.List(ctx)
	require.NoError(t, err)
	index := map[int64]int{}
	for i, p := range list {
		index[p.ID] = i
	}
	assert.Less(t, index[newer.ID], index[older.ID], "newest date first")

	got, err := posts.GetBySlug(ctx, newer.Slug)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)
	assert.Equal(t, "<p>hi</p>", got.Description)
	require.NotNil(t, got.ImagePath)
	assert.Equal(t, "https://cdn.example/p.jpg", *got.ImagePath)

	removed, err := posts.Delete(ctx, newer.ID)
	require.NoError(t, err)
	require.NotNil(t, removed.ImagePath)
	assert.Equal(t, "https://cdn.example/p.jpg", *removed.ImagePath)

	_, err = posts.GetBySlug(ctx, newer.Slug)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	_, err = posts.Delete(ctx, newer.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func testPostsSlugUnique(t *testing.T, db *DB) {
	ctx := context.Background()
	slug := "same-" + suffix()

	require.NoError(t, db.Posts().Create(ctx, &model.BlogPost{Slug: slug, Title: "A", Date: "2024-01-01"}))
	err := db.Posts().Create(ctx, &model.BlogPost{Slug: slug, Title: "B", Date: "2024-01-01"})
	assert.True(t, errors.Is(err, apperror.ErrConflict), "duplicate slug should conflict, got %v", err)

	exists, err := db.Posts().SlugExists(ctx, slug)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = db.Posts().SlugExists(ctx, slug+"-2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func testTokens(t *testing.T, db *DB) {
	ctx := context.Background()
	tokens := db.Tokens()
	now := time.Now()
	tokens.now = func() time.Time { return now }

	jti := "jti-" + suffix()
	revoked, err := tokens.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, tokens.Revoke(ctx, jti, now.Add(time.Hour)))
	require.NoError(t, tokens.Revoke(ctx, jti, now.Add(time.Hour)), "revoking twice is a no-op")

	revoked, err = tokens.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)

	// An entry whose token expired is purged by the next revocation.
	stale := "stale-" + suffix()
	require.NoError(t, tokens.Revoke(ctx, stale, now.Add(-time.Minute)))
	require.NoError(t, tokens.Revoke(ctx, "other-"+suffix(), now.Add(time.Hour)))
	revoked, err = tokens.IsRevoked(ctx, stale)
	require.NoError(t, err)
	assert.False(t, revoked)
}

var suffixCounter int

// suffix keeps slugs and token ids unique across suite runs on one database.
func suffix() string {
	suffixCounter++
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), suffixCounter)
}
