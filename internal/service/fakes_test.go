package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hoangchien/portfolio/internal/apperror"
	"github.com/hoangchien/portfolio/internal/github"
	"github.com/hoangchien/portfolio/internal/mail"
	"github.com/hoangchien/portfolio/internal/model"
	"github.com/hoangchien/portfolio/internal/storage"
)

// =========================================================================
// FAKES
// =========================================================================
//
// Hand-written in-memory implementations of the repository interfaces, the
// upload store and the mail sender. Each has an err field (or a per-method
// one) to simulate a database or backend failure.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

var errDB = errors.New("database is on fire")

// --- users ---------------------------------------------------------------

type fakeUserRepo struct {
	users     map[string]*model.User
	nextID    int64
	getErr    error
	createErr error
	updateErr error
	updates   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[username]
	if !ok {
		return nil, apperror.NotFound("user", username)
	}
	c := *u
	return &c, nil
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.users[u.Username]; ok {
		return apperror.Conflict("user", u.Username)
	}
	f.nextID++
	u.ID = f.nextID
	c := *u
	f.users[u.Username] = &c
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, u := range f.users {
		if u.ID == id {
			u.PasswordHash = hash
			f.updates++
			return nil
		}
	}
	return apperror.NotFound("user", fmt.Sprint(id))
}

// --- revoked tokens ------------------------------------------------------

type fakeTokenRepo struct {
	revoked map[string]time.Time
	err     error
}

func newFakeTokenRepo() *fakeTokenRepo { return &fakeTokenRepo{revoked: map[string]time.Time{}} }

func (f *fakeTokenRepo) Revoke(_ context.Context, jti string, exp time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.revoked[jti] = exp
	return nil
}

func (f *fakeTokenRepo) IsRevoked(_ context.Context, jti string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.revoked[jti]
	return ok, nil
}

// --- about -----------------------------------------------------------------

type fakeAboutRepo struct {
	rows      []*model.AboutProfile
	updateErr error
}

func (f *fakeAboutRepo) Latest(_ context.Context) (*model.AboutProfile, error) {
	if len(f.rows) == 0 {
		return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "about profile not found"}
	}
	c := *f.rows[len(f.rows)-1]
	return &c, nil
}

func (f *fakeAboutRepo) GetByID(_ context.Context, id int64) (*model.AboutProfile, error) {
	for _, r := range f.rows {
		if r.ID == id {
			c := *r
			return &c, nil
		}
	}
	return nil, apperror.NotFound("about profile", fmt.Sprint(id))
}

func (f *fakeAboutRepo) Create(_ context.Context, a *model.AboutProfile) error {
	a.ID = int64(len(f.rows) + 1)
	c := *a
	f.rows = append(f.rows, &c)
	return nil
}

func (f *fakeAboutRepo) Update(_ context.Context, a *model.AboutProfile) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i, r := range f.rows {
		if r.ID == a.ID {
			c := *a
			f.rows[i] = &c
			return nil
		}
	}
	return apperror.NotFound("about profile", fmt.Sprint(a.ID))
}

// --- projects --------------------------------------------------------------

type fakeProjectRepo struct {
	rows   []model.Project
	nextID int64
	err    error
}

func (f *fakeProjectRepo) List(_ context.Context) ([]model.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Project, len(f.rows))
	copy(out, f.rows)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeProjectRepo) Create(_ context.Context, p *model.Project) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	p.ID = f.nextID
	f.rows = append(f.rows, *p)
	return nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, id int64) error {
	for i, p := range f.rows {
		if p.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("project", fmt.Sprint(id))
}

// --- albums ----------------------------------------------------------------

type fakeAlbumRepo struct {
	albums    map[int64]*model.PhotoAlbum
	nextID    int64
	createErr error
	// conflicts makes the next n Create calls fail with ErrConflict, as if
	// another request had taken the slug first.
	conflicts int
}

func newFakeAlbumRepo() *fakeAlbumRepo { return &fakeAlbumRepo{albums: map[int64]*model.PhotoAlbum{}} }

func (f *fakeAlbumRepo) List(_ context.Context) ([]model.PhotoAlbum, error) {
	out := []model.PhotoAlbum{}
	for _, a := range f.albums {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeAlbumRepo) GetBySlug(_ context.Context, slug string) (*model.PhotoAlbum, error) {
	for _, a := range f.albums {
		if a.Slug == slug {
			c := *a
			return &c, nil
		}
	}
	return nil, apperror.NotFoundBySlug("album", slug)
}

func (f *fakeAlbumRepo) Photos(_ context.Context, albumID int64) ([]model.Photo, error) {
	if a, ok := f.albums[albumID]; ok {
		return a.Photos, nil
	}
	return []model.Photo{}, nil
}

func (f *fakeAlbumRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, a := range f.albums {
		if a.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAlbumRepo) Create(_ context.Context, a *model.PhotoAlbum) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.conflicts > 0 {
		f.conflicts--
		// Simulate the winner of the race.
		f.nextID++
		f.albums[f.nextID] = &model.PhotoAlbum{ID: f.nextID, Slug: a.Slug}
		return apperror.Conflict("album", a.Slug)
	}
	f.nextID++
	a.ID = f.nextID
	for i := range a.Photos {
		a.Photos[i].ID = int64(i + 1)
		a.Photos[i].AlbumID = a.ID
	}
	c := *a
	f.albums[a.ID] = &c
	return nil
}

func (f *fakeAlbumRepo) Delete(_ context.Context, id int64) ([]model.Photo, error) {
	a, ok := f.albums[id]
	if !ok {
		return nil, apperror.NotFound("album", fmt.Sprint(id))
	}
	delete(f.albums, id)
	return a.Photos, nil
}

// --- posts -----------------------------------------------------------------

type fakePostRepo struct {
	posts     map[int64]*model.BlogPost
	nextID    int64
	createErr error
}

func newFakePostRepo() *fakePostRepo { return &fakePostRepo{posts: map[int64]*model.BlogPost{}} }

func (f *fakePostRepo) List(_ context.Context) ([]model.BlogPost, error) {
	out := []model.BlogPost{}
	for _, p := range f.posts {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakePostRepo) GetBySlug(_ context.Context, slug string) (*model.BlogPost, error) {
	for _, p := range f.posts {
		if p.Slug == slug {
			c := *p
			return &c, nil
		}
	}
	return nil, apperror.NotFoundBySlug("blog post", slug)
}

func (f *fakePostRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, p := range f.posts {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePostRepo) Create(_ context.Context, p *model.BlogPost) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	p.ID = f.nextID
	c := *p
	f.posts[p.ID] = &c
	return nil
}

func (f *fakePostRepo) Delete(_ context.Context, id int64) (*model.BlogPost, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, apperror.NotFound("blog post", fmt.Sprint(id))
	}
	delete(f.posts, id)
	return p, nil
}

// --- storage ---------------------------------------------------------------

// fakeStore keeps saved objects in a map keyed by locator.
type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	n         int
	failAfter int // fail the Save call after this many successes; 0 = never
	deleteErr error
	deleted   []string
}

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string][]byte{}} }

func (f *fakeStore) Name() string { return "fake" }

func (f *fakeStore) Save(_ context.Context, data []byte, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter > 0 && f.n >= f.failAfter {
		return "", errors.New("disk full")
	}
	f.n++
	loc := fmt.Sprintf("https://files.test/uploads/%d-%s", f.n, strings.ToLower(name))
	f.objects[loc] = data
	return loc, nil
}

func (f *fakeStore) Delete(_ context.Context, loc string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, loc)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, loc)
	return nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func upload(name string) *storage.Upload {
	return &storage.Upload{OriginalName: name, Format: "png", ContentType: "image/png", Data: []byte("img:" + name)}
}

// --- mail and enrichment ---------------------------------------------------

type fakeSender struct {
	sent []mail.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, m mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

type fakeEnricher struct {
	repos map[string]*github.Repo
}

func (f *fakeEnricher) Enrich(_ context.Context, owner, name string) (*github.Repo, error) {
	if r, ok := f.repos[owner+"/"+name]; ok {
		return r, nil
	}
	return nil, github.ErrRepoNotFound
}
