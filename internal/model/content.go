package model

// AboutProfile is the owner's profile. The API always serves the most
// recently created row.
//
// LOCATORS:
// Avatar, Photo.Src and BlogPost.ImagePath hold either nil or an absolute URL
// produced by the active storage backend. Clients render them as-is.
type AboutProfile struct {
	ID          int64   `json:"id"          db:"id"`
	Name        string  `json:"name"        db:"name"`
	Job         string  `json:"job"         db:"job"`
	Intro       string  `json:"intro"       db:"intro"`
	Quote       string  `json:"quote"       db:"quote"`
	Description string  `json:"description" db:"description"`
	Avatar      *string `json:"avatar"      db:"avatar"`
}

// Project is a source repository shown on the projects page.
//
// Languages and UpdatedAt are filled in from the source host on request and
// are never persisted.
type Project struct {
	ID          int64    `json:"id"                  db:"id"`
	Name        string   `json:"name"                db:"name"`
	Owner       string   `json:"owner"               db:"owner"`
	Title       string   `json:"title"               db:"title"`
	Description string   `json:"description"         db:"description"`
	GitHubLink  string   `json:"githubLink"          db:"github_link"`
	Languages   []string `json:"languages,omitempty" db:"-"`
	UpdatedAt   string   `json:"updatedAt,omitempty" db:"-"`
}

// PhotoAlbum groups photos taken at one place and date.
// Date is an ISO calendar date (YYYY-MM-DD).
type PhotoAlbum struct {
	ID          int64   `json:"id"          db:"id"`
	Slug        string  `json:"slug"        db:"slug"`
	Title       string  `json:"title"       db:"title"`
	Description string  `json:"description" db:"description"`
	Location    string  `json:"location"    db:"location"`
	Date        string  `json:"date"        db:"date"`
	Photos      []Photo `json:"photos"`
}

// Photo belongs to exactly one album.
type Photo struct {
	ID      int64  `json:"id"  db:"id"`
	AlbumID int64  `json:"-"   db:"album_id"`
	Src     string `json:"src" db:"src"`
	Alt     string `json:"alt" db:"alt"`
}

// BlogPost is an entry on the writing page. Description holds rich HTML
// authored in the admin editor.
type BlogPost struct {
	ID          int64   `json:"id"          db:"id"`
	Slug        string  `json:"slug"        db:"slug"`
	Title       string  `json:"title"       db:"title"`
	Source      string  `json:"source"      db:"source"`
	Location    string  `json:"location"    db:"location"`
	Date        string  `json:"date"        db:"date"`
	Description string  `json:"description" db:"description"`
	ImagePath   *string `json:"imagePath"   db:"image_path"`
}
