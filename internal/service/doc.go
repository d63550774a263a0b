// Package service contains the business logic layer of the portfolio API.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests and multipart forms, writes JSON
//	Service (Business layer) → validates, assigns slugs, coordinates DB and files
//	Repository (Data layer)  → reads/writes to SQLite or PostgreSQL
//
// Services never see an *http.Request. Uploaded images arrive as
// already-checked *storage.Upload values and leave as locators.
//
// THE DEPENDENCY CHAIN:
//
//	main.go creates:  DB → Repository → Service → Handler
//	At runtime:       Handler calls Service calls Repository calls DB
//
// DEPENDENCY INJECTION:
// Every service takes interfaces (repository.AlbumRepository, storage.Store,
// mail.Sender, Enricher). Tests in this package pass the in-memory fakes from
// fakes_test.go; main.go passes the sqlstore, disk or S3 backends.
//
// FILES AND ROWS:
// A stored file and the row that references it are not in one transaction.
// Creates store files first and remove them if the insert fails. Deletes
// remove the row first and then unlink files best effort, so a crash can
// leave an orphan file but never a row pointing at nothing.
package service
