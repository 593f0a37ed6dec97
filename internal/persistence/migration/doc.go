// Package migration applies versioned SQL files to a database.
//
// Files are named NNN_description.sql and read from an fs.FS, usually an
// embed.FS owned by the dialect package. Each file runs in its own
// transaction and is recorded in schema_migrations with its checksum, so a
// second run only applies what is new. The executor works through sqlx and
// rebinds placeholders, which lets SQLite and PostgreSQL share it.
package migration
