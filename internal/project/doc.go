// Package project ties a project record to its on-disk repositories.
//
// A project is identified by its owner and name. Names are unique per owner
// among live projects; soft-deleting a project frees its name. Each project
// gets a data path, assigned once at creation, under which two
// repositories live:
//
//	{data_path}.git             bare repository
//	{data_path}/satellite/.git  satellite working copy
//
// Manager owns the records and creates the repositories. Repository is the
// read side: it opens both repositories lazily and resolves trees, commits
// and blobs, returning nil for anything absent or malformed.
package project
