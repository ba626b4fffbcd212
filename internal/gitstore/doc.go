// Package gitstore binds to one on-disk (or in-memory) git repository and
// exposes raw object lookup by hash.
//
// A project owns two repositories:
//
//	{data_path}.git             bare repository, canonical history
//	{data_path}/satellite/.git  working copy used for checkout-dependent work
//
// Handles are read-only. Objects are looked up by a full 40 character hex
// hash or by an abbreviated prefix of at least the minimum prefix length
// (DefaultMinPrefix unless overridden with WithMinPrefix).
package gitstore
