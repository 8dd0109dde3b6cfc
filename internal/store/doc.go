// Package store provides read access to the form-definition database.
//
// The resolution engine treats the database as an externally owned,
// read-only view: every query is scoped to a form, a field, or an option
// set, and nothing in this package issues writes. The embedded schema is
// applied on Open so that fixtures and local development databases
// bootstrap themselves; a production database already carries the schema.
package store
