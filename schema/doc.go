// Package schema lists the tables of a relational database and describes
// their columns. MySQL, PostgreSQL and SQLite are supported.
package schema
