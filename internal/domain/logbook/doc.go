// Package logbook holds the upstream records a print job consumes: the
// mission snapshot used for page headers and its timestamped log records.
//
// Both types are supplied by a collaborator that already resolved them; the
// printing pipeline only reads them.
package logbook
