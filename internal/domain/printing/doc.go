// Package printing contains the print job bounded context.
// It tracks mission log print jobs from submission through rendering,
// rasterization and printing, and classifies why a job failed.
package printing
