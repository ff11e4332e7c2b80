// Package category assigns stored pages to categories from their URL paths.
//
// Documentation sites encode their section structure in the path, so the
// first path segment after the configured base path names the section a
// page belongs to. The base page itself and anything unparseable land in
// the "overview" category, which keeps the mapping total: every page gets
// exactly one label and the same URL always gets the same one.
//
// The package is pure functions over URLs and pages. It holds no state and
// performs no I/O, so the pipeline can rerun it on every processing pass.
package category
