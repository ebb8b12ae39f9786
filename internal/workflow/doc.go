// Package workflow runs one processing pass: extract rows from a saved
// ranking page, resolve them against the catalog, merge them into the
// database, and summarize the outcome.
//
// Rows are matched strictly in page order, one at a time. The database file
// is locked for the whole run and only rewritten after every row has been
// matched, so cancelling a run part way leaves the database untouched. Each
// run gets a UUID that tags its log lines and its run history record.
package workflow
