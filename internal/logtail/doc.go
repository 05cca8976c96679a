// Package logtail reads trackside's log file for the log view.
//
// # Reading Log Files
//
// Read uses a ring buffer of maxLines entries to extract the tail of a file
// in one pass:
//
//  1. Allocate ring buffer of size maxLines
//  2. For each line in file, store it at the current index and advance,
//     wrapping at maxLines
//  3. Return the buffer starting from the oldest line
//
// Memory stays O(maxLines) whatever the file size. A missing file is not an
// error; Read returns nil, nil.
//
// # Parsing
//
// Parse splits slog text records into an Entry:
//
//	time=2025-06-01T09:00:00Z level=WARN msg="refresh failed" stream=finish
//
// Quoted values are unquoted. Lines that are not records (panics, stray
// output) come back as an Entry holding only the raw text in Message.
package logtail
