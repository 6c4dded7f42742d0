package adapter

import "errors"

// ErrClosed is returned by Write/Flush once an adapter's output path has
// been closed, matching spec §7's AdapterClosed taxonomy entry. Kept as a
// package-local sentinel rather than a shared errors package, following the
// teacher's practice of not centralizing error types.
var ErrClosed = errors.New("adapter: closed")
