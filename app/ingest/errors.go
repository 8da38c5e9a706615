package ingest

import "errors"

// ErrNoSources means the sources directory yielded no enabled configurations.
// A run cannot do anything useful without sources, so this is fatal to the
// run while individual source failures are not.
var ErrNoSources = errors.New("no enabled sources configured")
