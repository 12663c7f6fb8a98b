package store

import "errors"

// ErrSchemaVersion reports a database written by a newer, unknown schema.
var ErrSchemaVersion = errors.New("unsupported schema version")
