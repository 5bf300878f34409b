package dossier

import "errors"

// ErrNoDossier is the one hard gate in the lifecycle: an operation
// needed an active dossier and none was resolvable. Callers redirect
// to dossier selection.
var ErrNoDossier = errors.New("no active dossier")
