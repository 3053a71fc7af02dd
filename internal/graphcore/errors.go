package graphcore

import "errors"

// ErrBadCommit reports a malformed tree or parent header in a commit
// buffer. The commit's Parsed flag is left false.
var ErrBadCommit = errors.New("graphcore: bad commit")

// ErrNotImplemented reports an unsupported multi-reference query (the
// merge-base engine here only supports a pair of tips).
var ErrNotImplemented = errors.New("graphcore: not implemented")
