// Package request runs single API calls on behalf of view code and tracks
// the loading/error state of the most recent call.
//
// An Executor sets Loading before the network call starts and clears it
// when the call settles, whatever the outcome. On failure, Error holds the
// server's "message" field or GenericMessage, and the error itself is
// still returned to the caller. Calls sharing one Executor share its
// state: the last call to settle wins. Use one Executor per call site when
// that matters.
package request
