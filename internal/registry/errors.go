package registry

import "errors"

// ErrSocketInOtherRoom is returned when a socket tries to join a room while it
// is still a member of a different one. The registry never transfers
// membership implicitly; callers must Leave first.
var ErrSocketInOtherRoom = errors.New("socket already in another room")
