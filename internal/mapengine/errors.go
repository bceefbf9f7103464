package mapengine

import "errors"

// ErrUnknownObject is returned when a click targets an ID that is not on the map
var ErrUnknownObject = errors.New("unknown map object")
