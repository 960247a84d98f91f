package service

import "errors"

// ErrNoUser is returned when an operation needs a username and none was given.
var ErrNoUser = errors.New("no user for operation")
