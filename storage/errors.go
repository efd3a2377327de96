package storage

import "errors"

var ErrContestNotFound = errors.New("contest not found in storage")
var ErrUserNotFound = errors.New("user not found in storage")
var ErrAlreadyFinalized = errors.New("contest already finalized")
