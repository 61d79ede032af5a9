package shared

import "errors"

// ErrConfigurationInvalid marks a missing or inconsistent operator setting.
// It is only ever fatal at startup.
var ErrConfigurationInvalid = errors.New("configuration invalid")
