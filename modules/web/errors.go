package web

import "errors"

// ErrModulesNotSet is returned by Start when the form or list module is missing.
var ErrModulesNotSet = errors.New("taskform and tasklist modules are required")
