package authenticator

import "errors"

var ErrNothingToImport = errors.New("import document contains no credentials")
