package response

import "errors"

var errAlreadyRunning = errors.New("response: monitor already running")
