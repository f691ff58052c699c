package errs

import "errors"

var (
	UnknownStrategy = errors.New("unknown load balancing strategy")
	WorkerNotFound  = errors.New("worker not found")
	UnknownTool     = errors.New("unknown tool")
)
