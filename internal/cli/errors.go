package cli

import "errors"

var (
	errFileRequired    = errors.New("file path is required")
	errPostURLRequired = errors.New("post URL is required")
	errTokenRequired   = errors.New("no access token: pass --token, set RAFFLE_TOKEN or run \"raffle token set\"")
	errNoStdin         = errors.New("no input on stdin")
	errTokenAction     = errors.New("token action must be set, clear or show")
	errTokenEmpty      = errors.New("token is empty")
)
