package bind

import "errors"

var (
	ErrNoFactory      = errors.New("no factory registered")
	ErrNotObject      = errors.New("factory did not return an object")
	ErrFactoryFailed  = errors.New("factory failed")
	ErrAlreadyMounted = errors.New("root already mounted")
	ErrBadLoop        = errors.New("malformed loop expression")
	ErrDetached       = errors.New("directive node has no parent")

	// ErrLoopClosed is returned by EventLoop.Submit and Do once Run returned.
	ErrLoopClosed = errors.New("event loop closed")
)
