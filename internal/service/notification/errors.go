package notification

import "errors"

var (
	ErrUndefinedTopic = errors.New("undefined notification topic")
	ErrEmptyResource  = errors.New("notification without resource id")
)
