package common

import "fmt"

var (
	ErrChannelNotInitialized     = fmt.Errorf("channel is not initialized")
	ErrChannelAlreadyInitialized = fmt.Errorf("channel is already initialized")
	ErrEpisodeNotFound           = fmt.Errorf("episode not found")
	ErrInvalidAudioFormat        = fmt.Errorf("invalid audio format")
	ErrValidation                = fmt.Errorf("validation failed")
)
