// Package roomerrors holds sentinel errors shared by the game, rooms and ws
// packages (kept separate to avoid circular imports).
package roomerrors

import "errors"

var (
	ErrRoomFull        = errors.New("room is full")
	ErrRoomClosed      = errors.New("room no longer exists")
	ErrRoundInProgress = errors.New("a round is in progress")
)
