package game

// ErrSessionFull is returned when a join is attempted on a session with both
// slots taken.
type ErrSessionFull struct{}

func (e *ErrSessionFull) Error() string {
	return "session is full"
}

func IsSessionFull(err error) bool {
	_, ok := err.(*ErrSessionFull)
	return ok
}

// ErrGameNotActive is returned when an action is submitted before the game
// starts or after it ends.
type ErrGameNotActive struct{}

func (e *ErrGameNotActive) Error() string {
	return "game is not active"
}

func IsGameNotActive(err error) bool {
	_, ok := err.(*ErrGameNotActive)
	return ok
}

// ErrNotYourTurn is returned when a participant acts out of turn.
type ErrNotYourTurn struct{}

func (e *ErrNotYourTurn) Error() string {
	return "not your turn"
}

func IsNotYourTurn(err error) bool {
	_, ok := err.(*ErrNotYourTurn)
	return ok
}
