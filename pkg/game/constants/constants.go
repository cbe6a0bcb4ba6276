package constants

const (
	// InitialLives is the number of lives each participant starts with
	InitialLives int = 3
	// MaxParticipants is the number of slots in a session
	MaxParticipants int = 2
	// MagazineMinShells is the smallest magazine the source will generate
	MagazineMinShells int = 2
	// MagazineMaxShells is the largest magazine the source will generate
	MagazineMaxShells int = 8
	// WinnerNobody is the winner id recorded when a session ends with no winner
	WinnerNobody string = "no one"
)
