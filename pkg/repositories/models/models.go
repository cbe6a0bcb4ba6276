package models

// MatchResult is the archived record of a finished session. Only finished
// results are persisted; live session state never touches the database.
type MatchResult struct {
	SessionID    string `json:"sessionId"`
	SessionName  string `json:"sessionName"`
	WinnerID     string `json:"winnerId"`
	Player1Name  string `json:"player1Name"`
	Player1Lives int    `json:"player1Lives"`
	Player2Name  string `json:"player2Name"`
	Player2Lives int    `json:"player2Lives"`
	// FinishedAt is a unix timestamp in milliseconds
	FinishedAt int64 `json:"finishedAt"`
}
