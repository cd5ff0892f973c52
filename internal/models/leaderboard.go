package model

// LeaderboardEntry ligne d'un classement public. Le pseudo est masqué avant
// de sortir du serveur.
type LeaderboardEntry struct {
	UserID      string `json:"userId"`
	Nickname    string `json:"nickname"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Rank        int    `json:"rank"`
	Score       int    `json:"score"` // total d'entraides, score de crédit, jours de série, etc.
	CreditScore int    `json:"creditScore"`
}

// Leaderboard classement complet renvoyé par l'API
type Leaderboard struct {
	Type   string             `json:"type"`   // helper, credit, active, contributor
	Period string             `json:"period"` // accepté mais les projections sont cumulatives
	List   []LeaderboardEntry `json:"list"`
}
