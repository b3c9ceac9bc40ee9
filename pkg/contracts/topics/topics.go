package topics

const (
	// Odds
	OddsChanged = "odds_changed" // chave = id da odd
)
