package tablist

// Well-known gameMode values. 256 is a legacy sentinel carried over from
// the source protocol meaning "unspecified"; only -1 is documented, but
// both gate UPDATE_GAME_MODE. See DESIGN.md for why this is retained
// as-is rather than given further meaning.
const (
	GameModeNotSet    = -1
	GameModeSurvival  = 0
	GameModeCreative  = 1
	GameModeAdventure = 2
	GameModeSpectator = 3

	gameModeLegacyUnspecified = 256
)

func gameModeSet(mode int) bool {
	return mode != GameModeNotSet && mode != gameModeLegacyUnspecified
}
