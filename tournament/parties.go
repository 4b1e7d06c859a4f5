package tournament

import (
	"fish/game"

	"golang.org/x/exp/slices"
)

const (
	MinPartySize = game.MinPlayers
	MaxPartySize = game.MaxPlayers
)

// AssignParties splits pool, in order, into games of at most maxSize players.
// Full games are taken greedily from the front. A remainder of a single player
// is merged back with the last full game and the merged players are split
// again with a smaller maximum, so 13 players become games of 4, 4, 3 and 2.
// A pool smaller than MinPartySize yields no games.
func AssignParties[T any](pool []T, maxSize int) [][]T {
	maxSize = min(maxSize, MaxPartySize)
	if len(pool) < MinPartySize || maxSize < MinPartySize {
		return nil
	}

	var parties [][]T
	i := 0
	for ; len(pool)-i >= maxSize; i += maxSize {
		parties = append(parties, slices.Clone(pool[i:i+maxSize]))
	}

	rest := pool[i:]
	switch {
	case len(rest) == 0:
	case len(rest) >= MinPartySize:
		parties = append(parties, slices.Clone(rest))
	case maxSize-1 < MinPartySize:
		// Pairs only: the last pair takes the odd player.
		parties[len(parties)-1] = slices.Clone(pool[i-maxSize:])
	default:
		parties = append(parties[:len(parties)-1], AssignParties(pool[i-maxSize:], maxSize-1)...)
	}
	return parties
}
