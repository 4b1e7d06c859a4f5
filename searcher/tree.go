package searcher

import (
	"fmt"
	"sync"

	"fish/game"
	"fish/utils"
)

// Tree is a node of the (unbounded) game tree. Children are computed on first
// use and memoised, so a tree can be traversed as deep as needed without
// building more than what is visited.
type Tree struct {
	State game.MovementGame
	Moves []game.Movement // current player's movements, in penguin then scan order

	children []*branch
}

type branch struct {
	once sync.Once
	tree *Tree
}

// BuildTree returns the tree rooted at g. Players that cannot move are skipped,
// so the root belongs to the first player able to move; if nobody can, the
// node is terminal.
func BuildTree(g game.MovementGame) *Tree {
	state := g.SkipStuck()

	var moves []game.Movement
	if len(state.Players) > 0 {
		moves = state.MovesFor(state.CurrentPlayer().Color)
	}

	children := make([]*branch, len(moves))
	for i := range children {
		children[i] = &branch{}
	}

	return &Tree{
		State:    state,
		Moves:    moves,
		children: children,
	}
}

// Terminal reports whether no player can move.
func (t *Tree) Terminal() bool {
	return len(t.Moves) == 0
}

func (t *Tree) child(i int) *Tree {
	b := t.children[i]
	b.once.Do(func() {
		next, err := t.State.Move(t.Moves[i])
		if err != nil {
			panic(fmt.Sprintf("generated movement %s is illegal: %v", t.Moves[i], err))
		}
		b.tree = BuildTree(next)
	})
	return b.tree
}

// Child returns the subtree reached by m, if m is legal here.
func (t *Tree) Child(m game.Movement) (*Tree, bool) {
	i := utils.FindIndex(t.Moves, m)
	if i < 0 {
		return nil, false
	}
	return t.child(i), true
}

// CheckMovementLegal returns the state reached by m, or why m is illegal.
func (t *Tree) CheckMovementLegal(m game.Movement) (game.MovementGame, error) {
	if child, ok := t.Child(m); ok {
		return child.State, nil
	}

	player := t.State.CurrentPlayer()
	err := game.ErrUnreachable
	if utils.FindIndex(t.State.Penguins[player.Color], m.Start) < 0 {
		err = game.ErrNotOwnedByPlayer
	}
	return game.MovementGame{}, &game.MovementError{Player: player.Name, Movement: m, Err: err}
}

// MapReachableStates calls f with every movement and the state it leads to, in Moves order.
func (t *Tree) MapReachableStates(f func(game.Movement, game.MovementGame)) {
	for i, m := range t.Moves {
		f(m, t.child(i).State)
	}
}
