package game

import "fmt"

// Movement slides a penguin from Start to End.
type Movement struct {
	Start Position `json:"from"`
	End   Position `json:"to"`
}

func (m Movement) String() string {
	return fmt.Sprintf("%s->%s", m.Start, m.End)
}

// Less orders movements lexicographically by start then end.
func (m Movement) Less(o Movement) bool {
	if m.Start != o.Start {
		return m.Start.Less(o.Start)
	}
	return m.End.Less(o.End)
}
