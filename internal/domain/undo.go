package domain

import "time"

// UndoKind is the kind of mutation an UndoEntry reverses.
type UndoKind string

const (
	UndoMove   UndoKind = "move"
	UndoDelete UndoKind = "delete"
)

// UndoEntry records enough to reverse a move or a delete.
type UndoEntry struct {
	Kind UndoKind `json:"kind"`
	Item Item     `json:"item"`
	// Source is the list the item was in before the mutation.
	Source ListName `json:"source"`
	// Dest is the list a move sent the item to. Empty for deletes.
	Dest    ListName  `json:"dest,omitempty"`
	ArmedAt time.Time `json:"armedAt"`
}

// Inverse returns the remote patch that reverses the entry.
func (e UndoEntry) Inverse() ListPatch {
	p := ListPatch{}
	p.Set(e.Source, e.Item)
	if e.Kind == UndoMove && e.Dest != "" && e.Dest != e.Source {
		p.Delete(e.Dest, e.Item.ID)
	}
	return p
}
