package session

import (
	"time"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
)

// View is everything the UI renders for one session.
type View struct {
	User         string            `json:"user"`
	Have         []domain.TagGroup `json:"have"`
	ToBuy        []domain.TagGroup `json:"toBuy"`
	Tags         []domain.Tag      `json:"tags"`
	OthersOnline []string          `json:"othersOnline"`
	Undo         *UndoView         `json:"undo,omitempty"`
	Entering     []string          `json:"entering"`
	Banner       *Banner           `json:"banner,omitempty"`
	Recipes      []domain.Recipe   `json:"recipes"`
	GeneratedAt  time.Time         `json:"generatedAt"`
}

// UndoView describes the pending undo toast.
type UndoView struct {
	Kind      domain.UndoKind `json:"kind"`
	ItemID    string          `json:"itemId"`
	ItemName  string          `json:"itemName"`
	Source    domain.ListName `json:"source"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// Banner is a non-fatal sync error.
type Banner struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// View builds the UI model from the mirror as of now.
func (s *Session) View(now time.Time) View {
	tags := s.mirror.Tags.All()
	lists := s.mirror.Lists.Snapshot()

	v := View{
		User:         s.Username,
		Have:         domain.GroupByTag(lists.Sorted(domain.ListHave), tags),
		ToBuy:        domain.GroupByTag(lists.Sorted(domain.ListToBuy), tags),
		Tags:         tags,
		OthersOnline: s.mirror.Presence.OthersOnline(s.Username),
		Entering:     s.ctrl.Entering(),
		Recipes:      s.mirror.Recipes.All(),
		GeneratedAt:  now,
	}

	if e, expires, ok := s.ctrl.PendingUndo(); ok && now.Before(expires) {
		v.Undo = &UndoView{
			Kind:      e.Kind,
			ItemID:    e.Item.ID,
			ItemName:  e.Item.Name,
			Source:    e.Source,
			ExpiresAt: expires,
		}
	}
	if msg, at := s.mirror.Error(); msg != "" {
		v.Banner = &Banner{Message: msg, At: at}
	}
	return v
}
