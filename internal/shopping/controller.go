// Package shopping turns user intents into list mutations.
//
// The Controller validates an intent against the session's mirror, applies
// it optimistically, writes it to the remote store, and rolls the mirror
// back if the write fails. Moves and deletes arm an undo entry.
package shopping

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
	"github.com/MrSnakeDoc/kupovina/internal/logger"
	"github.com/MrSnakeDoc/kupovina/internal/metrics"
	"github.com/MrSnakeDoc/kupovina/internal/mirror"
)

// Defaults for Options.
const (
	DefaultUndoWindow     = 5 * time.Second
	DefaultUndoDepth      = 1
	DefaultEnterHighlight = time.Second
)

// Options tunes a Controller. Zero values select the defaults.
type Options struct {
	UndoWindow     time.Duration
	UndoDepth      int
	EnterHighlight time.Duration
	Now            func() time.Time
}

func (o Options) withDefaults() Options {
	if o.UndoWindow <= 0 {
		o.UndoWindow = DefaultUndoWindow
	}
	if o.UndoDepth <= 0 {
		o.UndoDepth = DefaultUndoDepth
	}
	if o.EnterHighlight < 0 {
		o.EnterHighlight = 0
	} else if o.EnterHighlight == 0 {
		o.EnterHighlight = DefaultEnterHighlight
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Controller is the mutation controller of one signed-in user.
type Controller struct {
	mu       sync.Mutex
	user     string
	remote   Remote
	mirror   *mirror.Mirror
	undo     *UndoBuffer
	entering *Highlights
	now      func() time.Time
	log      logger.Logger
}

// NewController builds a controller acting as user.
func NewController(user string, remote Remote, m *mirror.Mirror, log logger.Logger, opts Options) *Controller {
	opts = opts.withDefaults()
	return &Controller{
		user:     user,
		remote:   remote,
		mirror:   m,
		undo:     NewUndoBuffer(opts.UndoDepth, opts.UndoWindow, opts.Now),
		entering: NewHighlights(opts.EnterHighlight, opts.Now, m.Notify),
		now:      opts.Now,
		log:      log.With(logger.String("user", user)),
	}
}

// User returns the username the controller acts as.
func (c *Controller) User() string { return c.user }

// AddItem adds a new item to the toBuy list.
func (c *Controller) AddItem(ctx context.Context, name, tag string) (item domain.Item, err error) {
	defer func() { metrics.ObserveMutation("add", err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	name = domain.NormalizeName(name)
	if name == "" {
		return domain.Item{}, domain.ErrEmptyName
	}
	if tag == "" {
		return domain.Item{}, domain.ErrTagRequired
	}
	if !c.mirror.Tags.Has(tag) {
		return domain.Item{}, fmt.Errorf("%w: %q", domain.ErrUnknownTag, tag)
	}
	if _, existing, ok := c.mirror.Lists.FindByName(name); ok {
		return domain.Item{}, fmt.Errorf("%w: %q", domain.ErrDuplicateName, existing.Name)
	}

	now := c.now()
	item = domain.Item{
		ID:      domain.NewID(now),
		Name:    name,
		AddedBy: c.user,
		AddedAt: now,
		Tag:     tag,
	}

	c.mirror.Lists.Put(domain.ListToBuy, item)
	if err := c.remote.InsertItemUnique(ctx, domain.ListToBuy, item); err != nil {
		c.mirror.Lists.Remove(domain.ListToBuy, item.ID)
		c.log.Warn("add rolled back", logger.String("item", item.Name), logger.Error(err))
		return domain.Item{}, domain.Remote("add", err)
	}

	c.entering.Mark(item.ID)
	c.log.Debug("item added", logger.String("id", item.ID), logger.String("item", item.Name))
	return item, nil
}

// MoveItem moves id from one list to the other and arms a move undo.
func (c *Controller) MoveItem(ctx context.Context, id string, from, to domain.ListName) (item domain.Item, err error) {
	defer func() { metrics.ObserveMutation("move", err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	if from == to {
		return domain.Item{}, domain.ErrSameList
	}
	item, ok := c.mirror.Lists.Move(id, from, to)
	if !ok {
		return domain.Item{}, fmt.Errorf("%w: %s in %s", domain.ErrNotFound, id, from)
	}

	patch := domain.ListPatch{}.Set(to, item).Delete(from, id)
	if err := c.remote.ApplyListPatch(ctx, patch); err != nil {
		c.mirror.Lists.Remove(to, id)
		c.mirror.Lists.Put(from, item)
		c.log.Warn("move rolled back", logger.String("item", item.Name), logger.Error(err))
		return domain.Item{}, domain.Remote("move", err)
	}

	c.undo.Arm(domain.UndoEntry{Kind: domain.UndoMove, Item: item, Source: from, Dest: to})
	c.mirror.Notify()
	return item, nil
}

// DeleteItem removes id from list once confirm agrees, and arms a delete undo.
func (c *Controller) DeleteItem(ctx context.Context, id string, list domain.ListName, confirm Confirmer) (err error) {
	defer func() { metrics.ObserveMutation("delete", err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.mirror.Lists.Get(list, id)
	if !ok {
		return fmt.Errorf("%w: %s in %s", domain.ErrNotFound, id, list)
	}
	if confirm == nil || !confirm(item) {
		return domain.ErrNotConfirmed
	}

	c.mirror.Lists.Remove(list, id)
	if err := c.remote.ApplyListPatch(ctx, domain.ListPatch{}.Delete(list, id)); err != nil {
		c.mirror.Lists.Put(list, item)
		c.log.Warn("delete rolled back", logger.String("item", item.Name), logger.Error(err))
		return domain.Remote("delete", err)
	}

	c.undo.Arm(domain.UndoEntry{Kind: domain.UndoDelete, Item: item, Source: list})
	c.mirror.Notify()
	return nil
}

// PerformUndo reverses the newest pending move or delete on the remote.
// The mirror catches up through the next snapshot. It returns nil, nil
// when nothing is pending. The entry is consumed even if the write fails.
func (c *Controller) PerformUndo(ctx context.Context) (entry *domain.UndoEntry, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.undo.Pop()
	if !ok {
		return nil, nil
	}
	defer func() { metrics.ObserveMutation("undo", err) }()
	defer c.mirror.Notify()

	if err := c.remote.ApplyListPatch(ctx, e.Inverse()); err != nil {
		c.log.Error("undo failed",
			logger.String("kind", string(e.Kind)),
			logger.String("item", e.Item.Name),
			logger.Error(err),
		)
		return &e, domain.Remote("undo", err)
	}
	return &e, nil
}

// PendingUndo returns the newest pending undo entry and its expiry.
func (c *Controller) PendingUndo() (domain.UndoEntry, time.Time, bool) {
	return c.undo.Peek()
}

// Entering returns the ids of recently added items.
func (c *Controller) Entering() []string {
	return c.entering.Active()
}

// AddTag registers a new tag. Names are case-sensitive and must not
// collide with any registered tag, default or remote.
func (c *Controller) AddTag(ctx context.Context, name, color string) (tag domain.Tag, err error) {
	defer func() { metrics.ObserveMutation("add_tag", err) }()

	name = strings.TrimSpace(name)
	color = strings.TrimSpace(color)
	if name == "" {
		return domain.Tag{}, domain.ErrEmptyTagName
	}
	if color == "" {
		return domain.Tag{}, domain.ErrEmptyColor
	}
	if c.mirror.Tags.Has(name) {
		return domain.Tag{}, fmt.Errorf("%w: %q", domain.ErrTagExists, name)
	}

	tag = domain.Tag{Name: name, Color: color}
	if err := c.remote.SaveTag(ctx, tag); err != nil {
		return domain.Tag{}, domain.Remote("add tag", err)
	}
	c.mirror.Tags.Put(tag)
	return tag, nil
}

// AddRecipe creates an empty recipe.
func (c *Controller) AddRecipe(ctx context.Context, title string) (recipe domain.Recipe, err error) {
	defer func() { metrics.ObserveMutation("add_recipe", err) }()

	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Recipe{}, domain.ErrEmptyTitle
	}

	now := c.now()
	recipe = domain.Recipe{
		ID:      domain.NewID(now),
		Title:   title,
		AddedBy: c.user,
		AddedAt: now,
	}
	if err := c.remote.SaveRecipe(ctx, recipe); err != nil {
		return domain.Recipe{}, domain.Remote("add recipe", err)
	}
	return recipe, nil
}

// AnnotateRecipe appends a note to recipe id.
func (c *Controller) AnnotateRecipe(ctx context.Context, id, text string) (recipe domain.Recipe, err error) {
	defer func() { metrics.ObserveMutation("annotate_recipe", err) }()

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Recipe{}, domain.ErrEmptyNote
	}

	note := domain.RecipeNote{Author: c.user, Text: text, At: c.now()}
	recipe, err = c.remote.AppendRecipeNote(ctx, id, note)
	if err != nil {
		return domain.Recipe{}, domain.Remote("annotate recipe", err)
	}
	return recipe, nil
}
