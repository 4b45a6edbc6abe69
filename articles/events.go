package articles

import "github.com/scribehub/go-scribe/event"

// Event names dispatched by mutations. Wire these into the cache's
// invalidate_on list so listings stay fresh.
const (
	EventCreated = "article.created"
	EventUpdated = "article.updated"
	EventDeleted = "article.deleted"
	EventReacted = "article.reacted"
)

// MutationEvents is every event name that obsoletes a cached collection.
var MutationEvents = []string{EventCreated, EventUpdated, EventDeleted, EventReacted}

// MutationEvent announces a change to one author's collection.
type MutationEvent struct {
	event.BaseEvent
	ArticleID string
	AuthorID  string
}

// Subject identifies the cached collections the mutation obsoletes.
func (e MutationEvent) Subject() string {
	return e.AuthorID
}

// Subjects lists every cached scope the mutation obsoletes. Creates and
// deletes change listing membership, so the unscoped listings go stale
// along with the author's; updates and reactions touch the author's only.
func (e MutationEvent) Subjects() []string {
	switch e.Name() {
	case EventCreated, EventDeleted:
		return []string{e.AuthorID, ""}
	}
	return []string{e.AuthorID}
}

func newMutationEvent(name, articleID, authorID string) MutationEvent {
	return MutationEvent{
		BaseEvent: event.NewEvent(name),
		ArticleID: articleID,
		AuthorID:  authorID,
	}
}
