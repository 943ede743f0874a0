package models

// Event описывает одно событие феста из фиксированного каталога.
type Event struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	TeamSize int    `json:"team_size"` // 1 for individual events
	Fee      int    `json:"fee"`
}

func (e Event) IsTeamEvent() bool {
	return e.TeamSize > 1
}

// Catalog is fixed; registration forms submit the numeric id as a string,
// the public site links by slug.
var eventCatalog = []Event{
	{ID: "0", Slug: "code-clash", Name: "Code Clash", TeamSize: 1, Fee: 150},
	{ID: "1", Slug: "web-dash", Name: "Web Dash", TeamSize: 1, Fee: 200},
	{ID: "2", Slug: "treasure-quest", Name: "Treasure Quest", TeamSize: 1, Fee: 100},
	{ID: "3", Slug: "reel-craft", Name: "Reel Craft", TeamSize: 1, Fee: 100},
	{ID: "4", Slug: "battle-blitz-valorant", Name: "Battle Blitz: Valorant", TeamSize: 5, Fee: 400},
	{ID: "5", Slug: "battle-blitz-pubg", Name: "Battle Blitz: PUBG Mobile", TeamSize: 4, Fee: 400},
	{ID: "6", Slug: "battle-blitz-free-fire", Name: "Battle Blitz: Free Fire", TeamSize: 4, Fee: 400},
}

// EventByID resolves a submitted catalog key. Returns false for unknown ids.
func EventByID(id string) (Event, bool) {
	for _, e := range eventCatalog {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}

func EventBySlug(slug string) (Event, bool) {
	for _, e := range eventCatalog {
		if e.Slug == slug {
			return e, true
		}
	}
	return Event{}, false
}

func AllEvents() []Event {
	out := make([]Event, len(eventCatalog))
	copy(out, eventCatalog)
	return out
}
