package profiles

import (
	"errors"

	"github.com/skillscout/skillscout/config"
	"github.com/skillscout/skillscout/models"
)

// ErrNotFound is returned when a uid has no known profile.
var ErrNotFound = errors.New("profile not found")

// Registry resolves caller uids to user profiles.
type Registry struct {
	byUID map[string]models.UserProfile
}

// defaults mirror the development profile set used before config-driven
// registries existed.
var defaults = []models.UserProfile{
	{Name: "Ayesha", City: "Karachi", UID: "u1", Topic: "Golang"},
	{Name: "Bilal", City: "Lahore", UID: "u2", Topic: "Machine Learning"},
	{Name: "Sara", City: "Islamabad", UID: "u3", Topic: "UI/UX Design"},
}

// NewRegistry builds a registry from config entries, falling back to the
// built-in development set when none are configured.
func NewRegistry(entries []config.ProfileEntry) *Registry {
	r := &Registry{byUID: make(map[string]models.UserProfile)}
	if len(entries) == 0 {
		for _, p := range defaults {
			r.byUID[p.UID] = p
		}
		return r
	}
	for _, e := range entries {
		r.byUID[e.UID] = models.UserProfile{Name: e.Name, City: e.City, UID: e.UID, Topic: e.Topic}
	}
	return r
}

// Lookup resolves a uid to its profile.
func (r *Registry) Lookup(uid string) (models.UserProfile, error) {
	p, ok := r.byUID[uid]
	if !ok {
		return models.UserProfile{}, ErrNotFound
	}
	return p, nil
}
