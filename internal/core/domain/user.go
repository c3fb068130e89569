package domain

import "time"

// Default preference values applied to every new account.
const (
	DefaultGenre    = "fantasy"
	DefaultMood     = "epic"
	DefaultDuration = "medium"
)

// Statistic kinds tracked per user. Collaborator services report activity
// against these counters.
const (
	StatStoriesCreated   = "stories_created"
	StatStoriesCompleted = "stories_completed"
	StatDiscussionRounds = "discussion_rounds"
	StatTotalTimeSpent   = "total_time_spent"
)

// Statistics is the per-user counter block. All counters start at zero.
type Statistics struct {
	StoriesCreated   int64 `json:"stories_created" bson:"stories_created"`
	StoriesCompleted int64 `json:"stories_completed" bson:"stories_completed"`
	DiscussionRounds int64 `json:"discussion_rounds" bson:"discussion_rounds"`
	TotalTimeSpent   int64 `json:"total_time_spent" bson:"total_time_spent"`
}

// User is the durable account record. Username is the case-sensitive store
// key; email is unique across all users. PasswordHash never leaves the
// subsystem: it is excluded from JSON and callers only ever see a Profile.
type User struct {
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	PasswordHash string            `json:"-"`
	CreatedAt    time.Time         `json:"created_at"`
	LastLogin    *time.Time        `json:"last_login,omitempty"`
	Preferences  map[string]string `json:"preferences"`
	Statistics   Statistics        `json:"statistics"`
}

// DefaultPreferences returns a fresh preferences map for a new account.
func DefaultPreferences() map[string]string {
	return map[string]string{
		"default_genre":      DefaultGenre,
		"default_mood":       DefaultMood,
		"preferred_duration": DefaultDuration,
	}
}

// Profile is the redacted view of a User handed to callers.
type Profile struct {
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	CreatedAt   time.Time         `json:"created_at"`
	LastLogin   *time.Time        `json:"last_login,omitempty"`
	Preferences map[string]string `json:"preferences"`
	Statistics  Statistics        `json:"statistics"`
}

// Redacted maps the full record to its caller-safe view. The preferences map
// is copied so callers cannot mutate stored state through the view.
func (u *User) Redacted() *Profile {
	prefs := make(map[string]string, len(u.Preferences))
	for k, v := range u.Preferences {
		prefs[k] = v
	}
	return &Profile{
		Username:    u.Username,
		Email:       u.Email,
		CreatedAt:   u.CreatedAt,
		LastLogin:   u.LastLogin,
		Preferences: prefs,
		Statistics:  u.Statistics,
	}
}

// ValidStatistic reports whether kind names a known counter.
func ValidStatistic(kind string) bool {
	switch kind {
	case StatStoriesCreated, StatStoriesCompleted, StatDiscussionRounds, StatTotalTimeSpent:
		return true
	}
	return false
}
