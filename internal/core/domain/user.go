package domain

import "time"

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// Gamification defaults seeded at registration. The auth subsystem never
// touches these afterwards; the quiz frontend mutates them through generic
// update calls.
const (
	DefaultXP            = 0
	DefaultCurrentStreak = 1
	DefaultLongestStreak = 1
	DefaultDailyXP       = 0
	DefaultDailyXPGoal   = 50
)

// User models a registered learner (or admin) of the quiz platform.
// PasswordHash is never serialized; callers always receive a sanitized user.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Name            string    `json:"name"`
	Role            string    `json:"role"`
	XP              int       `json:"xp"`
	CurrentStreak   int       `json:"current_streak"`
	LongestStreak   int       `json:"longest_streak"`
	DailyXP         int       `json:"daily_xp"`
	DailyXPGoal     int       `json:"daily_xp_goal"`
	LastLoginDate   string    `json:"last_login_date"`
	LastXPResetDate string    `json:"last_xp_reset_date"`
	LastQuizDate    *string   `json:"last_quiz_date"`
	CreatedAt       time.Time `json:"created_at"`
}

// DateOnly formats t the way the frontend stores calendar dates (YYYY-MM-DD).
func DateOnly(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
