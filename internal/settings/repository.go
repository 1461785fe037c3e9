package settings

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

// GetSettings returns the process-wide settings, creating them with the
// defaults on first access.
func (r *Repository) GetSettings() (Settings, error) {
	return r.GetSettingsForUser(HarvestingUserID)
}

func (r *Repository) GetSettingsForUser(userID string) (Settings, error) {
	s, err := r.settingsByUser(userID)
	if err == nil {
		return s, nil
	}
	if err != sql.ErrNoRows {
		return Settings{}, errors.Wrapf(err, "unable to retrieve settings for user %q", userID)
	}
	defaults := Default()
	_, err = r.db.Exec(
		`INSERT INTO settings (user_id, whitelisted_titles, harvesting_mode, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO NOTHING`,
		userID,
		pq.Array(defaults.WhitelistedTitles),
		string(defaults.HarvestingMode),
	)
	if err != nil {
		return Settings{}, errors.Wrapf(err, "unable to create default settings for user %q", userID)
	}
	s, err = r.settingsByUser(userID)
	if err != nil {
		return Settings{}, errors.Wrapf(err, "unable to retrieve settings for user %q", userID)
	}
	return s, nil
}

// UpdateSettings validates u and applies it to the user's settings row.
// Validation failures are returned as ValidationError, unwrapped.
func (r *Repository) UpdateSettings(userID string, u Update) (Settings, error) {
	u, err := u.Validate()
	if err != nil {
		return Settings{}, err
	}
	current, err := r.GetSettingsForUser(userID)
	if err != nil {
		return Settings{}, err
	}
	next := current.Apply(u)
	res := r.db.QueryRow(
		`UPDATE settings SET whitelisted_titles = $1, harvesting_mode = $2, updated_at = NOW() WHERE id = $3 RETURNING updated_at`,
		pq.Array(next.WhitelistedTitles),
		string(next.HarvestingMode),
		next.ID,
	)
	if err := res.Scan(&next.UpdatedAt); err != nil {
		return Settings{}, errors.Wrapf(err, "unable to update settings %d", next.ID)
	}
	return next, nil
}

func (r *Repository) settingsByUser(userID string) (Settings, error) {
	res := r.db.QueryRow(`SELECT id, user_id, whitelisted_titles, harvesting_mode, updated_at FROM settings WHERE user_id = $1`, userID)
	var s Settings
	var mode string
	err := res.Scan(&s.ID, &s.UserID, pq.Array(&s.WhitelistedTitles), &mode, &s.UpdatedAt)
	if err != nil {
		return Settings{}, err
	}
	s.HarvestingMode = Mode(mode)
	return s, nil
}
