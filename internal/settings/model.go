package settings

import (
	"time"
)

type Mode string

const (
	ModeExact Mode = "exact"
	ModeFuzzy Mode = "fuzzy"
)

// DefaultWhitelistedTitles seeds every newly created settings row.
var DefaultWhitelistedTitles = []string{
	"software",
	"engineer",
	"developer",
	"dev",
	"fullstack",
	"frontend",
	"backend",
	"swe",
	"sde",
	"sdet",
	"sre",
	"platform",
	"infrastructure",
	"infra",
	"mobile",
	"ios",
	"android",
	"cloud",
	"devops",
	"ai",
}

const DefaultMode = ModeFuzzy

// HarvestingUserID keys the settings row every fetch pass reads.
const HarvestingUserID = ""

// Settings are the harvesting preferences of one user. The row with an empty
// UserID is the process-wide singleton used before any user is known.
type Settings struct {
	ID                int       `json:"id"`
	UserID            string    `json:"userId,omitempty"`
	WhitelistedTitles []string  `json:"whitelistedTitles"`
	HarvestingMode    Mode      `json:"harvestingMode"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func Default() Settings {
	titles := make([]string, len(DefaultWhitelistedTitles))
	copy(titles, DefaultWhitelistedTitles)
	return Settings{
		WhitelistedTitles: titles,
		HarvestingMode:    DefaultMode,
	}
}

// Update is a partial settings change; nil fields are left untouched.
type Update struct {
	WhitelistedTitles *[]string `json:"whitelistedTitles,omitempty"`
	HarvestingMode    *Mode     `json:"harvestingMode,omitempty"`
}
