package handler

import (
	"encoding/json"
	"net/http"

	"github.com/golang-cafe/remotehq/internal/server"
	"github.com/golang-cafe/remotehq/internal/settings"
)

type settingsGetSaver interface {
	GetSettings() (settings.Settings, error)
	UpdateSettings(userID string, u settings.Update) (settings.Settings, error)
}

// GetSettingsHandler and UpdateSettingsHandler work on the settings that
// drive harvesting, whoever is signed in. Fetch passes are process-wide.
func GetSettingsHandler(svr server.Server, settingsRepo settingsGetSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := settingsRepo.GetSettings()
		if err != nil {
			svr.Log(err, "unable to retrieve settings")
			svr.JSONError(w, http.StatusInternalServerError, "unable to retrieve settings")
			return
		}
		svr.JSON(w, http.StatusOK, s)
	}
}

func UpdateSettingsHandler(svr server.Server, settingsRepo settingsGetSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u settings.Update
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&u); err != nil {
			svr.JSONError(w, http.StatusBadRequest, "request is invalid")
			return
		}
		s, err := settingsRepo.UpdateSettings(settings.HarvestingUserID, u)
		if verr, ok := err.(settings.ValidationError); ok {
			svr.JSON(w, http.StatusBadRequest, verr)
			return
		}
		if err != nil {
			svr.Log(err, "unable to update settings")
			svr.JSONError(w, http.StatusInternalServerError, "unable to update settings")
			return
		}
		log := svr.Logger()
		log.Info().Str("user", svr.UserID(r)).Str("mode", string(s.HarvestingMode)).Int("titles", len(s.WhitelistedTitles)).Msg("harvesting settings updated")
		svr.JSON(w, http.StatusOK, s)
	}
}
