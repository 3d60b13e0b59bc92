package handlers

import (
	"net/http"

	"fknsrs.biz/p/viddown/internal/ctxcatalog"
	"fknsrs.biz/p/viddown/internal/ctxsettings"
	"fknsrs.biz/p/viddown/internal/httputil"
	"fknsrs.biz/p/viddown/internal/ptr"
	"fknsrs.biz/p/viddown/internal/stringutil"
	"fknsrs.biz/p/viddown/models"
)

func Settings(rw http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(rw, r, http.StatusOK, ctxsettings.Settings(r.Context()))
}

type settingsPatch struct {
	DefaultQuality *string
	AutoDownload   *bool
	SaveToGallery  *bool
	ShowAds        *bool
	Notifications  *bool
}

func (p settingsPatch) apply(s *models.Settings) {
	if p.DefaultQuality != nil {
		s.DefaultQuality = *p.DefaultQuality
	}
	if p.AutoDownload != nil {
		s.AutoDownload = *p.AutoDownload
	}
	if p.SaveToGallery != nil {
		s.SaveToGallery = *p.SaveToGallery
	}
	if p.ShowAds != nil {
		s.ShowAds = *p.ShowAds
	}
	if p.Notifications != nil {
		s.Notifications = *p.Notifications
	}
}

// SettingsUpdate only touches the fields present in the form, so a client
// can flip a single toggle without resending everything.
func SettingsUpdate(rw http.ResponseWriter, r *http.Request) {
	var input struct {
		DefaultQuality string `formam:"defaultQuality"`
		AutoDownload   string `formam:"autoDownload"`
		SaveToGallery  string `formam:"saveToGallery"`
		ShowAds        string `formam:"showAds"`
		Notifications  string `formam:"notifications"`
	}

	if err := decodeForm(r, &input); err != nil {
		httputil.BadRequest(rw, r, "could not decode form")
		return
	}

	var patch settingsPatch

	if r.PostForm.Has("defaultQuality") {
		if _, err := ctxcatalog.GetCatalog(r.Context()).FindQuality(input.DefaultQuality); err != nil {
			httputil.BadRequest(rw, r, "unknown quality")
			return
		}

		patch.DefaultQuality = ptr.String(input.DefaultQuality)
	}

	for _, e := range []struct {
		name  string
		value string
		out   **bool
	}{
		{"autoDownload", input.AutoDownload, &patch.AutoDownload},
		{"saveToGallery", input.SaveToGallery, &patch.SaveToGallery},
		{"showAds", input.ShowAds, &patch.ShowAds},
		{"notifications", input.Notifications, &patch.Notifications},
	} {
		if r.PostForm.Has(e.name) {
			*e.out = ptr.Bool(stringutil.LooksTrue(e.value))
		}
	}

	s, err := ctxsettings.GetStore(r.Context()).Update(r.Context(), patch.apply)
	if err != nil {
		httputil.InternalError(rw, r, err)
		return
	}

	httputil.WriteJSON(rw, r, http.StatusOK, s)
}
