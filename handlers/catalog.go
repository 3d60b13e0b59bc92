package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"fknsrs.biz/p/viddown/internal/catalog"
	"fknsrs.biz/p/viddown/internal/ctxcatalog"
	"fknsrs.biz/p/viddown/internal/ctxlogger"
	"fknsrs.biz/p/viddown/internal/ctxsettings"
	"fknsrs.biz/p/viddown/internal/httputil"
	"fknsrs.biz/p/viddown/models"
)

type CatalogResponse struct {
	Platforms       []catalog.Platform     `json:"platforms"`
	Qualities       []models.QualityOption `json:"qualities"`
	PremiumFeatures []string               `json:"premiumFeatures"`
	DefaultQuality  models.QualityOption   `json:"defaultQuality"`
}

func Catalog(rw http.ResponseWriter, r *http.Request) {
	c := ctxcatalog.GetCatalog(r.Context())

	httputil.WriteJSON(rw, r, http.StatusOK, CatalogResponse{
		Platforms:       c.Platforms(),
		Qualities:       c.ListQualities(),
		PremiumFeatures: c.PremiumFeatures(),
		DefaultQuality:  c.DefaultQuality(ctxsettings.Settings(r.Context())),
	})
}

type AdsResponse struct {
	Top    *catalog.Ad `json:"top"`
	Bottom *catalog.Ad `json:"bottom"`
}

func Ads(rw http.ResponseWriter, r *http.Request) {
	if !ctxsettings.Settings(r.Context()).ShowAds {
		httputil.WriteJSON(rw, r, http.StatusOK, AdsResponse{})
		return
	}

	top, bottom := ctxcatalog.GetCatalog(r.Context()).PickAds()

	httputil.WriteJSON(rw, r, http.StatusOK, AdsResponse{Top: &top, Bottom: &bottom})
}

type LookupResponse struct {
	Platform catalog.Platform `json:"platform"`
	Video    models.VideoRef  `json:"video"`
}

func Lookup(rw http.ResponseWriter, r *http.Request) {
	var input struct {
		URL string `formam:"url" json:"url"`
	}

	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			httputil.BadRequest(rw, r, "could not parse request body")
			return
		}
	} else {
		if err := decodeForm(r, &input); err != nil {
			httputil.BadRequest(rw, r, "could not decode form")
			return
		}
	}

	if strings.TrimSpace(input.URL) == "" {
		httputil.BadRequest(rw, r, "url is required")
		return
	}

	platform, err := catalog.ValidateURL(input.URL)
	if err != nil {
		httputil.BadRequest(rw, r, "invalid video url")
		return
	}

	v, err := ctxcatalog.GetCatalog(r.Context()).ResolveVideo(input.URL)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidURL) {
			httputil.BadRequest(rw, r, "invalid video url")
			return
		}

		httputil.InternalError(rw, r, err)
		return
	}

	ctxlogger.GetLogger(r.Context()).WithField("video.id", v.ID).Debug("lookup resolved")

	httputil.WriteJSON(rw, r, http.StatusOK, LookupResponse{Platform: platform, Video: v})
}

func isJSON(r *http.Request) bool {
	t, _, err := mime.ParseMediaType(r.Header.Get("content-type"))
	return err == nil && t == "application/json"
}
