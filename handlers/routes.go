package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

func Routes(m *mux.Router) {
	m.Methods(http.MethodGet).Path("/api/catalog").HandlerFunc(Catalog)
	m.Methods(http.MethodGet).Path("/api/ads").HandlerFunc(Ads)
	m.Methods(http.MethodPost).Path("/api/lookup").HandlerFunc(Lookup)

	m.Methods(http.MethodGet).Path("/api/session").HandlerFunc(Session)
	m.Methods(http.MethodPost).Path("/api/session/target").HandlerFunc(SessionTarget)
	m.Methods(http.MethodGet).Path("/api/session/updates").HandlerFunc(SessionUpdates)
	m.Methods(http.MethodPost).Path("/api/session/{command:start|pause|resume|toggle|cancel}").HandlerFunc(SessionCommand)

	m.Methods(http.MethodGet).Path("/api/downloads").HandlerFunc(Downloads)
	m.Methods(http.MethodGet).Path("/api/downloads/recent").HandlerFunc(RecentDownloads)
	m.Methods(http.MethodGet).Path("/api/downloads/{id}").HandlerFunc(Download)
	m.Methods(http.MethodGet).Path("/api/downloads/{id}/share").HandlerFunc(ShareDownload)
	m.Methods(http.MethodDelete).Path("/api/downloads/{id}").HandlerFunc(DeleteDownload)

	m.Methods(http.MethodGet).Path("/api/settings").HandlerFunc(Settings)
	m.Methods(http.MethodPost).Path("/api/settings").HandlerFunc(SettingsUpdate)
}
