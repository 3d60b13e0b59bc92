package models

const (
	DefaultQualityLabel  = "720p"
	DefaultAutoDownload  = true
	DefaultSaveToGallery = true
	DefaultShowAds       = true
	DefaultNotifications = false
)

type Settings struct {
	DefaultQuality string `json:"defaultQuality"`
	AutoDownload   bool   `json:"autoDownload"`
	SaveToGallery  bool   `json:"saveToGallery"`
	ShowAds        bool   `json:"showAds"`
	Notifications  bool   `json:"notifications"`
}

func DefaultSettings() Settings {
	return Settings{
		DefaultQuality: DefaultQualityLabel,
		AutoDownload:   DefaultAutoDownload,
		SaveToGallery:  DefaultSaveToGallery,
		ShowAds:        DefaultShowAds,
		Notifications:  DefaultNotifications,
	}
}
