package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Jeffail/gabs/v2"
	"github.com/sirupsen/logrus"

	"fknsrs.biz/p/viddown/internal/kvstore"
	"fknsrs.biz/p/viddown/models"
)

const Key = "viddown-settings"

type Store struct {
	m      sync.RWMutex
	kv     kvstore.Store
	logger logrus.FieldLogger
	s      models.Settings
}

// Open loads the stored settings. Nothing here is fatal: a missing blob, a
// broken one, or an individual bad key all fall back to defaults.
func Open(ctx context.Context, kv kvstore.Store, logger logrus.FieldLogger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	l := logger.WithField("kv.key", Key)

	s := &Store{kv: kv, logger: logger, s: models.DefaultSettings()}

	d, err := kv.Get(ctx, Key)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			l.WithError(err).Warning("could not read settings; using defaults")
		}

		return s
	}

	s.s = Merge(d, l)

	return s
}

// Merge overlays whichever keys in d are present and correctly typed on top
// of the defaults.
func Merge(d []byte, logger logrus.FieldLogger) models.Settings {
	s := models.DefaultSettings()

	c, err := gabs.ParseJSON(d)
	if err != nil {
		logger.WithError(err).Warning("settings blob is not valid json; using defaults")
		return s
	}

	if _, ok := c.Data().(map[string]interface{}); !ok {
		logger.Warning("settings blob is not an object; using defaults")
		return s
	}

	mergeString(c, "defaultQuality", &s.DefaultQuality, logger)
	mergeBool(c, "autoDownload", &s.AutoDownload, logger)
	mergeBool(c, "saveToGallery", &s.SaveToGallery, logger)
	mergeBool(c, "showAds", &s.ShowAds, logger)
	mergeBool(c, "notifications", &s.Notifications, logger)

	return s
}

func mergeString(c *gabs.Container, key string, out *string, logger logrus.FieldLogger) {
	if !c.Exists(key) {
		return
	}

	v, ok := c.S(key).Data().(string)
	if !ok || v == "" {
		logger.WithField("settings.key", key).Warning("ignoring stored setting with wrong type")
		return
	}

	*out = v
}

func mergeBool(c *gabs.Container, key string, out *bool, logger logrus.FieldLogger) {
	if !c.Exists(key) {
		return
	}

	v, ok := c.S(key).Data().(bool)
	if !ok {
		logger.WithField("settings.key", key).Warning("ignoring stored setting with wrong type")
		return
	}

	*out = v
}

func (s *Store) Settings() models.Settings {
	s.m.RLock()
	defer s.m.RUnlock()

	return s.s
}

func (s *Store) Save(ctx context.Context, v models.Settings) error {
	s.m.Lock()
	defer s.m.Unlock()

	return s.save(ctx, v)
}

func (s *Store) save(ctx context.Context, v models.Settings) error {
	d, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("settings.Store.Save: could not encode settings: %w", err)
	}

	if err := s.kv.Set(ctx, Key, d); err != nil {
		return fmt.Errorf("settings.Store.Save: could not write settings: %w", err)
	}

	s.s = v

	return nil
}

// Update applies fn to a copy of the current settings and saves the result.
// If saving fails the in-memory settings are left as they were.
func (s *Store) Update(ctx context.Context, fn func(v *models.Settings)) (models.Settings, error) {
	s.m.Lock()
	defer s.m.Unlock()

	v := s.s
	fn(&v)

	if err := s.save(ctx, v); err != nil {
		return s.s, fmt.Errorf("settings.Store.Update: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"settings.default_quality": v.DefaultQuality,
		"settings.auto_download":   v.AutoDownload,
		"settings.save_to_gallery": v.SaveToGallery,
		"settings.show_ads":        v.ShowAds,
		"settings.notifications":   v.Notifications,
	}).Info("settings updated")

	return v, nil
}
