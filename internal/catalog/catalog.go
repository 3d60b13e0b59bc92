package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"fknsrs.biz/p/viddown/models"
)

var (
	ErrInvalidURL     = errors.New("catalog: invalid video url")
	ErrUnknownQuality = errors.New("catalog: unknown quality")
	ErrUnknownVideo   = errors.New("catalog: unknown video")
	ErrNoYouTubeID    = errors.New("catalog: no youtube video id")
)

type Rand interface {
	Intn(n int) int
}

type Catalog struct {
	rand   Rand
	logger logrus.FieldLogger
}

func New(rand Rand, logger logrus.FieldLogger) *Catalog {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Catalog{rand: rand, logger: logger}
}

func (c *Catalog) Platforms() []Platform {
	return append([]Platform(nil), platforms...)
}

func (c *Catalog) ListQualities() []models.QualityOption {
	return append([]models.QualityOption(nil), qualities...)
}

func (c *Catalog) PremiumFeatures() []string {
	return append([]string(nil), premiumFeatures...)
}

func (c *Catalog) FindQuality(label string) (models.QualityOption, error) {
	for _, q := range qualities {
		if q.Quality == label {
			return q, nil
		}
	}

	return models.QualityOption{}, fmt.Errorf("catalog.FindQuality: %w: %q", ErrUnknownQuality, label)
}

// DefaultQuality is the configured default if it names a real option,
// otherwise the built-in default.
func (c *Catalog) DefaultQuality(s models.Settings) models.QualityOption {
	if q, err := c.FindQuality(s.DefaultQuality); err == nil {
		return q
	}

	q, err := c.FindQuality(models.DefaultQualityLabel)
	if err != nil {
		panic(err)
	}

	return q
}

func (c *Catalog) FindVideo(id int) (models.VideoRef, error) {
	for _, v := range sampleVideos {
		if v.ID == id {
			return v, nil
		}
	}

	return models.VideoRef{}, fmt.Errorf("catalog.FindVideo: %w: %d", ErrUnknownVideo, id)
}

func ValidateURL(rawURL string) (Platform, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Platform{}, fmt.Errorf("catalog.ValidateURL: %w: %q", ErrInvalidURL, rawURL)
	}

	host := strings.ToLower(u.Hostname())

	for _, e := range validHosts {
		if !strings.Contains(host, e.host) {
			continue
		}

		for _, p := range platforms {
			if p.Name == e.platform {
				return p, nil
			}
		}
	}

	return Platform{}, fmt.Errorf("catalog.ValidateURL: %w: unsupported host %q", ErrInvalidURL, host)
}

// ResolveVideo stands in for a metadata lookup: any supported url resolves to
// one of the sample videos.
func (c *Catalog) ResolveVideo(rawURL string) (models.VideoRef, error) {
	p, err := ValidateURL(rawURL)
	if err != nil {
		return models.VideoRef{}, fmt.Errorf("catalog.ResolveVideo: %w", err)
	}

	l := c.logger.WithFields(logrus.Fields{
		"lookup.url":      rawURL,
		"lookup.platform": p.Name,
	})

	if p.Name == "YouTube" {
		if id, err := ExtractYouTubeID(rawURL); err == nil {
			l = l.WithField("lookup.youtube_id", id)
		}
	}

	v := sampleVideos[c.rand.Intn(len(sampleVideos))]

	l.WithField("video.id", v.ID).Debug("resolved video")

	return v, nil
}

// PickAds returns a top and bottom placement, never the same ad twice.
func (c *Catalog) PickAds() (Ad, Ad) {
	top := c.rand.Intn(len(ads))

	bottom := c.rand.Intn(len(ads) - 1)
	if bottom >= top {
		bottom++
	}

	return ads[top], ads[bottom]
}

func ExtractYouTubeID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("catalog.ExtractYouTubeID: %w", err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	switch {
	case host == "youtube.com" && u.Path == "/watch":
		if id := u.Query().Get("v"); id != "" {
			return id, nil
		}
	case host == "youtube.com" && strings.HasPrefix(u.Path, "/shorts/"):
		if id := strings.Trim(strings.TrimPrefix(u.Path, "/shorts/"), "/"); id != "" {
			return id, nil
		}
	case host == "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return id, nil
		}
	}

	return "", fmt.Errorf("catalog.ExtractYouTubeID: %w in %q", ErrNoYouTubeID, rawURL)
}
