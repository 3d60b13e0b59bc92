package models

import "strings"

type VideoRef struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Duration  string `json:"duration"`
	Channel   string `json:"channel"`
	Views     string `json:"views"`
	URL       string `json:"url"`
}

type QualityOption struct {
	Quality   string `json:"quality"`
	Size      string `json:"size"`
	SizeBytes int64  `json:"sizeBytes"`
	Format    string `json:"format"`
}

// Filename is the display name a finished download would be saved under.
func Filename(v VideoRef, q QualityOption) string {
	return v.Title + "." + strings.ToLower(q.Format)
}
