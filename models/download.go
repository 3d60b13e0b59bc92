package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// RecordID accepts both the string ids written by this program and the
// numeric (millisecond timestamp) ids found in older download blobs.
type RecordID string

func (id *RecordID) UnmarshalJSON(d []byte) error {
	d = bytes.TrimSpace(d)

	if len(d) > 0 && d[0] == '"' {
		var s string
		if err := json.Unmarshal(d, &s); err != nil {
			return fmt.Errorf("models.RecordID.UnmarshalJSON: %w", err)
		}
		*id = RecordID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(d, &n); err != nil {
		return fmt.Errorf("models.RecordID.UnmarshalJSON: expected string or number: %w", err)
	}

	if i, err := n.Int64(); err == nil {
		*id = RecordID(strconv.FormatInt(i, 10))
		return nil
	}

	*id = RecordID(n.String())

	return nil
}

type DownloadRecord struct {
	ID           RecordID  `json:"id"`
	Title        string    `json:"title"`
	Thumbnail    string    `json:"thumbnail"`
	Duration     string    `json:"duration"`
	Channel      string    `json:"channel"`
	Quality      string    `json:"quality"`
	Format       string    `json:"format"`
	Size         string    `json:"size"`
	SizeBytes    int64     `json:"sizeBytes"`
	DownloadDate time.Time `json:"downloadDate"`
}

func NewDownloadRecord(id RecordID, v VideoRef, q QualityOption, at time.Time) DownloadRecord {
	return DownloadRecord{
		ID:           id,
		Title:        v.Title,
		Thumbnail:    v.Thumbnail,
		Duration:     v.Duration,
		Channel:      v.Channel,
		Quality:      q.Quality,
		Format:       q.Format,
		Size:         q.Size,
		SizeBytes:    q.SizeBytes,
		DownloadDate: at.UTC(),
	}
}
