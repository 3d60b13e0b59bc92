package catalog

import (
	"fknsrs.biz/p/viddown/models"
)

type Platform struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
	Host string `json:"url"`
}

type Ad struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Color   string `json:"color"`
}

var platforms = []Platform{
	{Name: "YouTube", Icon: "🎥", Host: "youtube.com"},
	{Name: "Facebook", Icon: "📘", Host: "facebook.com"},
	{Name: "Instagram", Icon: "📷", Host: "instagram.com"},
	{Name: "TikTok", Icon: "🎵", Host: "tiktok.com"},
	{Name: "Twitter", Icon: "🐦", Host: "twitter.com"},
	{Name: "Dailymotion", Icon: "🎬", Host: "dailymotion.com"},
}

// validHosts is wider than platforms: youtu.be short links count as YouTube.
var validHosts = []struct {
	host     string
	platform string
}{
	{"youtube.com", "YouTube"},
	{"youtu.be", "YouTube"},
	{"facebook.com", "Facebook"},
	{"instagram.com", "Instagram"},
	{"tiktok.com", "TikTok"},
	{"twitter.com", "Twitter"},
	{"dailymotion.com", "Dailymotion"},
}

var qualities = []models.QualityOption{
	quality("144p", "5 MB", "MP4"),
	quality("240p", "8 MB", "MP4"),
	quality("360p", "12 MB", "MP4"),
	quality("480p", "18 MB", "MP4"),
	quality("720p", "25 MB", "MP4"),
	quality("1080p", "45 MB", "MP4"),
	quality("4K", "120 MB", "MP4"),
	quality("Audio Only", "3 MB", "MP3"),
}

func quality(label, size, format string) models.QualityOption {
	n, err := models.ParseSize(size)
	if err != nil {
		panic(err)
	}

	return models.QualityOption{Quality: label, Size: size, SizeBytes: n, Format: format}
}

var sampleVideos = []models.VideoRef{
	{
		ID:        1,
		Title:     "Amazing Nature Documentary",
		Thumbnail: "https://via.placeholder.com/320x180/4CAF50/white?text=Nature+Doc",
		Duration:  "10:45",
		Channel:   "NatureHub",
		Views:     "2.5M views",
		URL:       "https://youtube.com/watch?v=sample1",
	},
	{
		ID:        2,
		Title:     "Cooking Tutorial - Italian Pasta",
		Thumbnail: "https://via.placeholder.com/320x180/FF9800/white?text=Cooking+Tutorial",
		Duration:  "8:32",
		Channel:   "ChefMaster",
		Views:     "1.8M views",
		URL:       "https://youtube.com/watch?v=sample2",
	},
	{
		ID:        3,
		Title:     "Tech Review: Latest Smartphone",
		Thumbnail: "https://via.placeholder.com/320x180/1976D2/white?text=Tech+Review",
		Duration:  "15:20",
		Channel:   "TechGuru",
		Views:     "3.2M views",
		URL:       "https://youtube.com/watch?v=sample3",
	},
}

var ads = []Ad{
	{Type: "banner", Content: "Get 50% off on Premium Subscription!", Color: "#4CAF50"},
	{Type: "banner", Content: "Download Faster with VidDown Pro!", Color: "#FF9800"},
	{Type: "banner", Content: "Remove Ads - Upgrade Today!", Color: "#1976D2"},
}

var premiumFeatures = []string{
	"Ad-free experience",
	"Unlimited downloads",
	"4K video support",
	"Batch download",
	"Priority download speed",
	"Cloud storage sync",
	"Advanced video converter",
	"Download scheduler",
}
