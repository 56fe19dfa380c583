package model

import "time"

// DownloadTask is the state of one simulated offline download
type DownloadTask struct {
	CountryCode   string     `json:"countryCode"`
	Name          string     `json:"name"`
	Flag          string     `json:"flag"`
	Size          string     `json:"size"`
	IsDownloading bool       `json:"isDownloading"`
	Progress      int        `json:"progress"`
	IsDownloaded  bool       `json:"isDownloaded"`
	DownloadDate  *time.Time `json:"downloadDate,omitempty"`
}

// Notice is a short user-facing notification produced by a background operation
type Notice struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
