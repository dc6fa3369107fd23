package release

// Platform is the download entry for one target platform.
type Platform struct {
	Signature string `json:"signature"`
	URL       string `json:"url"`
}

// Manifest is the latest.json document polled by the auto-update client.
type Manifest struct {
	Version   string              `json:"version"`
	Notes     string              `json:"notes"`
	PubDate   string              `json:"pub_date"`
	Platforms map[string]Platform `json:"platforms"`
}
