package unsplash

// Photo identifies one remote photo and where to get it.
//
// The API returns a map of variant URLs per photo; "raw" is the untransformed
// rendition and accepts imgix-style query parameters for resizing. The
// "download_location" link must be requested before the raw URL is fetched,
// per the API's usage-accounting rules.
type Photo struct {
	ID    string            `json:"id"`
	URLs  map[string]string `json:"urls"`
	Links map[string]string `json:"links"`
}

// FileURL returns the URL of the untransformed photo content.
func (p Photo) FileURL() string {
	return p.URLs["raw"]
}

// DownloadLocation returns the usage-tracking URL that must be requested
// before FileURL is fetched.
func (p Photo) DownloadLocation() string {
	return p.Links["download_location"]
}

// Topic is a curated photo category. Only the id is needed to filter
// random-photo queries.
type Topic struct {
	ID string `json:"id"`
}

// Criteria selects which photos a Random call should return.
type Criteria struct {
	Count int    // number of photos to request
	Topic string // optional topic id, resolved via FindTopic
	Query string // optional free-text filter, ignored when Topic is set
}

// Quality describes the desired output shape of a downloaded photo.
// The zero value requests the original rendition.
type Quality struct {
	Width  uint
	Height uint
}

// CustomQuality requests a rendition resized to cover w x h.
func CustomQuality(w, h uint) Quality {
	return Quality{Width: w, Height: h}
}

// IsOriginal reports whether no resizing was requested.
func (q Quality) IsOriginal() bool {
	return q.Width == 0 || q.Height == 0
}
