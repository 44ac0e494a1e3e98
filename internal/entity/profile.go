package entity

// Placeholders substituted for fields the result card did not render.
const (
	UnknownName     = "Unknown"
	NoHeadline      = "No headline"
	UnknownLocation = "Unknown location"
)

// ProfileRecord is one profile summary card as seen on a search results page.
// URL is always set and identifies the profile; the other fields hold either
// rendered text or their placeholder, never an empty string.
type ProfileRecord struct {
	URL      string `json:"url"`
	Name     string `json:"name"`
	Headline string `json:"headline"`
	Location string `json:"location"`
}
