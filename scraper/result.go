package scraper

// SearchResult is one entry extracted from a search results page.
type SearchResult struct {
	ID       string // site-assigned id, stripped of the "mdl-" prefix
	Title    string
	URL      string // absolute detail page URL
	TypeYear string // free-text subtitle, e.g. "Korean Drama - 2021"; may be empty
}

// Details holds the fields scraped from a title's detail page. String
// fields that could not be extracted default to "N/A" ("Unknown" for the
// title, empty for the image).
type Details struct {
	Title    string
	ImageURL string
	Rating   string
	Country  string
	Type     string
	Episodes string
	Aired    string
	Duration string
	Genres   string // ", "-joined list
	Synopsis string
	URL      string // the page the record came from
}
