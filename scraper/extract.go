package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// maxSearchResults caps how many entries a single search yields.
	maxSearchResults = 10

	// synopsisLimit is the rune count a synopsis is truncated to.
	synopsisLimit = 500
)

// detailFields declares how each info-list field is extracted: the primary
// label, its locale alternate (the site serves French labels for some
// visitors), and where the value lands. Lookup tries the primary label
// first, then the alternate, then falls back to "N/A".
var detailFields = []struct {
	key    string
	alt    string
	assign func(*Details, string)
}{
	{"Country", "Pays", func(d *Details, v string) { d.Country = v }},
	{"Type", "Catégorie", func(d *Details, v string) { d.Type = v }},
	{"Episodes", "Épisodes", func(d *Details, v string) { d.Episodes = v }},
	{"Aired", "Diffusé", func(d *Details, v string) { d.Aired = v }},
	{"Duration", "Durée", func(d *Details, v string) { d.Duration = v }},
}

// ParseSearchResults extracts up to 10 entries from a rendered search page,
// in document order. Result containers missing their title link are
// skipped. A page with no matching containers yields an empty slice, never
// an error.
func ParseSearchResults(html string, base *url.URL) []SearchResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var results []SearchResult
	doc.Find(`div.box[id^="mdl-"]`).EachWithBreak(func(_ int, box *goquery.Selection) bool {
		if len(results) >= maxSearchResults {
			return false
		}

		link := box.Find("h6.title a").First()
		if link.Length() == 0 {
			return true
		}
		title := strings.TrimSpace(link.Text())
		id := strings.TrimPrefix(box.AttrOr("id", ""), "mdl-")
		if title == "" || id == "" {
			return true
		}

		results = append(results, SearchResult{
			ID:       id,
			Title:    title,
			URL:      resolveURL(base, link.AttrOr("href", "")),
			TypeYear: strings.TrimSpace(box.Find("span.text-muted").First().Text()),
		})
		return true
	})
	return results
}

// ParseDetailPage extracts a detail record from a rendered title page.
// Extraction is best-effort per field; a missing optional field never
// aborts the rest of the record. ok is false only when the page carries
// none of the detail-page markers, i.e. it is not a detail page at all.
func ParseDetailPage(html string, base *url.URL, sourceURL string) (Details, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Details{}, false
	}
	if doc.Find("h1.film-title, li.list-item, div.show-synopsis").Length() == 0 {
		return Details{}, false
	}

	d := Details{Title: "Unknown", Rating: "N/A", Genres: "N/A", URL: sourceURL}

	if t := strings.TrimSpace(doc.Find("h1.film-title").First().Text()); t != "" {
		d.Title = t
	}

	poster := doc.Find("img.img-responsive").FilterFunction(func(_ int, img *goquery.Selection) bool {
		return strings.Contains(strings.ToLower(img.AttrOr("alt", "")), "poster")
	}).First()
	d.ImageURL = normalizeImageURL(poster.AttrOr("src", ""), base)

	if r := strings.TrimSpace(doc.Find("div.col-film-rating div.box").First().Text()); r != "" {
		d.Rating = r
	}

	info := parseInfoList(doc)
	for _, f := range detailFields {
		f.assign(&d, lookupInfo(info, f.key, f.alt))
	}

	// The synopsis container embeds edit links; drop them before taking
	// the text.
	synopsis := doc.Find("div.show-synopsis").First()
	synopsis.Find("a").Remove()
	d.Synopsis = truncate(collapseSpace(synopsis.Text()), synopsisLimit)

	var genres []string
	doc.Find("li.show-genres a.text-primary").Each(func(_ int, a *goquery.Selection) {
		if g := strings.TrimSpace(a.Text()); g != "" {
			genres = append(genres, g)
		}
	})
	if len(genres) > 0 {
		d.Genres = strings.Join(genres, ", ")
	}

	return d, true
}

// parseInfoList scans the info list items for bold labels and builds a
// label→value map. The label's trailing colon is trimmed; the value is the
// item's remaining text.
func parseInfoList(doc *goquery.Document) map[string]string {
	info := make(map[string]string)
	doc.Find("li.list-item").Each(func(_ int, item *goquery.Selection) {
		label := item.Find("b.inline").First()
		if label.Length() == 0 {
			return
		}
		key := strings.TrimSuffix(strings.TrimSpace(label.Text()), ":")
		if key == "" {
			return
		}
		value := collapseSpace(item.Text())
		value = strings.TrimSpace(strings.Replace(value, key+":", "", 1))
		info[key] = value
	})
	return info
}

// lookupInfo tries the primary label, then its locale alternate.
func lookupInfo(info map[string]string, key, alt string) string {
	if v := info[key]; v != "" {
		return v
	}
	if v := info[alt]; v != "" {
		return v
	}
	return "N/A"
}

// normalizeImageURL turns protocol-relative and root-relative poster URLs
// into absolute ones.
func normalizeImageURL(src string, base *url.URL) string {
	src = strings.TrimSpace(src)
	switch {
	case src == "", strings.HasPrefix(src, "http"):
		return src
	case strings.HasPrefix(src, "//"):
		return "https:" + src
	default:
		return resolveURL(base, src)
	}
}

func resolveURL(base *url.URL, href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(u).String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate shortens s to limit runes, appending an ellipsis marker when
// anything was cut.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
