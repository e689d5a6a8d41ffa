package models

// ListingRecord is one product as it appears in a search results list.
// Fields are kept as the raw page text; missing fields are empty strings.
type ListingRecord struct {
	Name        string `json:"product_name"`
	Price       string `json:"price"`
	Rating      string `json:"rating"`
	ReviewCount string `json:"review_count"`
	URL         string `json:"url"`
}

// HasIdentity reports whether the record carries at least one identity
// field. Records without name and URL are never persisted.
func (l ListingRecord) HasIdentity() bool {
	return l.Name != "" || l.URL != ""
}

// ReviewRecord is a single customer review. Either field may be empty,
// but not both.
type ReviewRecord struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Empty reports whether the review carries no content at all.
func (r ReviewRecord) Empty() bool {
	return r.Title == "" && r.Description == ""
}

// DetailRecord is a ListingRecord enriched with the data scraped from the
// product's own page.
type DetailRecord struct {
	ListingRecord
	Specifications map[string]string `json:"product_specs"`
	Reviews        []ReviewRecord    `json:"reviews"`
}

// NewDetailRecord merges a listing with scraped detail data. Nil maps and
// slices are normalized so the JSON output always contains the keys.
func NewDetailRecord(listing ListingRecord, specs map[string]string, reviews []ReviewRecord) DetailRecord {
	if specs == nil {
		specs = map[string]string{}
	}
	if reviews == nil {
		reviews = []ReviewRecord{}
	}
	return DetailRecord{
		ListingRecord:  listing,
		Specifications: specs,
		Reviews:        reviews,
	}
}
