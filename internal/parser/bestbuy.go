package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/TharukaVishwajith/playwright-crawler/internal/models"
)

// BestBuyParser extracts records from HTML snapshots of Best Buy pages.
// All methods are pure reads: a missing field yields an empty string,
// never an error. Only unparseable HTML is an error.
type BestBuyParser struct {
	baseURL string

	itemSelectors   []string
	nameSelectors   []string
	priceSelectors  []string
	ratingSelectors []string
	reviewSelectors []string
}

func NewBestBuyParser(baseURL string) *BestBuyParser {
	return &BestBuyParser{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		itemSelectors: []string{
			"li.sku-item",
			".sku-item",
			"[data-testid=\"product-card\"]",
		},
		nameSelectors: []string{
			"h4.sku-title a",
			".sku-header a",
			"h4.sku-header a",
			"[data-testid=\"product-title\"]",
		},
		priceSelectors: []string{
			".priceView-hero-price span[aria-hidden=\"true\"]",
			".priceView-customer-price span[aria-hidden=\"true\"]",
			"[data-testid=\"customer-price\"] span",
			".priceView-customer-price span",
		},
		ratingSelectors: []string{
			".c-ratings-reviews .visually-hidden",
			".ratings-reviews .visually-hidden",
			"[data-testid=\"customer-rating\"]",
		},
		reviewSelectors: []string{
			".c-reviews",
			".c-ratings-reviews .c-reviews-v4",
			"[data-testid=\"rating-count\"]",
		},
	}
}

// ParseListings reads one ListingRecord per result item. Items without a
// name and without a URL are dropped.
func (p *BestBuyParser) ParseListings(html string) ([]models.ListingRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	items := p.findFirst(doc.Selection, p.itemSelectors)

	var records []models.ListingRecord
	items.Each(func(_ int, item *goquery.Selection) {
		record := models.ListingRecord{
			Name:        p.textFirst(item, p.nameSelectors),
			Price:       p.textFirst(item, p.priceSelectors),
			Rating:      p.textFirst(item, p.ratingSelectors),
			ReviewCount: p.textFirst(item, p.reviewSelectors),
			URL:         p.hrefFirst(item, p.nameSelectors),
		}

		if record.HasIdentity() {
			records = append(records, record)
		}
	})

	return records, nil
}

// ParseSpecs reads the specification name/value rows from a product's
// specifications panel.
func (p *BestBuyParser) ParseSpecs(html string) (map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	specs := make(map[string]string)

	doc.Find(".spec-row, [data-testid=\"specification-row\"]").Each(func(_ int, row *goquery.Selection) {
		name := cleanText(row.Find(".row-title, .spec-title, [data-testid=\"specification-name\"]").First().Text())
		value := cleanText(row.Find(".row-value, .spec-value, [data-testid=\"specification-value\"]").First().Text())
		if name != "" && value != "" {
			specs[name] = value
		}
	})

	// Definition-list fallback used on some product layouts
	if len(specs) == 0 {
		doc.Find("dl").Each(func(_ int, dl *goquery.Selection) {
			terms := dl.Find("dt")
			values := dl.Find("dd")
			if terms.Length() != values.Length() {
				return
			}
			terms.Each(func(i int, dt *goquery.Selection) {
				name := cleanText(dt.Text())
				value := cleanText(values.Eq(i).Text())
				if name != "" && value != "" {
					specs[name] = value
				}
			})
		})
	}

	return specs, nil
}

// ParseReviews reads one ReviewRecord per review item on the current page.
// Reviews with neither title nor body are dropped.
func (p *BestBuyParser) ParseReviews(html string) ([]models.ReviewRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var reviews []models.ReviewRecord
	doc.Find("li.review-item, .review-item, [data-testid=\"review-item\"]").Each(func(_ int, item *goquery.Selection) {
		review := models.ReviewRecord{
			Title:       cleanText(item.Find("h4.review-title, .review-heading h4, [data-testid=\"review-title\"]").First().Text()),
			Description: cleanText(item.Find(".ugc-review-body, .pre-white-space, [data-testid=\"review-body\"]").First().Text()),
		}
		if !review.Empty() {
			reviews = append(reviews, review)
		}
	})

	return reviews, nil
}

// findFirst returns the matches of the first selector that matches anything.
func (p *BestBuyParser) findFirst(s *goquery.Selection, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		if found := s.Find(sel); found.Length() > 0 {
			return found
		}
	}
	return s.Find(selectors[len(selectors)-1])
}

func (p *BestBuyParser) textFirst(s *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if found := s.Find(sel); found.Length() > 0 {
			if text := cleanText(found.First().Text()); text != "" {
				return text
			}
		}
	}
	return ""
}

func (p *BestBuyParser) hrefFirst(s *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		href, ok := s.Find(sel).First().Attr("href")
		if !ok {
			continue
		}
		if url := p.absoluteURL(href); url != "" {
			return url
		}
	}
	return ""
}

func (p *BestBuyParser) absoluteURL(href string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "" || strings.HasPrefix(href, "javascript:"):
		return ""
	case strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "/"):
		return p.baseURL + href
	default:
		return p.baseURL + "/" + href
	}
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
