package excursionclient

import (
	"fmt"
	"strconv"
	"strings"
	"tripscout/internal/excursion"
	"tripscout/pkg/logger"

	"github.com/tidwall/gjson"
)

const (
	defaultTitle       = "Untitled Experience"
	defaultDescription = "No description available"
	defaultRating      = 4.5
	defaultCategory    = "Sightseeing"
	unknownLocation    = "Location not specified"

	// Stock placeholder when the source item carries no usable image.
	fallbackThumbnail = "https://images.unsplash.com/photo-1488646953014-85cb44e25828?w=400&h=300&fit=crop"

	maxImages = 3
)

// categoryKeywords maps free-text tag fragments to the fixed category
// taxonomy. Ordered: the first keyword matching any tag wins.
var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"adventure", "Adventure"},
	{"cultural", "Culture"},
	{"culture", "Culture"},
	{"food", "Food & Drink"},
	{"nature", "Nature"},
	{"water", "Water Activities"},
	{"sightseeing", "Sightseeing"},
	{"museum", "Culture"},
	{"historical", "Culture"},
	{"beach", "Water Activities"},
	{"outdoor", "Adventure"},
}

// transformProducts normalizes raw provider items one at a time. A malformed
// item is logged and skipped, never aborting the batch; the returned count is
// how many were dropped.
func (v *ViatorClient) transformProducts(items []gjson.Result, searchedDestination string) ([]excursion.Excursion, int) {
	transformed := make([]excursion.Excursion, 0, len(items))
	dropped := 0

	for i, item := range items {
		exc, err := v.transformProduct(item, i, searchedDestination)
		if err != nil {
			v.logger.Warn("viator: skipping malformed product",
				logger.Field{Key: "index", Value: i},
				logger.Field{Key: "err", Value: err},
			)
			dropped++
			continue
		}
		transformed = append(transformed, exc)
	}

	return transformed, dropped
}

// transformProduct maps one raw item into the canonical record. Every field
// falls back through the known schema variants; only a non-object item is an
// error.
func (v *ViatorClient) transformProduct(item gjson.Result, index int, searchedDestination string) (excursion.Excursion, error) {
	if !item.IsObject() {
		return excursion.Excursion{}, fmt.Errorf("item %d is not an object", index)
	}

	code := firstString(item, "productCode", "code")
	id := code
	if id == "" {
		id = fmt.Sprintf("viator-%d", index)
	}

	title := firstString(item, "title")
	if title == "" {
		title = defaultTitle
	}

	description := firstString(item, "description", "shortDescription")
	if description == "" {
		description = defaultDescription
	}

	durationMinutes := firstNumber(item,
		"duration.fixedDurationInMinutes",
		"duration.variableDurationFromMinutes",
		"durationInMinutes",
	)

	images := extractImages(item)

	thumbnail := ""
	if len(images) > 0 {
		thumbnail = images[0]
	}
	if thumbnail == "" {
		thumbnail = firstString(item, "thumbnailURL", "thumbnailHiResURL")
	}
	if thumbnail == "" {
		thumbnail = fallbackThumbnail
	}

	rating := firstFloat(item, "reviews.combinedAverageRating", "rating")
	if rating == 0 {
		rating = defaultRating
	}

	reviewCount := int(firstNumber(item, "reviews.totalReviews", "reviewCount"))
	if reviewCount < 0 {
		reviewCount = 0
	}

	location := firstString(item,
		"location.name",
		"destinationName",
		"destination.name",
		"locationInfo.name",
		"address.city",
	)
	if location == "" {
		location = searchedDestination
	}
	if location == "" {
		location = unknownLocation
	}

	return excursion.Excursion{
		ID:            id,
		Title:         title,
		Description:   description,
		Price:         extractPrice(item),
		Rating:        rating,
		ReviewCount:   reviewCount,
		Duration:      formatDuration(durationMinutes),
		Provider:      viatorProviderName,
		Thumbnail:     thumbnail,
		Category:      extractCategory(item),
		Location:      location,
		AffiliateLink: v.affiliateLink(code, firstString(item, "productUrl", "webURL")),
		// Round-robin day placeholder: the upstream carries no per-day
		// grouping, so spread items across a 7-day window.
		Day:    (index % 7) + 1,
		Images: images,
	}, nil
}

// extractPrice walks the known pricing shapes: structured summary, flat
// amount, then a formatted string with currency noise stripped. Anything
// unparseable is 0, never negative.
func extractPrice(item gjson.Result) float64 {
	if val := item.Get("pricing.summary.fromPrice"); val.Exists() && val.Float() != 0 {
		return nonNegative(val.Float())
	}
	if val := item.Get("price.amount"); val.Exists() && val.Float() != 0 {
		return nonNegative(val.Float())
	}
	if val := item.Get("priceFormatted"); val.Exists() && val.String() != "" {
		parsed, err := strconv.ParseFloat(stripNonNumeric(val.String()), 64)
		if err != nil {
			return 0
		}
		return nonNegative(parsed)
	}
	return 0
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}

func stripNonNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// extractImages returns up to 3 image URLs, preferring the structured image
// list (large variant when available), then the single-image fields.
func extractImages(item gjson.Result) []string {
	if list := item.Get("images"); list.IsArray() && len(list.Array()) > 0 {
		images := make([]string, 0, maxImages)
		for _, img := range list.Array() {
			if len(images) == maxImages {
				break
			}
			if url := imageURL(img); url != "" {
				images = append(images, url)
			}
		}
		if len(images) > 0 {
			return images
		}
	}

	for _, key := range []string{"image.url", "thumbnailHiResURL", "thumbnailURL"} {
		if val := item.Get(key); val.Exists() && val.String() != "" {
			return []string{val.String()}
		}
	}

	return nil
}

// imageURL picks the URL out of one entry of the images list. Variant
// indexes 6 and 7 are the 674x446 and 720x480 renditions; the last variant is
// the largest available fallback.
func imageURL(img gjson.Result) string {
	if variants := img.Get("variants"); variants.IsArray() {
		arr := variants.Array()
		for _, idx := range []int{6, 7} {
			if idx < len(arr) {
				if url := arr[idx].Get("url").String(); url != "" {
					return url
				}
			}
		}
		if len(arr) > 0 {
			if url := arr[len(arr)-1].Get("url").String(); url != "" {
				return url
			}
		}
	}

	if url := firstString(img, "imageSource", "url"); url != "" {
		return url
	}
	if img.Type == gjson.String {
		return img.String()
	}
	return ""
}

// extractCategory matches the item's free-text tags against the keyword
// table, first match wins.
func extractCategory(item gjson.Result) string {
	tags := item.Get("tags")
	if !tags.IsArray() {
		tags = item.Get("categories")
	}
	if !tags.IsArray() {
		return defaultCategory
	}

	for _, tag := range tags.Array() {
		name := tag.String()
		if tag.IsObject() {
			name = firstString(tag, "tag", "name")
		}
		if name == "" {
			continue
		}
		lowered := strings.ToLower(name)
		for _, kw := range categoryKeywords {
			if strings.Contains(lowered, kw.keyword) {
				return kw.category
			}
		}
	}

	return defaultCategory
}

// formatDuration renders a minutes value for the UI.
func formatDuration(minutes int64) string {
	if minutes <= 0 {
		return "Duration varies"
	}

	hours := minutes / 60
	mins := minutes % 60

	if hours == 0 {
		return fmt.Sprintf("%d minutes", mins)
	}
	if mins == 0 {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}

// affiliateLink appends the partner tracking parameters. Records always carry
// a link, even when the source had no product URL.
func (v *ViatorClient) affiliateLink(code, productURL string) string {
	base := productURL
	if base == "" {
		base = fmt.Sprintf("https://www.viator.com/tours/%s", code)
	}
	return fmt.Sprintf("%s?pid=%s&mcid=42383&medium=link", base, v.partnerID)
}

// firstFloat returns the first of the named keys holding a non-zero number.
func firstFloat(item gjson.Result, keys ...string) float64 {
	for _, key := range keys {
		if val := item.Get(key); val.Exists() && val.Float() != 0 {
			return val.Float()
		}
	}
	return 0
}
