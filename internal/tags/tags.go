// Package tags turns category tags into display labels and browse links.
package tags

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MarketPrefix marks marketplace category tags, e.g. "market_vehicles".
const MarketPrefix = "market_"

// IsMarket reports whether tag is a marketplace category.
func IsMarket(tag string) bool {
	return strings.HasPrefix(tag, MarketPrefix) && len(tag) > len(MarketPrefix)
}

// MarketCategory strips the marketplace prefix.
func MarketCategory(tag string) string {
	return strings.TrimPrefix(tag, MarketPrefix)
}

// Label renders a tag for display: "market_real_estate" becomes
// "Real Estate", "coffee-shops" becomes "Coffee Shops".
func Label(tag string) string {
	if IsMarket(tag) {
		tag = MarketCategory(tag)
	}
	words := strings.FieldsFunc(tag, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	// cases.Caser is stateful and not safe for concurrent use
	caser := cases.Title(language.English)
	return caser.String(strings.Join(words, " "))
}

// BrowseLink is the browse view for tag: marketplace tags link to the
// marketplace, anything else to the places directory.
func BrowseLink(tag string) string {
	if IsMarket(tag) {
		return "/marketplace?category=" + url.QueryEscape(MarketCategory(tag))
	}
	return "/places?category=" + url.QueryEscape(tag)
}

// FromLink recovers the tag a browse link points at, or "" when link is not
// a browse view. It is the inverse of BrowseLink.
func FromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	category := u.Query().Get("category")
	if category == "" {
		return ""
	}

	switch strings.TrimSuffix(u.Path, "/") {
	case "/marketplace":
		return MarketPrefix + category
	case "/places":
		return category
	default:
		return ""
	}
}
