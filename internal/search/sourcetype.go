package search

import "strings"

// Source type labels assigned to result URLs.
const (
	TypeOfficialDocs   = "Official Documentation"
	TypeSupport        = "Support Resources"
	TypeTechnicalBlogs = "Technical Blogs"
	TypeVendorSite     = "Vendor Website"
	TypeCommunity      = "Developer Community Resources"
	TypeAcademic       = "Academic/Research Resources"
	TypeTechNews       = "Technology News/Analysis"
	TypeIndustry       = "Banking/Financial Industry Resources"
	TypeGeneral        = "Industry/Technical Articles"
)

// ClassifySource assigns a source type label to a result URL.
func ClassifySource(url string) string {
	lower := strings.ToLower(url)

	switch {
	case strings.Contains(lower, "oracle.com"):
		switch {
		case strings.Contains(lower, "docs.oracle.com"):
			return TypeOfficialDocs
		case strings.Contains(lower, "support.oracle.com"):
			return TypeSupport
		case strings.Contains(lower, "blogs.oracle.com"):
			return TypeTechnicalBlogs
		default:
			return TypeVendorSite
		}
	case strings.Contains(lower, "github.com"),
		strings.Contains(lower, "stackoverflow.com"):
		return TypeCommunity
	case strings.Contains(lower, ".edu"),
		strings.Contains(lower, "researchgate"),
		strings.Contains(lower, "ieee.org"):
		return TypeAcademic
	case strings.Contains(lower, "techcrunch"),
		strings.Contains(lower, "zdnet"),
		strings.Contains(lower, "infoworld"),
		strings.Contains(lower, "computerworld"):
		return TypeTechNews
	case strings.Contains(lower, "banking"),
		strings.Contains(lower, "fintech"),
		strings.Contains(lower, "finextra"):
		return TypeIndustry
	default:
		return TypeGeneral
	}
}

// IsAuthority reports whether a URL points at a vendor-controlled domain.
func IsAuthority(url string) bool {
	return strings.Contains(strings.ToLower(url), "oracle.com")
}
