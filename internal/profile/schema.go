package profile

// Profile names the DOM hooks the page components bind to.
type Profile struct {
	Search    SearchHooks    `yaml:"search"`
	Comments  CommentHooks   `yaml:"comments"`
	Watchlist WatchlistHooks `yaml:"watchlist"`
}

type SearchHooks struct {
	FormID    string `yaml:"formId"`
	InputID   string `yaml:"inputId"`
	ResultsID string `yaml:"resultsId"`
}

type CommentHooks struct {
	SectionID   string `yaml:"sectionId"`
	FormID      string `yaml:"formId"`
	DisplayID   string `yaml:"displayId"`
	ListingAttr string `yaml:"listingAttr"`
}

type WatchlistHooks struct {
	IconClass     string `yaml:"iconClass"`
	MarkerClass   string `yaml:"markerClass"`
	ActiveClass   string `yaml:"activeClass"`
	InactiveClass string `yaml:"inactiveClass"`
	ListingAttr   string `yaml:"listingAttr"`
}

// Default is the contract of the stock listing templates.
func Default() Profile {
	return Profile{
		Search: SearchHooks{
			FormID:    "search-form",
			InputID:   "search-input",
			ResultsID: "results-container",
		},
		Comments: CommentHooks{
			SectionID:   "comment-section",
			FormID:      "comment-form",
			DisplayID:   "comment_display",
			ListingAttr: "data-auction-id",
		},
		Watchlist: WatchlistHooks{
			IconClass:     "watchlist-icon",
			MarkerClass:   "in-watchlist",
			ActiveClass:   "fa-heart",
			InactiveClass: "fa-heart-broken",
			ListingAttr:   "data-auction-id",
		},
	}
}
