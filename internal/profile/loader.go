package profile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader reads a page profile from a YAML file.
type Loader struct {
	filePath string
}

func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load parses the file over Default, so a profile only lists the hooks
// that differ from the stock templates. An empty path yields Default.
func (l *Loader) Load() (Profile, error) {
	p := Default()
	if l.filePath == "" {
		return p, nil
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile file: %w", err)
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("failed to parse profile yaml: %w", err)
	}

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate rejects hooks that were blanked out.
func (p Profile) Validate() error {
	required := map[string]string{
		"search.formId":           p.Search.FormID,
		"search.inputId":          p.Search.InputID,
		"search.resultsId":        p.Search.ResultsID,
		"comments.sectionId":      p.Comments.SectionID,
		"comments.formId":         p.Comments.FormID,
		"comments.displayId":      p.Comments.DisplayID,
		"comments.listingAttr":    p.Comments.ListingAttr,
		"watchlist.iconClass":     p.Watchlist.IconClass,
		"watchlist.markerClass":   p.Watchlist.MarkerClass,
		"watchlist.activeClass":   p.Watchlist.ActiveClass,
		"watchlist.inactiveClass": p.Watchlist.InactiveClass,
		"watchlist.listingAttr":   p.Watchlist.ListingAttr,
	}
	var errs []error
	for key, v := range required {
		if strings.TrimSpace(v) == "" {
			errs = append(errs, fmt.Errorf("profile: %s must not be empty", key))
		}
	}
	if p.Watchlist.ActiveClass == p.Watchlist.InactiveClass {
		errs = append(errs, errors.New("profile: watchlist active and inactive classes must differ"))
	}
	return errors.Join(errs...)
}
