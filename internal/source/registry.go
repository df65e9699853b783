package source

import (
	"log/slog"
	"net/http"

	"github.com/okempf/jobscout/internal/config"
	"github.com/okempf/jobscout/internal/model"
)

// Source identifiers. External IDs are namespaced with these names.
const (
	NameArbeitsagentur = "arbeitsagentur"
	NameRemoteOK       = "remoteok"
	NameTheLocal       = "thelocal"
	NameAdzuna         = "adzuna"
	NameLinkedIn       = "linkedin"
	NameIndeed         = "indeed"
)

// Info describes one source for the settings endpoint and the CLI.
type Info struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	RequiresKey bool   `json:"requires_api_key"`
	Enabled     bool   `json:"enabled"`
	HasKey      bool   `json:"has_api_key,omitempty"`
	Usable      bool   `json:"usable"`
}

// Usable returns the identifiers of sources that can serve requests right
// now: enabled, and in possession of a real (non-placeholder) credential
// when one is required. Pure function of the configuration; never errors.
func Usable(cfg config.SourcesConfig) []string {
	var usable []string
	for _, info := range Describe(cfg) {
		if info.Usable {
			usable = append(usable, info.Name)
		}
	}
	return usable
}

// Describe returns the full source inventory in a stable order.
func Describe(cfg config.SourcesConfig) []Info {
	adzunaHasKey := cfg.Adzuna.AppID != "" && !config.PlaceholderKey(cfg.Adzuna.AppKey)
	linkedinHasKey := !config.PlaceholderKey(cfg.LinkedIn.APIKey)
	indeedHasKey := !config.PlaceholderKey(cfg.Indeed.APIKey)

	return []Info{
		{
			Name:        NameArbeitsagentur,
			DisplayName: "Arbeitsagentur",
			Description: "German Federal Employment Agency",
			Enabled:     cfg.Arbeitsagentur.Enabled,
			Usable:      cfg.Arbeitsagentur.Enabled,
		},
		{
			Name:        NameRemoteOK,
			DisplayName: "RemoteOK",
			Description: "Remote job listings",
			Enabled:     cfg.RemoteOK.Enabled,
			Usable:      cfg.RemoteOK.Enabled,
		},
		{
			Name:        NameTheLocal,
			DisplayName: "TheLocal.de",
			Description: "Jobs in Germany for expats",
			Enabled:     cfg.TheLocal.Enabled,
			Usable:      cfg.TheLocal.Enabled,
		},
		{
			Name:        NameAdzuna,
			DisplayName: "Adzuna",
			Description: "Job search engine aggregator",
			RequiresKey: true,
			Enabled:     cfg.Adzuna.Enabled,
			HasKey:      adzunaHasKey,
			Usable:      cfg.Adzuna.Enabled && adzunaHasKey,
		},
		{
			Name:        NameLinkedIn,
			DisplayName: "LinkedIn",
			Description: "Professional network jobs",
			RequiresKey: true,
			Enabled:     cfg.LinkedIn.Enabled,
			HasKey:      linkedinHasKey,
			Usable:      cfg.LinkedIn.Enabled && linkedinHasKey,
		},
		{
			Name:        NameIndeed,
			DisplayName: "Indeed",
			Description: "General job search engine",
			RequiresKey: true,
			Enabled:     cfg.Indeed.Enabled,
			HasKey:      indeedHasKey,
			Usable:      cfg.Indeed.Enabled && indeedHasKey,
		},
	}
}

// BuildAdapters instantiates an adapter for every usable source that has an
// implementation. Usable sources without one (LinkedIn, Indeed) are logged
// and skipped.
func BuildAdapters(cfg *config.Config, client *http.Client, logger *slog.Logger) []model.SourceAdapter {
	var adapters []model.SourceAdapter
	for _, name := range Usable(cfg.Sources) {
		switch name {
		case NameArbeitsagentur:
			adapters = append(adapters, NewArbeitsagenturAdapter(client, cfg.Search.PageSize))
		case NameRemoteOK:
			adapters = append(adapters, NewRemoteOKAdapter(client, cfg.Search.PageSize))
		case NameTheLocal:
			adapters = append(adapters, NewTheLocalAdapter(client, cfg.Search.PageSize))
		case NameAdzuna:
			adapters = append(adapters, NewAdzunaAdapter(cfg.Sources.Adzuna.AppID, cfg.Sources.Adzuna.AppKey, client, cfg.Search.PageSize))
		default:
			logger.Warn("source has no adapter implementation, skipping", "source", name)
		}
	}
	return adapters
}
