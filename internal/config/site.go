package config

import "github.com/docmap-dev/docmap/internal/knowledge"

// Extraction vocabulary defaults. The lists live in the knowledge package;
// these names exist so config users and .docmap.yml docs have one place to
// point at. Sites with a different catalog override them in .docmap.yml.
var (
	// DefaultServices are the compute service names the knowledge extractor
	// looks for in definition sentences.
	DefaultServices = knowledge.DefaultServices

	// DefaultResources are the storage resource names the knowledge
	// extractor looks for in definition sentences.
	DefaultResources = knowledge.DefaultResources

	// DefaultSkipExtensions are file extensions excluded from crawling.
	// These are binary or non-HTML assets that carry no document text.
	DefaultSkipExtensions = []string{".pdf", ".doc", ".docx", ".jpg", ".png", ".gif"}
)

// SiteConfig holds site-specific configuration for a single documentation
// host. This allows customizing crawl and extraction behavior per site.
type SiteConfig struct {
	// ContentSelector is the CSS selector for the main content region.
	// When empty, DefaultContentSelector is used.
	ContentSelector string `yaml:"contentSelector,omitempty"`

	// BasePath is the path prefix categories are computed against.
	// When empty, the start URL's path is used.
	BasePath string `yaml:"basePath,omitempty"`

	// SkipExtensions are file extensions excluded from crawling for this
	// site. When empty, DefaultSkipExtensions is used.
	SkipExtensions []string `yaml:"skipExtensions,omitempty"`

	// IgnorePatterns are URL patterns to skip during crawling.
	// Patterns are matched against the URL path using glob syntax.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// Services are the service names the knowledge extractor looks for.
	// When empty, DefaultServices is used.
	Services []string `yaml:"services,omitempty"`

	// Resources are the storage resource names the knowledge extractor
	// looks for. When empty, DefaultResources is used.
	Resources []string `yaml:"resources,omitempty"`
}

// File represents the structure of the .docmap.yml configuration file.
type File struct {
	// Sites maps documentation hosts to their site-specific configurations.
	// Keys are bare hosts (e.g., "docs.example.org").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific documentation host.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with site-specific configuration if present
	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.ContentSelector != "" {
			result.ContentSelector = siteConfig.ContentSelector
		}
		if siteConfig.BasePath != "" {
			result.BasePath = siteConfig.BasePath
		}
		if len(siteConfig.SkipExtensions) > 0 {
			result.SkipExtensions = siteConfig.SkipExtensions
		}
		if len(siteConfig.IgnorePatterns) > 0 {
			result.IgnorePatterns = siteConfig.IgnorePatterns
		}
		if len(siteConfig.Services) > 0 {
			result.Services = siteConfig.Services
		}
		if len(siteConfig.Resources) > 0 {
			result.Resources = siteConfig.Resources
		}
	}

	return result
}

// EffectiveContentSelector returns the configured content selector or the
// default when none is set.
func (sc SiteConfig) EffectiveContentSelector() string {
	if sc.ContentSelector != "" {
		return sc.ContentSelector
	}
	return DefaultContentSelector
}

// EffectiveSkipExtensions returns the configured skip extensions or the
// default set when none are set.
func (sc SiteConfig) EffectiveSkipExtensions() []string {
	if len(sc.SkipExtensions) > 0 {
		return sc.SkipExtensions
	}
	return DefaultSkipExtensions
}

// EffectiveServices returns the configured service vocabulary or the default
// when none is set.
func (sc SiteConfig) EffectiveServices() []string {
	if len(sc.Services) > 0 {
		return sc.Services
	}
	return DefaultServices
}

// EffectiveResources returns the configured resource vocabulary or the
// default when none is set.
func (sc SiteConfig) EffectiveResources() []string {
	if len(sc.Resources) > 0 {
		return sc.Resources
	}
	return DefaultResources
}
