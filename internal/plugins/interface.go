// Package plugins recognizes where an article URL points: a DOI, a PubMed
// record, a preprint server. Plugins work offline from the URL alone; the
// analysis service does the fetching.
package plugins

import (
	"fmt"
	"net/url"
	"strings"
)

// ArticleInfo describes an article reference found in a query.
type ArticleInfo struct {
	// URL is the reference as written by the user
	URL string
	// Source names the publisher or index, e.g. "PubMed"
	Source string
	// ID is the source's identifier for the article, if one could be read
	ID string
	// Metadata holds plugin-specific extras
	Metadata map[string]string
}

// Label returns a one-line description such as "PubMed 12345678".
func (a *ArticleInfo) Label() string {
	if a.ID == "" {
		return a.Source
	}
	return a.Source + " " + a.ID
}

// Plugin identifies articles from one family of sites
type Plugin interface {
	// Name returns the plugin name for identification
	Name() string

	// CanHandle returns true if this plugin recognizes the URL
	CanHandle(u *url.URL) bool

	// Describe extracts what it can from the URL
	Describe(u *url.URL) (*ArticleInfo, error)

	// Priority returns the priority of this plugin (higher = higher priority)
	// Useful when multiple plugins can handle the same URL
	Priority() int
}

// Registry manages all registered plugins
type Registry struct {
	plugins []Plugin
}

func NewRegistry() *Registry {
	return &Registry{plugins: make([]Plugin, 0)}
}

// DefaultRegistry returns a registry with the built-in plugins.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, p := range builtins() {
		r.Register(p)
	}
	return r
}

func (r *Registry) Register(plugin Plugin) {
	r.plugins = append(r.plugins, plugin)
}

// FindPlugin returns the highest priority plugin that can handle rawURL, or
// nil.
func (r *Registry) FindPlugin(rawURL string) Plugin {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return r.find(u)
}

func (r *Registry) find(u *url.URL) Plugin {
	var bestPlugin Plugin
	highestPriority := -1

	for _, plugin := range r.plugins {
		if plugin.CanHandle(u) && plugin.Priority() > highestPriority {
			bestPlugin = plugin
			highestPriority = plugin.Priority()
		}
	}

	return bestPlugin
}

// Describe identifies rawURL. Without a matching plugin the host is used as
// the source.
func (r *Registry) Describe(rawURL string) (*ArticleInfo, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing article URL: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("article URL has no host: %s", rawURL)
	}

	plugin := r.find(u)
	if plugin == nil {
		return &ArticleInfo{
			URL:      rawURL,
			Source:   strings.TrimPrefix(u.Hostname(), "www."),
			Metadata: make(map[string]string),
		}, nil
	}

	info, err := plugin.Describe(u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", plugin.Name(), err)
	}
	info.URL = rawURL
	if info.Metadata == nil {
		info.Metadata = make(map[string]string)
	}
	return info, nil
}

// ListPlugins returns all registered plugins
func (r *Registry) ListPlugins() []Plugin {
	return append([]Plugin(nil), r.plugins...)
}
