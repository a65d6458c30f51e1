package plugins

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

func builtins() []Plugin {
	return []Plugin{
		&hostPlugin{
			name:     "pubmed",
			source:   "PubMed",
			hosts:    []string{"pubmed.ncbi.nlm.nih.gov"},
			idRe:     regexp.MustCompile(`^/(\d+)`),
			priority: 100,
		},
		&hostPlugin{
			name:     "pmc",
			source:   "PMC",
			hosts:    []string{"www.ncbi.nlm.nih.gov", "pmc.ncbi.nlm.nih.gov"},
			idRe:     regexp.MustCompile(`(?i)/(PMC\d+)`),
			priority: 100,
		},
		&hostPlugin{
			name:     "arxiv",
			source:   "arXiv",
			hosts:    []string{"arxiv.org"},
			idRe:     regexp.MustCompile(`^/(?:abs|pdf)/([0-9]{4}\.[0-9]{4,5}(?:v\d+)?)`),
			priority: 100,
		},
		&hostPlugin{
			name:     "biorxiv",
			source:   "bioRxiv",
			hosts:    []string{"www.biorxiv.org", "biorxiv.org"},
			idRe:     doiPattern,
			priority: 90,
		},
		&hostPlugin{
			name:     "medrxiv",
			source:   "medRxiv",
			hosts:    []string{"www.medrxiv.org", "medrxiv.org"},
			idRe:     doiPattern,
			priority: 90,
		},
		&doiPlugin{},
	}
}

var doiPattern = regexp.MustCompile(`(10\.\d{4,9}/[^\s?#]+)`)

// hostPlugin matches a fixed set of hosts and reads the article id from the
// path.
type hostPlugin struct {
	name     string
	source   string
	hosts    []string
	idRe     *regexp.Regexp
	priority int
}

func (p *hostPlugin) Name() string  { return p.name }
func (p *hostPlugin) Priority() int { return p.priority }

func (p *hostPlugin) CanHandle(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	for _, h := range p.hosts {
		if host == h {
			return true
		}
	}
	return false
}

func (p *hostPlugin) Describe(u *url.URL) (*ArticleInfo, error) {
	info := &ArticleInfo{Source: p.source, Metadata: map[string]string{"host": u.Hostname()}}
	if m := p.idRe.FindStringSubmatch(u.Path); len(m) > 1 {
		info.ID = m[1]
	}
	return info, nil
}

// doiPlugin handles doi.org links and publisher pages that carry the DOI in
// the path, such as journals.asm.org/doi/10.1128/....
type doiPlugin struct{}

func (p *doiPlugin) Name() string  { return "doi" }
func (p *doiPlugin) Priority() int { return 50 }

func (p *doiPlugin) CanHandle(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	if host == "doi.org" || host == "dx.doi.org" {
		return true
	}
	return strings.Contains(u.Path, "/doi/")
}

func (p *doiPlugin) Describe(u *url.URL) (*ArticleInfo, error) {
	m := doiPattern.FindStringSubmatch(u.Path)
	if len(m) < 2 {
		return nil, fmt.Errorf("no DOI in %s", u.Path)
	}
	doi := strings.TrimRight(m[1], "/")

	source := "DOI"
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host != "doi.org" && host != "dx.doi.org" {
		source = host
	}

	return &ArticleInfo{
		Source:   source,
		ID:       doi,
		Metadata: map[string]string{"doi": doi, "resolver": "https://doi.org/" + doi},
	}, nil
}
