package branding

import (
	"net"
	"net/http"
	"strings"
)

// Location is the host and path a request was made for
type Location struct {
	Hostname string
	Path     string
}

// LocationFromRequest extracts the location of r. A nil request yields an
// empty location which matches no rule.
func LocationFromRequest(r *http.Request) Location {
	if r == nil {
		return Location{}
	}
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	path := ""
	if r.URL != nil {
		path = r.URL.Path
	}
	return Location{Hostname: strings.ToLower(host), Path: path}
}

// RuleSet matches a location by exact hostname or by path prefix
type RuleSet struct {
	Hosts    []string `yaml:"hosts"`
	Prefixes []string `yaml:"prefixes"`
}

// Match reports whether loc satisfies any host or prefix of the rule set
func (rs RuleSet) Match(loc Location) bool {
	if loc.Hostname == "" && loc.Path == "" {
		return false
	}
	for _, h := range rs.Hosts {
		if loc.Hostname == h {
			return true
		}
	}
	for _, p := range rs.Prefixes {
		if strings.HasPrefix(loc.Path, p) {
			return true
		}
	}
	return false
}

// AssetPaths lists the default and pro variants of each head asset
type AssetPaths struct {
	Favicon           string `yaml:"favicon"`
	ProFavicon        string `yaml:"pro_favicon"`
	AppleTouchIcon    string `yaml:"apple_touch_icon"`
	ProAppleTouchIcon string `yaml:"pro_apple_touch_icon"`
	Manifest          string `yaml:"manifest"`
	ProManifest       string `yaml:"pro_manifest"`
}

// Resolver picks head assets for a location. Favicon and manifest use
// independent rule sets.
type Resolver struct {
	FaviconRules  RuleSet
	ManifestRules RuleSet
	Paths         AssetPaths
}

// Assets is the outcome of resolving a location
type Assets struct {
	Favicon        string `json:"favicon"`
	AppleTouchIcon string `json:"appleTouchIcon"`
	Manifest       string `json:"manifest"`
	ProFavicon     bool   `json:"proFavicon"`
	ProManifest    bool   `json:"proManifest"`
}

var proHosts = []string{"app-pro.koomy.app", "pro.koomy.app"}

// DefaultResolver returns the resolver with the production host and prefix lists
func DefaultResolver() *Resolver {
	return &Resolver{
		FaviconRules: RuleSet{
			Hosts:    append([]string(nil), proHosts...),
			Prefixes: []string{"/admin", "/platform", "/super-admin"},
		},
		ManifestRules: RuleSet{
			Hosts:    append([]string(nil), proHosts...),
			Prefixes: []string{"/admin"},
		},
		Paths: AssetPaths{
			Favicon:           "/favicon.ico",
			ProFavicon:        "/favicon-pro.ico",
			AppleTouchIcon:    "/apple-touch-icon.png",
			ProAppleTouchIcon: "/apple-touch-icon-pro.png",
			Manifest:          "/manifest.json",
			ProManifest:       "/manifest-pro.json",
		},
	}
}

// ResolveAssets evaluates both rule sets against loc
func (rv *Resolver) ResolveAssets(loc Location) Assets {
	a := Assets{
		Favicon:        rv.Paths.Favicon,
		AppleTouchIcon: rv.Paths.AppleTouchIcon,
		Manifest:       rv.Paths.Manifest,
	}
	if rv.FaviconRules.Match(loc) {
		a.ProFavicon = true
		a.Favicon = rv.Paths.ProFavicon
		a.AppleTouchIcon = rv.Paths.ProAppleTouchIcon
	}
	if rv.ManifestRules.Match(loc) {
		a.ProManifest = true
		a.Manifest = rv.Paths.ProManifest
	}
	return a
}

// Link is a <link> element of the document head
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// LinkSet is the ordered set of head links a page declared
type LinkSet []Link

// ApplyAssets rewrites the href of existing icon, apple-touch-icon and
// manifest links. Links that are absent stay absent.
func ApplyAssets(head LinkSet, a Assets) {
	for i := range head {
		switch head[i].Rel {
		case "icon", "shortcut icon":
			head[i].Href = a.Favicon
		case "apple-touch-icon":
			head[i].Href = a.AppleTouchIcon
		case "manifest":
			head[i].Href = a.Manifest
		}
	}
}

// DefaultHead is the link set every portal page ships with
func DefaultHead() LinkSet {
	return LinkSet{
		{Rel: "icon"},
		{Rel: "apple-touch-icon"},
		{Rel: "manifest"},
	}
}

// Surface is the role-segmented web surface a request targets
type Surface string

const (
	SurfacePublic   Surface = "public"
	SurfaceMember   Surface = "member"
	SurfaceAdmin    Surface = "admin"
	SurfacePlatform Surface = "platform"
)

// ClassifySurface maps a location to the surface serving it
func ClassifySurface(loc Location) Surface {
	switch {
	case strings.HasPrefix(loc.Path, "/platform"), strings.HasPrefix(loc.Path, "/super-admin"):
		return SurfacePlatform
	case strings.HasPrefix(loc.Path, "/admin"):
		return SurfaceAdmin
	case strings.HasPrefix(loc.Path, "/app"), strings.HasPrefix(loc.Path, "/community"), strings.HasPrefix(loc.Path, "/session"):
		return SurfaceMember
	}
	for _, h := range proHosts {
		if loc.Hostname == h {
			return SurfaceAdmin
		}
	}
	return SurfacePublic
}

// Tenant is everything resolved from a request location
type Tenant struct {
	Location Location `json:"location"`
	Assets   Assets   `json:"assets"`
	Surface  Surface  `json:"surface"`
}

// Resolve builds the tenant for loc
func (rv *Resolver) Resolve(loc Location) Tenant {
	return Tenant{
		Location: loc,
		Assets:   rv.ResolveAssets(loc),
		Surface:  ClassifySurface(loc),
	}
}
