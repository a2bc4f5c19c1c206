package branding

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"koomy/portal/internal/constants"
	"koomy/portal/internal/models/dtos"
)

// Display is the branding a surface renders with after precedence is applied
type Display struct {
	IsWhiteLabel   bool    `json:"isWhiteLabel"`
	AppName        string  `json:"appName"`
	Logo           string  `json:"logo"`
	BrandColor     string  `json:"brandColor"`
	ShowPoweredBy  bool    `json:"showPoweredBy"`
	CommunityID    *string `json:"communityId,omitempty"`
	WhiteLabelTier *string `json:"whiteLabelTier,omitempty"`
}

func firstNonEmpty(vals ...*string) (string, bool) {
	for _, v := range vals {
		if v != nil && *v != "" {
			return *v, true
		}
	}
	return "", false
}

// DeriveDisplay applies brandConfig -> community -> default precedence to cfg.
// A nil config yields the Koomy defaults.
func DeriveDisplay(cfg *dtos.WhiteLabelConfig) Display {
	d := Display{
		AppName:       constants.DefaultAppName,
		Logo:          constants.DefaultLogo,
		BrandColor:    constants.DefaultBrandColor,
		ShowPoweredBy: true,
	}
	if cfg == nil {
		return d
	}
	d.IsWhiteLabel = cfg.WhiteLabel
	d.CommunityID = cfg.CommunityID
	d.WhiteLabelTier = cfg.WhiteLabelTier

	bc := cfg.BrandConfig
	if bc == nil {
		bc = &dtos.BrandConfig{}
	}
	if v, ok := firstNonEmpty(bc.AppName, cfg.CommunityName); ok {
		d.AppName = v
	}
	if v, ok := firstNonEmpty(bc.LogoURL, cfg.CommunityLogo); ok {
		d.Logo = v
	}
	if v, ok := firstNonEmpty(bc.BrandColor); ok {
		d.BrandColor = v
	}
	if bc.ShowPoweredBy != nil && !*bc.ShowPoweredBy {
		d.ShowPoweredBy = false
	}
	return d
}

// RootStyle collects custom properties destined for the document root
type RootStyle struct {
	mu    sync.RWMutex
	props map[string]string
}

func NewRootStyle() *RootStyle {
	return &RootStyle{props: make(map[string]string)}
}

func (rs *RootStyle) SetProperty(name, value string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.props[name] = value
}

func (rs *RootStyle) GetProperty(name string) (string, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	v, ok := rs.props[name]
	return v, ok
}

func (rs *RootStyle) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.props)
}

// CSS renders the properties as a :root rule, sorted by name
func (rs *RootStyle) CSS() string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	names := make([]string, 0, len(rs.props))
	for n := range rs.props {
		names = append(names, n)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, n := range names {
		fmt.Fprintf(&b, "  %s: %s;\n", n, rs.props[n])
	}
	b.WriteString("}\n")
	return b.String()
}

// ThemeBinder writes the brand custom properties onto a RootStyle and only
// recomputes them when the brand color changes.
type ThemeBinder struct {
	mu    sync.Mutex
	style *RootStyle
	last  string
	// Writes counts how many times properties were written
	Writes int
}

func NewThemeBinder(style *RootStyle) *ThemeBinder {
	return &ThemeBinder{style: style}
}

// Apply writes --brand-h/s/l and --brand-color for a white-label display whose
// brand color parses. Non white-label displays and invalid colors write nothing.
func (tb *ThemeBinder) Apply(d Display) bool {
	if !d.IsWhiteLabel {
		return false
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if d.BrandColor == tb.last {
		return false
	}
	hsl, ok := HexToHSL(d.BrandColor)
	if !ok {
		return false
	}
	tb.style.SetProperty("--brand-h", fmt.Sprintf("%d", hsl.H))
	tb.style.SetProperty("--brand-s", fmt.Sprintf("%d%%", hsl.S))
	tb.style.SetProperty("--brand-l", fmt.Sprintf("%d%%", hsl.L))
	tb.style.SetProperty("--brand-color", d.BrandColor)
	tb.last = d.BrandColor
	tb.Writes++
	return true
}

func (tb *ThemeBinder) Style() *RootStyle {
	return tb.style
}
