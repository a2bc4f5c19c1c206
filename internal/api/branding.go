package api

import (
	"net/http"
	"time"

	"koomy/portal/internal/branding"
	"koomy/portal/internal/common"
	"koomy/portal/internal/services"
)

type ThemeResponse struct {
	Display branding.Display `json:"display"`
	CSS     string           `json:"css"`
	// ConfigLoaded is false when the white-label config could not be fetched
	ConfigLoaded bool `json:"configLoaded"`
}

type HeadResponse struct {
	Surface branding.Surface `json:"surface"`
	Assets  branding.Assets  `json:"assets"`
	Links   branding.LinkSet `json:"links"`
}

// ThemeHandler handles GET /branding/theme
//
// @Summary      White-label theme
// @Description  Derived branding for the request host. Falls back to the Koomy defaults when the config is unavailable.
// @Tags         Branding
// @Produce      json
// @Success      200  {object}  dtos.APIResponse
// @Router       /branding/theme [get]
func ThemeHandler(wl *services.WhiteLabelService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		display, style, err := wl.Theme(upstreamContext(r), hostOf(r))
		common.RespondSuccess(w, initTime, "Theme resolved", ThemeResponse{
			Display:      display,
			CSS:          style.CSS(),
			ConfigLoaded: err == nil,
		})
	}
}

// ThemeCSSHandler handles GET /branding/theme.css
//
// @Summary      Theme stylesheet
// @Description  :root rule carrying the brand custom properties, empty for non white-label hosts
// @Tags         Branding
// @Produce      text/css
// @Success      200  {string}  string
// @Router       /branding/theme.css [get]
func ThemeCSSHandler(wl *services.WhiteLabelService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, style, _ := wl.Theme(upstreamContext(r), hostOf(r))

		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write([]byte(style.CSS()))
	}
}

// HeadHandler handles GET /branding/head
//
// @Summary      Head assets
// @Description  Favicon, apple-touch-icon and manifest for the host and the path given in ?path=
// @Tags         Branding
// @Produce      json
// @Param        path  query  string  false  "Page path, defaults to /"
// @Success      200  {object}  dtos.APIResponse
// @Router       /branding/head [get]
func HeadHandler(resolver *branding.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		loc := branding.Location{Hostname: hostOf(r), Path: r.URL.Query().Get("path")}
		if loc.Path == "" {
			loc.Path = "/"
		}
		tenant := resolver.Resolve(loc)

		head := branding.DefaultHead()
		branding.ApplyAssets(head, tenant.Assets)

		common.RespondSuccess(w, initTime, "Head assets resolved", HeadResponse{
			Surface: tenant.Surface,
			Assets:  tenant.Assets,
			Links:   head,
		})
	}
}
