package domain

import (
	"strconv"
	"strings"

	productdomain "github.com/parityhq/paritybanner/internal/product/domain"
)

// Input is everything Compose needs. DiscountPercentage is the stored
// fraction in [0,1]; the rendered value is percentage points.
type Input struct {
	Customization      productdomain.CustomizationResponse
	CountryName        string
	Coupon             string
	DiscountPercentage float64
	CanRemoveBranding  bool
	BrandingURL        string
}

// Compose renders the embeddable banner script. It is a pure function of its
// input: identical inputs yield byte-identical output, which the pipeline
// relies on for cacheability.
func Compose(in Input) string {
	c := in.Customization
	prefix := ""
	if c.ClassPrefix != nil {
		prefix = *c.ClassPrefix
	}

	message := substitute(escapeQuotes(c.LocationMessage), map[string]string{
		"country":  escapeQuotes(in.CountryName),
		"coupon":   escapeQuotes(in.Coupon),
		"discount": formatPercentage(in.DiscountPercentage),
	})

	var html strings.Builder
	html.WriteString(`<style type="text/css">`)
	html.WriteString("." + prefix + "parity-banner-container{all:revert;display:flex;flex-direction:column;gap:.5em;")
	html.WriteString("background-color:" + c.BackgroundColor + ";")
	html.WriteString("color:" + c.TextColor + ";")
	html.WriteString("font-size:" + c.FontSize + ";")
	html.WriteString("font-family:inherit;padding:1rem;")
	if c.IsSticky {
		html.WriteString("position:sticky;")
	}
	html.WriteString("left:0;right:0;top:0;text-wrap:balance;text-align:center;}")
	html.WriteString("." + prefix + "parity-banner-branding{color:inherit;font-size:inherit;display:inline-block;text-decoration:underline;}")
	html.WriteString(`</style>`)

	html.WriteString(`<div class="` + prefix + `parity-banner-container ` + prefix + `parity-banner-override">`)
	html.WriteString(`<span class="` + prefix + `parity-banner-message ` + prefix + `parity-banner-message-override">`)
	html.WriteString(message)
	html.WriteString(`</span>`)
	if !in.CanRemoveBranding {
		html.WriteString(`<a class="` + prefix + `parity-banner-branding" href="` + escapeQuotes(in.BrandingURL) + `">Powered by Parity Banner</a>`)
	}
	html.WriteString(`</div>`)

	var script strings.Builder
	script.WriteString(`const banner = document.createElement("div");`)
	script.WriteString(`banner.innerHTML = '` + html.String() + `';`)
	script.WriteString(`document.querySelector('` + escapeQuotes(c.BannerContainer) + `').prepend(...banner.children);`)
	return stripNewlines(script.String())
}

// substitute replaces known {token} placeholders; unknown placeholders are
// left untouched.
func substitute(template string, mappings map[string]string) string {
	replaced := template
	for token, value := range mappings {
		replaced = strings.ReplaceAll(replaced, "{"+token+"}", value)
	}
	return replaced
}

// formatPercentage renders a stored fraction as percentage points without
// trailing zeros: 0.2 → "20", 0.375 → "37.5".
func formatPercentage(fraction float64) string {
	return strconv.FormatFloat(fraction*100, 'f', -1, 64)
}

// escapeQuotes keeps user content from terminating the single-quoted
// innerHTML string in the generated script.
func escapeQuotes(value string) string {
	return strings.ReplaceAll(value, "'", "&#39;")
}

func stripNewlines(value string) string {
	replacer := strings.NewReplacer("\r\n", "", "\n", "", "\r", "")
	return replacer.Replace(value)
}
