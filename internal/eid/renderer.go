// AngelaMos | 2026
// renderer.go

package eid

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"text/template"

	"github.com/boombuler/barcode/qr"

	"github.com/carterperez-dev/templates/membership-api/internal/config"
	"github.com/carterperez-dev/templates/membership-api/internal/role"
)

const (
	placeholderName  = "Member Name"
	placeholderCode  = "STATE/CODE"
	placeholderState = "Your State"
	placeholderRole  = "MEMBER"

	shortIDLength = 8
	qrQuietZone   = 2
)

// CardData is everything a card shows about its holder.
type CardData struct {
	UserID          string
	FullName        string
	StateCode       string
	DeploymentState string
	Role            string
}

// Renderer turns CardData into a self-contained SVG document. It holds no
// mutable state and is safe for concurrent use.
type Renderer struct {
	organization  string
	version       string
	verifyBaseURL string
}

func NewRenderer(cfg config.CardConfig) *Renderer {
	return &Renderer{
		organization:  cfg.Organization,
		version:       cfg.TemplateVersion,
		verifyBaseURL: strings.TrimRight(cfg.VerifyBaseURL, "/"),
	}
}

func (r *Renderer) Version() string {
	return r.version
}

// ShortID is the visible card number: the id without dashes, cut to eight
// characters and upper-cased.
func ShortID(id string) string {
	compact := strings.ReplaceAll(id, "-", "")
	if len(compact) > shortIDLength {
		compact = compact[:shortIDLength]
	}
	return strings.ToUpper(compact)
}

// VerifyURL is the payload encoded in the card's QR code.
func (r *Renderer) VerifyURL(shortID string) string {
	return r.verifyBaseURL + "/" + shortID
}

type cardView struct {
	Organization    string
	FullName        string
	StateCode       string
	DeploymentState string
	Role            string
	CardNumber      string
	Version         string
	QR              *qrView
}

type qrView struct {
	Size    int
	Modules string
}

// Render is a pure function of d: identical input yields byte-identical
// output. Empty fields fall back to placeholders and a QR failure drops the
// QR block instead of failing the card.
func (r *Renderer) Render(d CardData) string {
	shortID := ShortID(d.UserID)

	view := cardView{
		Organization:    r.organization,
		FullName:        fallback(d.FullName, placeholderName),
		StateCode:       fallback(d.StateCode, placeholderCode),
		DeploymentState: fallback(d.DeploymentState, placeholderState),
		Role:            fallback(role.Role(d.Role).DisplayName(), placeholderRole),
		CardNumber:      shortID,
		Version:         r.version,
	}

	if shortID != "" {
		view.QR = encodeQR(r.VerifyURL(shortID))
	}

	var buf bytes.Buffer
	//nolint:errcheck // bytes.Buffer writes and the template funcs cannot fail
	_ = cardTemplate.Execute(&buf, view)
	return buf.String()
}

// encodeQR draws the payload as one <rect> per horizontal run of dark
// modules, in module units.
func encodeQR(payload string) *qrView {
	code, err := qr.Encode(payload, qr.M, qr.Auto)
	if err != nil {
		return nil
	}

	bounds := code.Bounds()
	var b strings.Builder
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		run := -1
		for x := bounds.Min.X; x <= bounds.Max.X; x++ {
			dark := x < bounds.Max.X && isDark(code.At(x, y).RGBA())
			switch {
			case dark && run < 0:
				run = x
			case !dark && run >= 0:
				fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="1"/>`,
					run-bounds.Min.X+qrQuietZone,
					y-bounds.Min.Y+qrQuietZone,
					x-run,
				)
				run = -1
			}
		}
	}

	return &qrView{
		Size:    bounds.Dx() + 2*qrQuietZone,
		Modules: b.String(),
	}
}

func isDark(r, g, b, _ uint32) bool {
	return r+g+b < 3*0x8000
}

func fallback(v, placeholder string) string {
	if strings.TrimSpace(v) == "" {
		return placeholder
	}
	return v
}

func escapeXML(s string) string {
	var b strings.Builder
	//nolint:errcheck // strings.Builder writes cannot fail
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

var cardTemplate = template.Must(template.New("card").
	Funcs(template.FuncMap{"x": escapeXML}).
	Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="856" height="540" viewBox="0 0 856 540" role="img" aria-label="{{x .Organization}} identity card">
<defs><linearGradient id="band" x1="0" y1="0" x2="1" y2="0"><stop offset="0" stop-color="#0b6e4f"/><stop offset="1" stop-color="#08a045"/></linearGradient></defs>
<rect x="2" y="2" width="852" height="536" rx="28" fill="#ffffff" stroke="#0b6e4f" stroke-width="4"/>
<path d="M2 30 a28 28 0 0 1 28 -28 h796 a28 28 0 0 1 28 28 v98 h-852 z" fill="url(#band)"/>
<g font-family="Helvetica, Arial, sans-serif">
<text x="40" y="64" font-size="28" font-weight="700" fill="#ffffff">{{x .Organization}}</text>
<text x="40" y="102" font-size="16" letter-spacing="3" fill="#e8f5e9">MEMBER IDENTITY CARD</text>
<text x="40" y="178" font-size="14" letter-spacing="2" fill="#5f6b66">NAME</text>
<text x="40" y="212" font-size="30" font-weight="700" fill="#10231b">{{x .FullName}}</text>
<text x="40" y="262" font-size="14" letter-spacing="2" fill="#5f6b66">STATE CODE</text>
<text x="40" y="290" font-size="22" fill="#10231b">{{x .StateCode}}</text>
<text x="40" y="340" font-size="14" letter-spacing="2" fill="#5f6b66">DEPLOYMENT STATE</text>
<text x="40" y="368" font-size="22" fill="#10231b">{{x .DeploymentState}}</text>
<text x="40" y="418" font-size="14" letter-spacing="2" fill="#5f6b66">ROLE</text>
<text x="40" y="446" font-size="22" font-weight="700" fill="#0b6e4f">{{x .Role}}</text>
<text x="596" y="446" font-size="14" letter-spacing="2" fill="#5f6b66">CARD NO</text>
<text x="596" y="474" font-size="24" font-weight="700" fill="#10231b">{{x .CardNumber}}</text>
<text x="40" y="512" font-size="12" fill="#5f6b66">Template {{x .Version}}</text>
</g>
{{- if .QR}}
<svg x="596" y="172" width="220" height="220" viewBox="0 0 {{.QR.Size}} {{.QR.Size}}" shape-rendering="crispEdges"><rect width="{{.QR.Size}}" height="{{.QR.Size}}" fill="#ffffff"/><g fill="#000000">{{.QR.Modules}}</g></svg>
{{- end}}
</svg>
`))
