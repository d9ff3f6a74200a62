// AngelaMos | 2026
// renderer_test.go

package eid

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/membership-api/internal/config"
)

func testRenderer() *Renderer {
	return NewRenderer(config.CardConfig{
		Organization:    "National Association",
		TemplateVersion: "v1",
		VerifyBaseURL:   "https://members.example.org/verify/",
	})
}

func TestShortID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc123ef-0000-4000-8000-000000000000", "ABC123EF"},
		{"ab-cd-ef-12-34", "ABCDEF12"},
		{"abc", "ABC"},
		{"", ""},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, ShortID(tt.in), tt.in)
	}
}

func TestVerifyURLTrimsTrailingSlash(t *testing.T) {
	require.Equal(t,
		"https://members.example.org/verify/ABC123EF",
		testRenderer().VerifyURL("ABC123EF"),
	)
}

func TestRenderShowsHolderDetails(t *testing.T) {
	svg := testRenderer().Render(CardData{
		UserID:          "abc123ef-0000-4000-8000-000000000000",
		FullName:        "Aisha Bello",
		StateCode:       "LA",
		DeploymentState: "Lagos",
		Role:            "STATE_SECRETARY",
	})

	require.True(t, strings.HasPrefix(svg, "<svg "))
	for _, want := range []string{
		"Aisha Bello",
		">LA<",
		"Lagos",
		"STATE SECRETARY",
		"ABC123EF",
		"Template v1",
		"National Association",
	} {
		require.Contains(t, svg, want)
	}
	require.NotContains(t, svg, "STATE_SECRETARY")
}

func TestRenderIsDeterministic(t *testing.T) {
	r := testRenderer()
	d := CardData{
		UserID:    "abc123ef-0000-4000-8000-000000000000",
		FullName:  "Aisha Bello",
		StateCode: "LA",
		Role:      "MEMBER",
	}

	require.Equal(t, r.Render(d), r.Render(d))
}

func TestRenderUsesPlaceholders(t *testing.T) {
	svg := testRenderer().Render(CardData{UserID: "abc123ef"})

	require.Contains(t, svg, placeholderName)
	require.Contains(t, svg, placeholderCode)
	require.Contains(t, svg, placeholderState)
	require.Contains(t, svg, ">"+placeholderRole+"<")
}

func TestRenderEscapesMarkup(t *testing.T) {
	svg := testRenderer().Render(CardData{
		UserID:   "abc123ef",
		FullName: `<script>alert("x")</script> & co`,
	})

	require.NotContains(t, svg, "<script>")
	require.Contains(t, svg, "&lt;script&gt;")
	require.Contains(t, svg, "&amp; co")

	var doc struct{}
	require.NoError(t, xml.Unmarshal([]byte(svg), &doc))
}

func TestRenderEmbedsQRCode(t *testing.T) {
	r := testRenderer()

	withID := r.Render(CardData{UserID: "abc123ef"})
	require.Contains(t, withID, `shape-rendering="crispEdges"`)
	require.Contains(t, withID, `height="1"/>`)

	withoutID := r.Render(CardData{})
	require.NotContains(t, withoutID, "crispEdges")
}

func TestEncodeQRGeometry(t *testing.T) {
	view := encodeQR("https://members.example.org/verify/ABC123EF")
	require.NotNil(t, view)
	require.Greater(t, view.Size, 21)
	require.Contains(t, view.Modules, `<rect x="2" y="2"`)
}
