package extractor

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestRenderedText(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"plain", `<span>Jane Doe</span>`, "Jane Doe"},
		{"collapses whitespace", "<span>\n  Jane \t  Doe \n</span>", "Jane Doe"},
		{"skips visually hidden", `<span><span aria-hidden="true">Jane</span><span class="visually-hidden">View Jane's profile</span></span>`, "Jane"},
		{"skips hidden attr", `<span>Jane<b hidden>secret</b></span>`, "Jane"},
		{"skips display none", `<span>Jane<i style="display: none">x</i></span>`, "Jane"},
		{"skips script", `<span>Jane<script>var x = 1;</script></span>`, "Jane"},
		{"blocks separate words", `<div><div>Senior</div><div>Engineer</div></div>`, "Senior Engineer"},
		{"empty", `<span>   </span>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + tt.html + "</body>"))
			require.NoError(t, err)
			got := renderedText(doc.Find("body").Children().First())
			if got != tt.want {
				t.Errorf("renderedText: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderedText_EmptySelection(t *testing.T) {
	if got := renderedText(nil); got != "" {
		t.Errorf("renderedText(nil): got %q, want empty", got)
	}
}
