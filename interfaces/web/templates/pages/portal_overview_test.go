package pages

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spportal/interfaces/web/presenters"
)

func TestPortalOverviewPage_Render(t *testing.T) {
	vm := presenters.PortalOverviewVM{
		Endpoint: "https://contoso.sharepoint.com/sites/r&d",
		User:     &presenters.UserSummary{DisplayName: "Jane <Doe>", LoginName: "jane", IsSiteAdmin: true},
		Lists: []presenters.ListSummary{
			{ID: "abc", Title: "Documents", URL: "https://contoso.sharepoint.com/sites/rd/Shared Documents", IsLibrary: true, ItemCountLabel: "2 items"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, PortalOverviewPage(vm).Render(context.Background(), &buf))

	html := buf.String()
	assert.Contains(t, html, "sites/r&amp;d")
	assert.Contains(t, html, "Jane &lt;Doe&gt;")
	assert.Contains(t, html, "site admin")
	assert.Contains(t, html, `id="list-abc"`)
	assert.NotContains(t, html, "No visible lists.")
}

func TestPortalOverviewPage_NoLists(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PortalOverviewPage(presenters.PortalOverviewVM{Endpoint: "x"}).Render(context.Background(), &buf))

	assert.Contains(t, buf.String(), "No visible lists.")
	assert.NotContains(t, buf.String(), "Signed in as")
}
