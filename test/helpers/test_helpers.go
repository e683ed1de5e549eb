package helpers

import (
	"fmt"

	"spportal/domain/portal"
)

// Well-known list IDs used by the fake portal.
const (
	DocumentsListID = "0b3f3f5e-3a6e-4f5c-9a57-1f4f7d2c1a01"
	TasksListID     = "5c1d7e2a-8d44-4b9e-b7f1-6d0a8c3e2b02"
	HiddenListID    = "9e8d7c6b-5a49-4382-9170-6f5e4d3c2b03"
)

// TestData provides factory methods for portal domain objects.
type TestData struct{}

// NewTestData creates a test data factory.
func NewTestData() *TestData {
	return &TestData{}
}

// SimpleList creates a list with the given identity.
func (td *TestData) SimpleList(id, title string, baseTemplate, itemCount int) *portal.List {
	return &portal.List{
		ID:                id,
		Title:             title,
		ItemCount:         itemCount,
		BaseTemplate:      baseTemplate,
		ServerRelativeURL: "/sites/test/" + title,
		URL:               "https://contoso.sharepoint.com/sites/test/" + title,
	}
}

// StandardLists returns a document library, a task list and a hidden list.
func (td *TestData) StandardLists(taskCount int) []*portal.List {
	hidden := td.SimpleList(HiddenListID, "Style Library", 101, 3)
	hidden.Hidden = true
	return []*portal.List{
		td.SimpleList(DocumentsListID, "Documents", 101, 2),
		td.SimpleList(TasksListID, "Tasks", 100, taskCount),
		hidden,
	}
}

// CurrentUser returns the user the fake portal authenticates as.
func (td *TestData) CurrentUser() *portal.User {
	return &portal.User{
		ID:          7,
		LoginName:   "i:0#.f|membership|jane@contoso.com",
		Title:       "Jane Doe",
		Email:       "jane@contoso.com",
		IsSiteAdmin: true,
	}
}

// TaskRows creates n task rows. Odd IDs are Open, even IDs Closed; every third
// row has no AssignedTo value. Numbers decode as float64 like JSON payloads.
func (td *TestData) TaskRows(n int) []portal.Row {
	rows := make([]portal.Row, 0, n)
	for i := 1; i <= n; i++ {
		status := "Closed"
		if i%2 == 1 {
			status = "Open"
		}
		row := portal.Row{
			"ID":       float64(i),
			"Title":    fmt.Sprintf("Task %d", i),
			"Status":   status,
			"Priority": float64(i % 3),
		}
		if i%3 != 0 {
			row["AssignedTo"] = "jane@contoso.com"
		}
		rows = append(rows, row)
	}
	return rows
}
