package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewXML(t *testing.T) {
	open := Eq("Status", TypeText, "Open")

	tests := []struct {
		name     string
		filter   FilterExpression
		limit    int
		expected string
	}{
		{
			name:     "filter_and_limit",
			filter:   open,
			limit:    50,
			expected: "<View><Query><Where>" + open.CAML() + "</Where></Query><RowLimit>50</RowLimit></View>",
		},
		{
			name:     "empty_filter_omits_where",
			limit:    10,
			expected: "<View><RowLimit>10</RowLimit></View>",
		},
		{
			name:     "zero_limit_uses_default",
			expected: "<View><RowLimit>3000</RowLimit></View>",
		},
		{
			name:     "negative_limit_uses_default",
			filter:   open,
			limit:    -5,
			expected: "<View><Query><Where>" + open.CAML() + "</Where></Query><RowLimit>3000</RowLimit></View>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ViewXML(tt.filter, tt.limit))
		})
	}
}

func TestViewXML_DefaultEqualsExplicitCap(t *testing.T) {
	f := IsNotNull("Title")

	assert.Equal(t, ViewXML(f, DefaultRowLimit), ViewXML(f, 0))
}
