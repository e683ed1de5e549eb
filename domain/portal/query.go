package portal

import "strconv"

// DefaultRowLimit caps a list row fetch when the caller gives no positive limit.
const DefaultRowLimit = 3000

// ViewXML builds the CAML query envelope for a row fetch. The filter is embedded
// unmodified; an empty filter omits the Where clause so every row matches.
func ViewXML(filter FilterExpression, rowLimit int) string {
	if rowLimit <= 0 {
		rowLimit = DefaultRowLimit
	}
	limit := "<RowLimit>" + strconv.Itoa(rowLimit) + "</RowLimit>"
	if filter.IsEmpty() {
		return "<View>" + limit + "</View>"
	}
	return "<View><Query><Where>" + filter.CAML() + "</Where></Query>" + limit + "</View>"
}
