package core

// ListKindLabel names the kind of list for badges.
func ListKindLabel(isLibrary bool) string {
	if isLibrary {
		return "Library"
	}
	return "List"
}

// ListKindClass returns the badge classes for a list kind.
func ListKindClass(isLibrary bool) string {
	if isLibrary {
		return "bg-blue-50 text-blue-700"
	}
	return "bg-slate-100 text-slate-600"
}

// StatusClass returns the badge classes for a probe status.
func StatusClass(ok bool) string {
	if ok {
		return "bg-green-50 text-green-700"
	}
	return "bg-red-50 text-red-700"
}
