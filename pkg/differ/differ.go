// Package differ compares the allowed-value list held by Infoblox with the
// list derived from ServiceNow and describes what a full replacement changes.
package differ

// Compare returns the changes that turn current into desired.
func Compare(current, desired Set) *Changeset {
	cs := &Changeset{
		Added:     []string{},
		Removed:   []string{},
		Unchanged: []string{},
	}

	for _, v := range desired.Sorted() {
		if current.Has(v) {
			cs.Unchanged = append(cs.Unchanged, v)
		} else {
			cs.Added = append(cs.Added, v)
		}
	}
	for _, v := range current.Sorted() {
		if !desired.Has(v) {
			cs.Removed = append(cs.Removed, v)
		}
	}

	cs.Summary = ChangesetSummary{
		Added:     len(cs.Added),
		Removed:   len(cs.Removed),
		Unchanged: len(cs.Unchanged),
		Total:     len(cs.Added) + len(cs.Removed),
	}
	return cs
}
