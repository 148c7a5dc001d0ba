package model

// List transforms never mutate their input; each returns a fresh slice so a
// caller can keep the previous value as a snapshot.

// GenerateID returns the next id for a list: one past the largest id, or 0
// for an empty list.
func GenerateID(issues []Issue) int {
	if len(issues) == 0 {
		return 0
	}
	highest := issues[0].ID
	for _, it := range issues[1:] {
		if it.ID > highest {
			highest = it.ID
		}
	}
	return highest + 1
}

// Index returns the position of id in issues, or -1.
func Index(issues []Issue, id int) int {
	for i, it := range issues {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Find looks up a record by id.
func Find(issues []Issue, id int) (Issue, bool) {
	if i := Index(issues, id); i >= 0 {
		return issues[i], true
	}
	return Issue{}, false
}

// Clone copies a list.
func Clone(issues []Issue) []Issue {
	out := make([]Issue, len(issues))
	copy(out, issues)
	return out
}

// Delete drops every record with the given id. Deleting an absent id returns
// an equal copy.
func Delete(issues []Issue, id int) []Issue {
	out := make([]Issue, 0, len(issues))
	for _, it := range issues {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

// SetCompleted replaces the completed flag of one record.
func SetCompleted(issues []Issue, id int, completed bool) ([]Issue, error) {
	i := Index(issues, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	out := Clone(issues)
	out[i].Completed = completed
	return out, nil
}

// Upsert overwrites the title and description of the record named by d.ID,
// keeping its id and completed flag. When d.ID is nil or names no record a
// new, uncompleted record with a fresh id is appended.
func Upsert(issues []Issue, d Draft) ([]Issue, Issue) {
	if d.ID != nil {
		if i := Index(issues, *d.ID); i >= 0 {
			out := Clone(issues)
			out[i].Title = d.Title
			out[i].Description = d.Description
			return out, out[i]
		}
	}
	it := Issue{
		ID:          GenerateID(issues),
		Title:       d.Title,
		Description: d.Description,
	}
	out := make([]Issue, len(issues), len(issues)+1)
	copy(out, issues)
	return append(out, it), it
}

// Equal reports whether two lists hold the same records in the same order.
func Equal(a, b []Issue) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Stats counts completed and open records.
func Stats(issues []Issue) (done, open int) {
	for _, it := range issues {
		if it.Completed {
			done++
		} else {
			open++
		}
	}
	return
}
