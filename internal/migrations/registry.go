package migrations

// All returns the schema history in application order. Append only: a
// released migration is never edited or reordered.
func All() []*Migration {
	return []*Migration{
		initialSchema(),
		replacePermissionsWithSystemRole(),
	}
}

// Head is the id of the newest registered migration.
func Head() string {
	all := All()
	return all[len(all)-1].ID
}
