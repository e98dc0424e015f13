package overlay

// AddPackages returns the union of existing and requested package names.
// Existing order is preserved; requested names not already present are
// appended in request order, with duplicates inside requested collapsed.
// Membership is exact string match.
func AddPackages(existing, requested []string) []string {
	result := make([]string, 0, len(existing)+len(requested))
	seen := make(map[string]struct{}, len(existing)+len(requested))

	for _, name := range existing {
		if _, ok := seen[name]; ok {
			continue
		}

		seen[name] = struct{}{}

		result = append(result, name)
	}

	for _, name := range requested {
		if _, ok := seen[name]; ok {
			continue
		}

		seen[name] = struct{}{}

		result = append(result, name)
	}

	return result
}

// RemovePackages removes each requested name from existing, reporting names
// that were not installed. A duplicated requested name removes at most one
// occurrence and is reported once.
func RemovePackages(existing, requested []string) (result []string, notInstalled []string) {
	drop := make(map[string]struct{}, len(requested))
	reported := make(map[string]struct{}, len(requested))

	for _, name := range requested {
		drop[name] = struct{}{}
	}

	result = make([]string, 0, len(existing))

	for _, name := range existing {
		if _, ok := drop[name]; ok {
			delete(drop, name)
			continue
		}

		result = append(result, name)
	}

	for _, name := range requested {
		if _, ok := drop[name]; !ok {
			continue
		}

		if _, ok := reported[name]; ok {
			continue
		}

		reported[name] = struct{}{}

		notInstalled = append(notInstalled, name)
	}

	return result, notInstalled
}
