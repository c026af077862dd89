package manifest

// RepositoryScanner abstracts manifest scanning for aggregation and testing.
type RepositoryScanner interface {
	Scan(repositoryRoot string) ([]DependencyRecord, error)
}

// Aggregate scans every repository root in the given order and concatenates the results.
//
// Record order is repository order first, then in-repository discovery order.
// Downstream index assignment depends on this ordering staying stable.
func Aggregate(scanner RepositoryScanner, repositoryRoots []string) ([]DependencyRecord, error) {
	var aggregated []DependencyRecord
	for _, repositoryRoot := range repositoryRoots {
		records, scanError := scanner.Scan(repositoryRoot)
		if scanError != nil {
			return nil, scanError
		}
		aggregated = append(aggregated, records...)
	}
	return aggregated, nil
}

// FilterDevelopmentDependencies returns the records with development-only entries removed.
func FilterDevelopmentDependencies(records []DependencyRecord) []DependencyRecord {
	filtered := make([]DependencyRecord, 0, len(records))
	for _, record := range records {
		if record.IsDevelopmentDependency {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}
