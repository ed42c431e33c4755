// Package keywords holds the technology synonym groups used to expand a
// search's keywords into filter aliases.
package keywords

import "strings"

// groups is read-only after init. A group is triggered when any of its terms
// is a substring of the lower-cased input; a triggered group contributes all
// of its terms.
var groups = [][]string{
	// C# / .NET
	{"c#", "csharp", ".net", "dotnet", "asp.net", "blazor", "maui", "xamarin", "ef", "entity framework"},
	// JavaScript / TypeScript
	{"javascript", "js", "typescript", "ts", "node", "nodejs", "node.js", "react", "vue", "angular", "next.js", "nextjs", "express"},
	{"python", "django", "flask", "fastapi", "pandas", "numpy", "pytorch", "tensorflow"},
	{"java", "spring", "springboot", "spring boot", "kotlin", "gradle", "maven"},
	{"php", "laravel", "symfony", "wordpress"},
	{"ruby", "rails", "ruby on rails", "ror"},
	{"go", "golang"},
	{"rust", "cargo"},

	// Mobile
	{"swift", "ios", "swiftui", "uikit"},
	{"android", "kotlin", "jetpack compose"},
	{"flutter", "dart"},
	{"react native", "expo"},

	// Cloud and infrastructure
	{"aws", "amazon web services", "ec2", "s3", "lambda"},
	{"azure", "microsoft azure"},
	{"gcp", "google cloud", "google cloud platform"},
	{"docker", "kubernetes", "k8s", "helm"},
	{"terraform", "ansible", "pulumi"},

	// Databases
	{"sql", "mysql", "postgresql", "postgres", "mssql", "sql server"},
	{"mongodb", "mongo"},
	{"redis", "memcached"},

	// Data / ML
	{"machine learning", "ml", "deep learning", "ai", "artificial intelligence"},
	{"data science", "data scientist", "data analyst", "data analytics"},
}

// Set is a set of lower-case filter aliases.
type Set map[string]struct{}

// Contains reports whether alias is in the set.
func (s Set) Contains(alias string) bool {
	_, ok := s[alias]
	return ok
}

// BuildFilterSet expands input into the union of every group that has at
// least one term occurring in it. Empty input yields an empty set.
func BuildFilterSet(input string) Set {
	result := make(Set)
	if strings.TrimSpace(input) == "" {
		return result
	}

	lower := strings.ToLower(input)
	for _, group := range groups {
		for _, term := range group {
			if strings.Contains(lower, term) {
				for _, alias := range group {
					result[alias] = struct{}{}
				}
				break
			}
		}
	}
	return result
}

// Matches reports whether title or description contains any alias. An empty
// set matches everything.
func Matches(set Set, title, description string) bool {
	if len(set) == 0 {
		return true
	}
	return containsAny(strings.ToLower(title+" "+description), set)
}

// ParseList splits a comma-separated keyword list into a set of trimmed,
// lower-case terms. Blank entries are dropped.
func ParseList(csv string) Set {
	result := make(Set)
	for _, part := range strings.Split(csv, ",") {
		term := strings.ToLower(strings.TrimSpace(part))
		if term == "" {
			continue
		}
		result[term] = struct{}{}
	}
	return result
}

func containsAny(text string, set Set) bool {
	for alias := range set {
		if strings.Contains(text, alias) {
			return true
		}
	}
	return false
}
