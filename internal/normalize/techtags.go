package normalize

import "strings"

// MaxTechTags caps how many tags a single job carries.
const MaxTechTags = 6

type techKeyword struct {
	needle string
	label  string
}

// techKeywords is scanned in order; a job's tags come out in this order.
// Padded needles only match whole words because the scanned text is padded
// with a space on each side.
var techKeywords = []techKeyword{
	{"react", "React"},
	{"reactjs", "React"},
	{"react.js", "React"},
	{"angular", "Angular"},
	{"vue", "Vue"},
	{"vuejs", "Vue"},
	{"vue.js", "Vue"},
	{"node", "Node.js"},
	{"nodejs", "Node.js"},
	{"node.js", "Node.js"},
	{"python", "Python"},
	{"django", "Django"},
	{"flask", "Flask"},
	{"java ", "Java"},
	{"javascript", "JavaScript"},
	{"typescript", "TypeScript"},
	{"golang", "Go"},
	{" go ", "Go"},
	{"rust", "Rust"},
	{"ruby", "Ruby"},
	{"rails", "Rails"},
	{"php", "PHP"},
	{"laravel", "Laravel"},
	{"swift", "Swift"},
	{"kotlin", "Kotlin"},
	{"flutter", "Flutter"},
	{"docker", "Docker"},
	{"kubernetes", "Kubernetes"},
	{"k8s", "Kubernetes"},
	{"aws", "AWS"},
	{"azure", "Azure"},
	{"gcp", "GCP"},
	{"terraform", "Terraform"},
	{"graphql", "GraphQL"},
	{"postgresql", "PostgreSQL"},
	{"postgres", "PostgreSQL"},
	{"mongodb", "MongoDB"},
	{"redis", "Redis"},
	{"elasticsearch", "Elasticsearch"},
	{"nextjs", "Next.js"},
	{"next.js", "Next.js"},
	{"svelte", "Svelte"},
	{"c++", "C++"},
	{"c#", "C#"},
	{".net", ".NET"},
	{"scala", "Scala"},
	{"elixir", "Elixir"},
	{"machine learning", "ML"},
	{" ml ", "ML"},
	{" ai ", "AI"},
	{"data science", "Data Science"},
	{"devops", "DevOps"},
	{"ci/cd", "CI/CD"},
	{"linux", "Linux"},
	{"sql", "SQL"},
}

// TechTags extracts up to MaxTechTags distinct technology labels mentioned
// in the title or description.
func TechTags(title, description string) []string {
	text := " " + strings.ToLower(title+" "+description) + " "
	tags := make([]string, 0, MaxTechTags)
	seen := make(map[string]bool, MaxTechTags)
	for _, kw := range techKeywords {
		if seen[kw.label] || !strings.Contains(text, kw.needle) {
			continue
		}
		seen[kw.label] = true
		tags = append(tags, kw.label)
		if len(tags) == MaxTechTags {
			break
		}
	}
	return tags
}

// CanonicalTag maps an upstream-supplied tag onto the keyword table's label.
// ok is false when the tag names no known technology.
func CanonicalTag(tag string) (label string, ok bool) {
	lower := strings.ToLower(strings.TrimSpace(tag))
	if lower == "" {
		return "", false
	}
	for _, kw := range techKeywords {
		if strings.TrimSpace(kw.needle) == lower || strings.ToLower(kw.label) == lower {
			return kw.label, true
		}
	}
	return "", false
}

// MergeTags appends the canonical forms of extra onto tags, keeping the
// result distinct and at most MaxTechTags long.
func MergeTags(tags []string, extra []string) []string {
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		seen[t] = true
	}
	for _, raw := range extra {
		if len(tags) >= MaxTechTags {
			break
		}
		label, ok := CanonicalTag(raw)
		if !ok || seen[label] {
			continue
		}
		seen[label] = true
		tags = append(tags, label)
	}
	return tags
}
