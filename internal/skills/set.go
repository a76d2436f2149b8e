package skills

import "sort"

// Set is an unordered collection of tags.
type Set map[string]struct{}

func NewSet(tags ...string) Set {
	s := make(Set, len(tags))
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

func (s Set) Add(tag string) {
	s[tag] = struct{}{}
}

func (s Set) Remove(tag string) {
	delete(s, tag)
}

func (s Set) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Sorted returns the tags in lexicographic order, for stable artifacts.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
