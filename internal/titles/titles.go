// Package titles resolves raw application identifiers to display titles
// and back.
package titles

// Entry associates one raw application identifier with a display title.
// An empty Title means the identifier is known but has no title.
type Entry struct {
	App   string `json:"app" yaml:"app"`
	Title string `json:"title" yaml:"title"`
}

// Group is one platform/category section of a nested mapping source.
type Group struct {
	Platform string
	Category string
	Entries  []Entry
}

// Entries flattens groups into entries, keeping source order.
func Entries(groups []Group) []Entry {
	var entries []Entry
	for _, g := range groups {
		entries = append(entries, g.Entries...)
	}
	return entries
}

// DefaultEntries returns the built-in mapping.
func DefaultEntries() []Entry {
	return Entries(defaultCatalogue)
}

// Mapping holds both lookup directions of a flattened source.
type Mapping struct {
	AppToTitle  map[string]string
	TitleToApps map[string][]string
}

// Flatten builds both lookup directions from entries. When an identifier
// appears more than once the later entry wins. Identifiers without a title
// are absent from TitleToApps.
func Flatten(entries []Entry) Mapping {
	m := Mapping{
		AppToTitle:  make(map[string]string, len(entries)),
		TitleToApps: make(map[string][]string),
	}
	for _, e := range entries {
		m.AppToTitle[e.App] = e.Title
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Title == "" || seen[e.App] || m.AppToTitle[e.App] != e.Title {
			continue
		}
		seen[e.App] = true
		m.TitleToApps[e.Title] = append(m.TitleToApps[e.Title], e.App)
	}
	return m
}

// Resolver answers identifier and title lookups. It is read-only after
// construction and safe for concurrent use.
type Resolver struct {
	appToTitle  map[string]string
	titleToApps map[string][]string
}

// NewResolver creates a resolver from a flattened mapping.
func NewResolver(m Mapping) *Resolver {
	r := &Resolver{
		appToTitle:  m.AppToTitle,
		titleToApps: m.TitleToApps,
	}
	if r.appToTitle == nil {
		r.appToTitle = make(map[string]string)
	}
	if r.titleToApps == nil {
		r.titleToApps = make(map[string][]string)
	}
	return r
}

// Title returns the display title of app. Unmapped identifiers are their
// own title; identifiers mapped to no title return "".
func (r *Resolver) Title(app string) string {
	if title, ok := r.appToTitle[app]; ok {
		return title
	}
	return app
}

// Lookup returns the mapped title of app and whether a mapping exists.
func (r *Resolver) Lookup(app string) (string, bool) {
	title, ok := r.appToTitle[app]
	return title, ok
}

// Identifiers returns every raw identifier that resolves to title. A title
// that is not known is treated as a literal identifier.
func (r *Resolver) Identifiers(title string) []string {
	apps, ok := r.titleToApps[title]
	if !ok || len(apps) == 0 {
		return []string{title}
	}
	out := make([]string, len(apps))
	copy(out, apps)
	return out
}

// Titles returns a copy of the title to identifiers map.
func (r *Resolver) Titles() map[string][]string {
	out := make(map[string][]string, len(r.titleToApps))
	for title, apps := range r.titleToApps {
		out[title] = append([]string(nil), apps...)
	}
	return out
}
