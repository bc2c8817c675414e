package domain

// Directory provides name lookups over a snapshot's identity data: users
// and projects by id, domains by id, and a reverse user-name index scoped
// by domain. Built once per run; read-only afterwards.
type Directory struct {
	users       map[string]User
	projects    map[string]Project
	domains     map[string]Domain
	usersByName map[string][]User
}

func NewDirectory(snap *Snapshot) *Directory {
	d := &Directory{
		users:       make(map[string]User, len(snap.Users)),
		projects:    make(map[string]Project, len(snap.Projects)),
		domains:     make(map[string]Domain, len(snap.Domains)),
		usersByName: make(map[string][]User),
	}

	for _, u := range snap.Users {
		d.users[u.ID] = u
		d.usersByName[u.Name] = append(d.usersByName[u.Name], u)
	}
	for _, p := range snap.Projects {
		d.projects[p.ID] = p
	}
	for _, dom := range snap.Domains {
		d.domains[dom.ID] = dom
	}

	return d
}

func (d *Directory) UserName(id string) (string, bool) {
	u, ok := d.users[id]
	if !ok {
		return "", false
	}
	return u.Name, true
}

func (d *Directory) ProjectName(id string) (string, bool) {
	p, ok := d.projects[id]
	if !ok {
		return "", false
	}
	return p.Name, true
}

func (d *Directory) ProjectDomainID(id string) (string, bool) {
	p, ok := d.projects[id]
	if !ok || p.DomainID == "" {
		return "", false
	}
	return p.DomainID, true
}

func (d *Directory) DomainName(id string) (string, bool) {
	dom, ok := d.domains[id]
	if !ok {
		return "", false
	}
	return dom.Name, true
}

// UserKnownInDomain reports whether a user with the given name exists in
// the given domain. Name collisions across domains are common enough that
// a bare name match must not be trusted for attribution.
func (d *Directory) UserKnownInDomain(name, domainID string) bool {
	for _, u := range d.usersByName[name] {
		if u.DomainID == domainID {
			return true
		}
	}
	return false
}
