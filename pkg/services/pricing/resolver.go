// Package pricing resolves the hourly rate applicable to a project's
// resources. Rates are keyed by resource tag, a site-assigned label
// attached to each domain, so resolution walks
// project -> domain -> tag -> rate and gives up at the first broken link.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/de-tools/cloud-ledger/pkg/models/domain"
)

// Resolver answers rate lookups for one region over one snapshot. A false
// result means "do not bill this resource"; it is never a zero rate.
type Resolver interface {
	ResolveTag(projectID string) (string, bool)
	Resolve(projectID, costKind string) (decimal.Decimal, bool)
}

type resolver struct {
	rates     domain.RegionRates
	tagByName map[string]string
	dir       *domain.Directory
}

// NewResolver builds a resolver from one region's rate slice, the
// domain-name -> resource-tag site mapping, and the snapshot's identity
// directory. Purely a lookup structure; nothing is mutated afterwards.
func NewResolver(rates domain.RegionRates, resourceTags map[string]string, dir *domain.Directory) Resolver {
	return &resolver{
		rates:     rates,
		tagByName: resourceTags,
		dir:       dir,
	}
}

func (r *resolver) ResolveTag(projectID string) (string, bool) {
	domainID, ok := r.dir.ProjectDomainID(projectID)
	if !ok {
		return "", false
	}

	domainName, ok := r.dir.DomainName(domainID)
	if !ok {
		return "", false
	}

	tag, ok := r.tagByName[domainName]
	if !ok {
		return "", false
	}

	return tag, true
}

func (r *resolver) Resolve(projectID, costKind string) (decimal.Decimal, bool) {
	tag, ok := r.ResolveTag(projectID)
	if !ok {
		return decimal.Decimal{}, false
	}

	kinds, ok := r.rates[tag]
	if !ok {
		return decimal.Decimal{}, false
	}

	rate, ok := kinds[costKind]
	if !ok {
		return decimal.Decimal{}, false
	}

	return rate, true
}
