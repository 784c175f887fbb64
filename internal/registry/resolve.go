package registry

import (
	"strings"

	"github.com/jonathan/resume-site/internal/types"
)

// Resolve picks the variant to publish for requested, which may be empty.
//
// The requested identifier is tried first, then the registry default. An
// identifier matches a variant's slug or one of its aliases, or names an exact
// pair as "slug@version". When several variants match, the highest version
// among the matches sharing the first match's slug wins. If neither identifier
// matches, the highest version in the registry is used. Ties go to the variant
// listed first.
//
// The only failure is a registry with no variants.
func Resolve(reg *types.Registry, requested string) (types.VariantRef, error) {
	if reg == nil || len(reg.Variants) == 0 {
		return types.VariantRef{}, &ResolutionError{
			Identifier: requested,
			Message:    "registry has no variants",
			Cause:      types.ErrResolution,
		}
	}

	if ref, ok := match(reg.Variants, requested); ok {
		return ref, nil
	}
	if ref, ok := match(reg.Variants, reg.Default); ok {
		return ref, nil
	}
	return highest(reg.Variants).Ref(), nil
}

// Lookup resolves identifier without falling back to the default or the
// highest version.
func Lookup(reg *types.Registry, identifier string) (types.VariantRef, error) {
	if reg == nil || len(reg.Variants) == 0 {
		return types.VariantRef{}, &ResolutionError{
			Identifier: identifier,
			Message:    "registry has no variants",
			Cause:      types.ErrResolution,
		}
	}
	if ref, ok := match(reg.Variants, identifier); ok {
		return ref, nil
	}
	return types.VariantRef{}, &ResolutionError{
		Identifier: identifier,
		Message:    "no variant matches",
		Cause:      types.ErrResolution,
	}
}

func match(variants []types.Variant, identifier string) (types.VariantRef, bool) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return types.VariantRef{}, false
	}

	var matched []types.Variant
	for _, v := range variants {
		if v.Slug == identifier || hasAlias(v, identifier) {
			matched = append(matched, v)
		}
	}
	if len(matched) == 0 {
		return matchExact(variants, identifier)
	}

	slug := matched[0].Slug
	sameSlug := matched[:0:0]
	for _, v := range matched {
		if v.Slug == slug {
			sameSlug = append(sameSlug, v)
		}
	}
	return highest(sameSlug).Ref(), true
}

// matchExact handles the "slug@version" form. Slugs and aliases are tried
// first, so an alias containing "@" still matches as an alias.
func matchExact(variants []types.Variant, identifier string) (types.VariantRef, bool) {
	slug, version, ok := strings.Cut(identifier, "@")
	if !ok {
		return types.VariantRef{}, false
	}
	want := ParseVersion(version)
	for _, v := range variants {
		if v.Slug == slug && ParseVersion(v.Version).Compare(want) == 0 {
			return v.Ref(), true
		}
	}
	return types.VariantRef{}, false
}

func hasAlias(v types.Variant, identifier string) bool {
	for _, alias := range v.Aliases {
		if alias == identifier {
			return true
		}
	}
	return false
}

// highest returns the variant with the greatest version, the earliest on ties.
// variants must not be empty.
func highest(variants []types.Variant) types.Variant {
	best := variants[0]
	bestVersion := ParseVersion(best.Version)
	for _, v := range variants[1:] {
		if version := ParseVersion(v.Version); version.Compare(bestVersion) > 0 {
			best, bestVersion = v, version
		}
	}
	return best
}

// LatestBySlug returns the highest version of every slug, in the order each
// slug first appears in the registry.
func LatestBySlug(reg *types.Registry) []types.VariantRef {
	if reg == nil {
		return nil
	}
	var order []string
	groups := make(map[string][]types.Variant)
	for _, v := range reg.Variants {
		if _, seen := groups[v.Slug]; !seen {
			order = append(order, v.Slug)
		}
		groups[v.Slug] = append(groups[v.Slug], v)
	}

	refs := make([]types.VariantRef, 0, len(order))
	for _, slug := range order {
		refs = append(refs, highest(groups[slug]).Ref())
	}
	return refs
}
