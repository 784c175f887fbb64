package rendering

import (
	"strings"

	"github.com/jonathan/resume-site/internal/types"
)

// ContextOptions controls how a model is exposed to templates
type ContextOptions struct {
	// BasePath prefixes site-relative URLs such as static_url.
	BasePath string
}

// ModelContext flattens a display model into the map templates read.
// Contact links are checked with SafeLink here; a link that fails the check is
// left out so templates guarding on it render no anchor.
func ModelContext(m *types.ResumeModel, opts ContextOptions) map[string]any {
	if m == nil {
		return map[string]any{}
	}

	ctx := map[string]any{
		"name":           m.Name,
		"role":           m.Role,
		"location":       m.Location,
		"summary":        m.Summary,
		"slug":           m.Slug,
		"version":        m.Version,
		"kpis":           m.KPIs,
		"has_kpis":       len(m.KPIs) > 0,
		"experience":     experienceContext(m.Experience),
		"education":      educationContext(m.Education),
		"certifications": certificationContext(m.Certifications),
	}

	switch s := m.Skills.(type) {
	case types.CategorizedSkills:
		skills := make([]map[string]any, 0, len(s))
		pairs := make([]map[string]any, 0, len(s))
		for _, c := range s {
			skills = append(skills, map[string]any{
				"category": c.Category,
				"items":    c.Items,
				"count":    len(c.Items),
			})
			pairs = append(pairs, map[string]any{
				"k": c.Category,
				"v": strings.Join(c.Items, "; "),
			})
		}
		ctx["skills"] = skills
		ctx["skills_kv"] = pairs
	case types.FreeTextSkills:
		ctx["skills_list"] = string(s)
	}

	contact := map[string]any{"location": m.Location}
	if mail := SafeLink(m.EmailLink); mail != "" {
		ctx["mail"] = mail
		contact["email"] = mail
		contact["email_address"] = mail[len("mailto:"):]
	}
	if li := SafeLink(m.LinkedInLink); li != "" {
		ctx["li"] = li
		contact["linkedin"] = li
	}
	ctx["contact"] = contact

	if m.Slug != "" {
		ctx["static_url"] = strings.TrimSuffix(opts.BasePath, "/") + "/resume/" + m.Slug + "/"
	}

	return ctx
}

func experienceContext(entries []types.ExperienceEntry) []map[string]any {
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		entry := map[string]any{
			"title":        e.Title,
			"company":      e.Company,
			"location":     e.Location,
			"location_sep": "",
			"dates":        e.Dates,
			"duties":       e.Duties,
			"achievements": e.Achievements,

			"has_duties":       len(e.Duties) > 0,
			"has_achievements": len(e.Achievements) > 0,
		}
		if e.Location != "" {
			entry["location_sep"] = "– " + e.Location
		}
		out = append(out, entry)
	}
	return out
}

func educationContext(entries []types.EducationEntry) []map[string]any {
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		entry := make(map[string]any, len(e.Extra)+6)
		for k, v := range e.Extra {
			entry[k] = v
		}
		entry["degree"] = e.Degree
		entry["school"] = e.School
		entry["location"] = e.Location
		entry["year"] = e.Year
		entry["gpa"] = e.GPA
		entry["details"] = e.Details
		out = append(out, entry)
	}
	return out
}

func certificationContext(entries []types.CertificationEntry) []map[string]any {
	out := make([]map[string]any, 0, len(entries))
	for _, c := range entries {
		entry := make(map[string]any, len(c.Extra)+4)
		for k, v := range c.Extra {
			entry[k] = v
		}
		entry["name"] = c.Name
		entry["issuer"] = c.Issuer
		entry["year"] = c.Year
		entry["url"] = SafeLink(c.URL)
		out = append(out, entry)
	}
	return out
}
