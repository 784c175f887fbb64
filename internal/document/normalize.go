package document

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-site/internal/sanitize"
	"github.com/jonathan/resume-site/internal/types"
	"github.com/tidwall/gjson"
)

// Defaults used when a document names neither the person nor the role.
const (
	DefaultName = "John Cornelius"
	DefaultRole = "Program Manager"
)

// DateSeparator joins start and end when an entry has no dates string.
const DateSeparator = " – "

// skillDelimiters split a single-string skill category, tried in order.
var skillDelimiters = []*regexp.Regexp{
	regexp.MustCompile(`\r?\n`),
	regexp.MustCompile(`;`),
	regexp.MustCompile(`,`),
	regexp.MustCompile(`\s+•\s+`),
	regexp.MustCompile(`\|`),
}

// Normalize maps a raw document onto the display model. It never fails:
// every field has a fallback, and values of the wrong type are treated as
// absent. The result shares no memory with raw.
func Normalize(raw RawDocument) *types.ResumeModel {
	doc := raw.root
	meta := doc.Get("meta")
	contact := doc.Get("contact")

	m := &types.ResumeModel{
		Name:           firstOr(DefaultName, doc.Get("name"), meta.Get("name")),
		Role:           firstOr(DefaultRole, doc.Get("title"), meta.Get("role")),
		Location:       firstOr("", contact.Get("location"), meta.Get("location")),
		Summary:        firstOr("", doc.Get("summary")),
		Skills:         normalizeSkills(doc.Get("skills")),
		Experience:     normalizeExperience(doc.Get("experience")),
		Education:      normalizeEducation(doc.Get("education")),
		Certifications: normalizeCertifications(doc.Get("certifications")),
		KPIs:           textList(meta.Get("kpis")),
		LinkedInLink:   firstOr("", contact.Get("linkedin")),
		Slug:           text(meta.Get("slug")),
		Version:        text(meta.Get("version")),
	}

	if email, ok := first(contact.Get("email")); ok {
		if strings.HasPrefix(strings.ToLower(email), "mailto:") {
			m.EmailLink = email
		} else {
			m.EmailLink = "mailto:" + email
		}
	}

	return m
}

func firstOr(fallback string, candidates ...gjson.Result) string {
	if s, ok := first(candidates...); ok {
		return s
	}
	return fallback
}

// normalizeSkills accepts a category map or a flat list. The map shape is
// checked first.
func normalizeSkills(r gjson.Result) types.Skills {
	switch {
	case r.IsObject():
		categories := make(types.CategorizedSkills, 0)
		r.ForEach(func(key, value gjson.Result) bool {
			categories = append(categories, types.SkillCategory{
				Category: key.String(),
				Items:    skillItems(value),
			})
			return true
		})
		return categories
	case r.IsArray():
		return types.FreeTextSkills(strings.Join(textList(r), ", "))
	case r.Type == gjson.String:
		return types.FreeTextSkills(strings.TrimSpace(r.Str))
	default:
		return types.FreeTextSkills("")
	}
}

func skillItems(value gjson.Result) []string {
	if value.IsArray() {
		return textList(value)
	}
	if !scalar(value) {
		return []string{}
	}
	return SplitSkills(text(value))
}

// SplitSkills breaks a one-line skill list into items. Newlines, semicolons,
// commas, spaced bullets and pipes all separate items; items are trimmed and
// empty ones dropped.
func SplitSkills(s string) []string {
	pieces := []string{sanitize.String(s)}
	for _, delim := range skillDelimiters {
		var next []string
		for _, p := range pieces {
			next = append(next, delim.Split(p, -1)...)
		}
		pieces = next
	}

	items := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

func normalizeExperience(r gjson.Result) []types.ExperienceEntry {
	entries := make([]types.ExperienceEntry, 0)
	if !r.IsArray() {
		return entries
	}
	r.ForEach(func(_, e gjson.Result) bool {
		if !e.IsObject() {
			return true
		}
		entries = append(entries, types.ExperienceEntry{
			Title:        firstOr("", e.Get("title")),
			Company:      firstOr("", e.Get("company")),
			Location:     firstOr("", e.Get("location")),
			Dates:        entryDates(e),
			Duties:       entryDuties(e),
			Achievements: textList(e.Get("achievements")),
		})
		return true
	})
	return entries
}

func entryDates(e gjson.Result) string {
	if dates, ok := first(e.Get("dates")); ok {
		return dates
	}
	parts := make([]string, 0, 2)
	for _, key := range []string{"start", "end"} {
		if s, ok := first(e.Get(key)); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, DateSeparator)
}

// entryDuties prefers duties and falls back to the older bullets field.
func entryDuties(e gjson.Result) []string {
	if duties := e.Get("duties"); duties.IsArray() {
		return textList(duties)
	}
	if bullets := e.Get("bullets"); bullets.IsArray() {
		return textList(bullets)
	}
	return []string{}
}

func normalizeEducation(r gjson.Result) []types.EducationEntry {
	entries := make([]types.EducationEntry, 0)
	if !r.IsArray() {
		return entries
	}
	r.ForEach(func(_, e gjson.Result) bool {
		if !e.IsObject() {
			if s, ok := first(e); ok {
				entries = append(entries, types.EducationEntry{Degree: s})
			}
			return true
		}
		entries = append(entries, types.EducationEntry{
			Degree:   firstOr("", e.Get("degree")),
			School:   firstOr("", e.Get("school")),
			Location: firstOr("", e.Get("location")),
			Year:     firstOr("", e.Get("year")),
			GPA:      firstOr("", e.Get("gpa")),
			Details:  firstOr("", e.Get("details")),
			Extra:    extraFields(e, "degree", "school", "location", "year", "gpa", "details"),
		})
		return true
	})
	return entries
}

func normalizeCertifications(r gjson.Result) []types.CertificationEntry {
	entries := make([]types.CertificationEntry, 0)
	if !r.IsArray() {
		return entries
	}
	r.ForEach(func(_, c gjson.Result) bool {
		if !c.IsObject() {
			if s, ok := first(c); ok {
				entries = append(entries, types.CertificationEntry{Name: s})
			}
			return true
		}
		entries = append(entries, types.CertificationEntry{
			Name:   firstOr("", c.Get("name")),
			Issuer: firstOr("", c.Get("issuer")),
			Year:   firstOr("", c.Get("year"), c.Get("date")),
			URL:    firstOr("", c.Get("url")),
			Extra:  extraFields(c, "name", "issuer", "year", "date", "url"),
		})
		return true
	})
	return entries
}

// extraFields copies the object's fields other than known into a plain map.
// It returns nil when nothing is left.
func extraFields(obj gjson.Result, known ...string) map[string]any {
	var extra map[string]any
	obj.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		for _, name := range known {
			if k == name {
				return true
			}
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = plainValue(value)
		return true
	})
	return extra
}

// plainValue converts r to maps, slices and scalars. Numbers keep their JSON
// text so large integers and exponents render as written.
func plainValue(r gjson.Result) any {
	switch {
	case r.IsObject():
		m := make(map[string]any)
		r.ForEach(func(key, value gjson.Result) bool {
			m[key.String()] = plainValue(value)
			return true
		})
		return m
	case r.IsArray():
		items := make([]any, 0)
		r.ForEach(func(_, value gjson.Result) bool {
			items = append(items, plainValue(value))
			return true
		})
		return items
	case r.Type == gjson.Number:
		return r.Raw
	default:
		return r.Value()
	}
}

// textList returns the non-empty scalar texts of a JSON array, trimmed.
// Anything that is not an array yields an empty list.
func textList(r gjson.Result) []string {
	out := make([]string, 0)
	if !r.IsArray() {
		return out
	}
	r.ForEach(func(_, item gjson.Result) bool {
		if s := strings.TrimSpace(text(item)); s != "" {
			out = append(out, s)
		}
		return true
	})
	return out
}
