// Package types provides type definitions for structured data used throughout the resume-site system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ResumeModel is the canonical display model produced by normalizing a raw
// resume document. Every consumer renders from this shape only.
type ResumeModel struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Location string `json:"location"`
	Summary  string `json:"summary,omitempty"` // empty means no summary section

	Skills Skills `json:"skills"`

	Experience     []ExperienceEntry    `json:"experience"`
	Education      []EducationEntry     `json:"education"`
	Certifications []CertificationEntry `json:"certifications"`
	KPIs           []string             `json:"kpis"`

	// Contact links as found in the document. They are not safe to render as
	// link targets until checked by the consumer.
	EmailLink    string `json:"email_link,omitempty"`
	LinkedInLink string `json:"linkedin_link,omitempty"`

	Slug    string `json:"slug,omitempty"`
	Version string `json:"version,omitempty"`
}

// Skills is either CategorizedSkills or FreeTextSkills. Consumers switch on
// the dynamic type.
type Skills interface {
	isSkills()
}

// CategorizedSkills lists skills grouped by category, in document order.
type CategorizedSkills []SkillCategory

// FreeTextSkills is an uncategorized, comma-separated skills line.
type FreeTextSkills string

func (CategorizedSkills) isSkills() {}
func (FreeTextSkills) isSkills()    {}

// SkillCategory is one named group of skills
type SkillCategory struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// ExperienceEntry is one position held
type ExperienceEntry struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	Dates        string   `json:"dates"`
	Duties       []string `json:"duties"`
	Achievements []string `json:"achievements"`
}

// EducationEntry is one degree or program. Fields the model does not name are
// kept in Extra so templates can still reach them.
type EducationEntry struct {
	Degree   string         `json:"degree,omitempty"`
	School   string         `json:"school,omitempty"`
	Location string         `json:"location,omitempty"`
	Year     string         `json:"year,omitempty"`
	GPA      string         `json:"gpa,omitempty"`
	Details  string         `json:"details"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// CertificationEntry is one certification. Unnamed fields are kept in Extra.
type CertificationEntry struct {
	Name   string         `json:"name"`
	Issuer string         `json:"issuer,omitempty"`
	Year   string         `json:"year,omitempty"`
	URL    string         `json:"url,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}
