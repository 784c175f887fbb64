package document

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jonathan/resume-site/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullDocument = `{
	"name": "Ada Example",
	"title": "Staff Engineer",
	"summary": "Builds reliable systems.",
	"contact": {
		"email": "ada@example.com",
		"linkedin": "https://www.linkedin.com/in/ada",
		"location": "Lisbon"
	},
	"meta": {
		"slug": "staff",
		"version": "1.2.0",
		"kpis": ["40% faster builds", "3 teams led"]
	},
	"skills": {
		"Languages": ["Go", "Rust"],
		"Infra": "Kubernetes; Terraform, AWS"
	},
	"experience": [
		{
			"title": "Engineer",
			"company": "Acme",
			"location": "Remote",
			"start": "2019",
			"end": "2021",
			"duties": ["Shipped things"],
			"achievements": ["Won award"]
		},
		{
			"title": "Intern",
			"company": "Initech",
			"dates": "Summer 2018",
			"bullets": ["Fixed printers"]
		}
	],
	"education": [
		{"degree": "BSc", "school": "State U", "year": 2018, "honors": "cum laude"}
	],
	"certifications": [
		{"name": "CKA", "issuer": "CNCF"},
		"PMP"
	]
}`

func TestNormalize_FullDocument(t *testing.T) {
	m := Normalize(MustParse(fullDocument))

	assert.Equal(t, "Ada Example", m.Name)
	assert.Equal(t, "Staff Engineer", m.Role)
	assert.Equal(t, "Lisbon", m.Location)
	assert.Equal(t, "Builds reliable systems.", m.Summary)
	assert.Equal(t, "mailto:ada@example.com", m.EmailLink)
	assert.Equal(t, "https://www.linkedin.com/in/ada", m.LinkedInLink)
	assert.Equal(t, "staff", m.Slug)
	assert.Equal(t, "1.2.0", m.Version)
	assert.Equal(t, []string{"40% faster builds", "3 teams led"}, m.KPIs)

	skills, ok := m.Skills.(types.CategorizedSkills)
	require.True(t, ok, "expected categorized skills, got %T", m.Skills)
	assert.Equal(t, types.CategorizedSkills{
		{Category: "Languages", Items: []string{"Go", "Rust"}},
		{Category: "Infra", Items: []string{"Kubernetes", "Terraform", "AWS"}},
	}, skills)

	require.Len(t, m.Experience, 2)
	assert.Equal(t, types.ExperienceEntry{
		Title:        "Engineer",
		Company:      "Acme",
		Location:     "Remote",
		Dates:        "2019 – 2021",
		Duties:       []string{"Shipped things"},
		Achievements: []string{"Won award"},
	}, m.Experience[0])
	assert.Equal(t, "Summer 2018", m.Experience[1].Dates)
	assert.Equal(t, []string{"Fixed printers"}, m.Experience[1].Duties)
	assert.Equal(t, []string{}, m.Experience[1].Achievements)

	require.Len(t, m.Education, 1)
	assert.Equal(t, "BSc", m.Education[0].Degree)
	assert.Equal(t, "2018", m.Education[0].Year)
	assert.Equal(t, "", m.Education[0].Details)
	assert.Equal(t, map[string]any{"honors": "cum laude"}, m.Education[0].Extra)

	require.Len(t, m.Certifications, 2)
	assert.Equal(t, "CNCF", m.Certifications[0].Issuer)
	assert.Equal(t, "PMP", m.Certifications[1].Name)
}

func TestNormalize_ExtraFieldsKeepNumberText(t *testing.T) {
	m := Normalize(MustParse(`{"education": [{
		"degree": "BSc",
		"credits": 1e3,
		"student_id": 12345678901234567890,
		"score": 3.80,
		"honors": true,
		"minor": null,
		"courses": [{"code": 101, "name": "Intro"}, 202],
		"advisor": {"name": "Grace", "room": 42}
	}]}`))

	require.Len(t, m.Education, 1)
	assert.Equal(t, map[string]any{
		"credits":    "1e3",
		"student_id": "12345678901234567890",
		"score":      "3.80",
		"honors":     true,
		"minor":      nil,
		"courses":    []any{map[string]any{"code": "101", "name": "Intro"}, "202"},
		"advisor":    map[string]any{"name": "Grace", "room": "42"},
	}, m.Education[0].Extra)
}

func TestNormalize_EmptyDocumentUsesFallbacks(t *testing.T) {
	m := Normalize(MustParse(`{}`))

	assert.Equal(t, DefaultName, m.Name)
	assert.Equal(t, DefaultRole, m.Role)
	assert.Equal(t, "", m.Location)
	assert.Equal(t, "", m.Summary)
	assert.Equal(t, types.FreeTextSkills(""), m.Skills)
	assert.Empty(t, m.Experience)
	assert.NotNil(t, m.Experience)
	assert.Empty(t, m.Education)
	assert.Empty(t, m.Certifications)
	assert.Empty(t, m.KPIs)
	assert.Equal(t, "", m.EmailLink)
	assert.Equal(t, "", m.LinkedInLink)
}

func TestNormalize_MetaFallbacks(t *testing.T) {
	m := Normalize(MustParse(`{
		"name": "",
		"meta": {"name": "Meta Name", "role": "Meta Role", "location": "Porto", "version": 2}
	}`))

	assert.Equal(t, "Meta Name", m.Name)
	assert.Equal(t, "Meta Role", m.Role)
	assert.Equal(t, "Porto", m.Location)
	assert.Equal(t, "2", m.Version)
}

func TestNormalize_ContactLocationWinsOverMeta(t *testing.T) {
	m := Normalize(MustParse(`{"contact": {"location": "Lisbon"}, "meta": {"location": "Porto"}}`))
	assert.Equal(t, "Lisbon", m.Location)
}

func TestNormalize_FlatSkillsList(t *testing.T) {
	m := Normalize(MustParse(`{"skills": ["Go", "SQL", "Kafka"]}`))
	assert.Equal(t, types.FreeTextSkills("Go, SQL, Kafka"), m.Skills)
}

func TestNormalize_SkillsWrongTypeIgnored(t *testing.T) {
	m := Normalize(MustParse(`{"skills": 12}`))
	assert.Equal(t, types.FreeTextSkills(""), m.Skills)
}

func TestNormalize_KPIsMustBeList(t *testing.T) {
	m := Normalize(MustParse(`{"meta": {"kpis": "fast"}}`))
	assert.Empty(t, m.KPIs)
}

func TestNormalize_WrongTypesFallThrough(t *testing.T) {
	m := Normalize(MustParse(`{
		"name": {"first": "Ada"},
		"title": ["Engineer"],
		"experience": {"not": "a list"},
		"education": "BSc",
		"contact": "ada@example.com"
	}`))

	assert.Equal(t, DefaultName, m.Name)
	assert.Equal(t, DefaultRole, m.Role)
	assert.Empty(t, m.Experience)
	assert.Empty(t, m.Education)
	assert.Equal(t, "", m.EmailLink)
}

func TestNormalize_EmailAlreadyLink(t *testing.T) {
	m := Normalize(MustParse(`{"contact": {"email": "mailto:ada@example.com"}}`))
	assert.Equal(t, "mailto:ada@example.com", m.EmailLink)
}

func TestNormalize_Deterministic(t *testing.T) {
	raw := MustParse(fullDocument)
	first := Normalize(raw)
	second := Normalize(raw)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("normalize not deterministic (-first +second):\n%s", diff)
	}

	reparsed := Normalize(MustParse(fullDocument))
	if diff := cmp.Diff(first, reparsed); diff != "" {
		t.Fatalf("normalize differs across parses (-first +second):\n%s", diff)
	}
}

func TestEntryDates(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		want  string
	}{
		{"start and end", `{"start": "2019", "end": "2021"}`, "2019 – 2021"},
		{"start only", `{"start": "2019"}`, "2019"},
		{"end only", `{"end": "2021"}`, "2021"},
		{"explicit dates win", `{"dates": "2019 to now", "start": "2019"}`, "2019 to now"},
		{"empty dates fall back", `{"dates": "", "start": "2019", "end": "Present"}`, "2019 – Present"},
		{"nothing", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Normalize(MustParse(`{"experience": [` + tt.entry + `]}`))
			require.Len(t, m.Experience, 1)
			assert.Equal(t, tt.want, m.Experience[0].Dates)
		})
	}
}

func TestEntryDuties_Precedence(t *testing.T) {
	m := Normalize(MustParse(`{"experience": [
		{"duties": ["a"], "bullets": ["b"]},
		{"bullets": ["b"]},
		{"duties": "not a list", "bullets": ["c"]},
		{}
	]}`))

	require.Len(t, m.Experience, 4)
	assert.Equal(t, []string{"a"}, m.Experience[0].Duties)
	assert.Equal(t, []string{"b"}, m.Experience[1].Duties)
	assert.Equal(t, []string{"c"}, m.Experience[2].Duties)
	assert.Equal(t, []string{}, m.Experience[3].Duties)
	assert.Equal(t, "", m.Experience[3].Title)
}

func TestSplitSkills(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Go; Rust, C++", []string{"Go", "Rust", "C++"}},
		{"Go\nRust\r\nC", []string{"Go", "Rust", "C"}},
		{"Go • Rust | Zig", []string{"Go", "Rust", "Zig"}},
		{"Go â€¢ Rust", []string{"Go", "Rust"}},
		{" ; , ", []string{}},
		{"Single", []string{"Single"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSkills(tt.in))
		})
	}
}
