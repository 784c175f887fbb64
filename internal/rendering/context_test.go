package rendering

import (
	"testing"

	"github.com/jonathan/resume-site/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelContext_CategorizedSkills(t *testing.T) {
	m := &types.ResumeModel{
		Name: "Ada",
		Skills: types.CategorizedSkills{
			{Category: "Languages", Items: []string{"Go", "Rust"}},
		},
	}

	ctx := ModelContext(m, ContextOptions{})
	assert.Equal(t, []map[string]any{{"k": "Languages", "v": "Go; Rust"}}, ctx["skills_kv"])
	assert.NotContains(t, ctx, "skills_list")

	out := Render("{{#skills}}{{category}} ({{count}}): {{#items}}{{.}} {{/items}}{{/skills}}{{#skills_list}}FREE{{/skills_list}}", ctx)
	assert.Equal(t, "Languages (2): Go Rust ", out)
}

func TestModelContext_FreeTextSkills(t *testing.T) {
	ctx := ModelContext(&types.ResumeModel{Skills: types.FreeTextSkills("Go, SQL")}, ContextOptions{})
	assert.Equal(t, "Go, SQL", ctx["skills_list"])
	assert.NotContains(t, ctx, "skills_kv")
	assert.NotContains(t, ctx, "skills")
}

func TestModelContext_UnsafeLinksDropped(t *testing.T) {
	m := &types.ResumeModel{
		EmailLink:    "mailto:ada@example.com",
		LinkedInLink: "javascript:alert(1)",
	}

	ctx := ModelContext(m, ContextOptions{})
	assert.Equal(t, "mailto:ada@example.com", ctx["mail"])
	assert.NotContains(t, ctx, "li")

	contact, ok := ctx["contact"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", contact["email_address"])
	assert.NotContains(t, contact, "linkedin")

	out := Render(`{{#li}}<a href="{{li}}">LinkedIn</a>{{/li}}`, ctx)
	assert.Equal(t, "", out)
}

func TestModelContext_ExperienceLocationSeparator(t *testing.T) {
	m := &types.ResumeModel{
		Experience: []types.ExperienceEntry{
			{Title: "Engineer", Location: "Remote", Duties: []string{"a"}},
			{Title: "Intern"},
		},
	}

	ctx := ModelContext(m, ContextOptions{})
	out := Render("{{#experience}}{{title}} {{location_sep}}|{{/experience}}", ctx)
	assert.Equal(t, "Engineer – Remote|Intern |", out)
}

func TestModelContext_EducationPassThrough(t *testing.T) {
	m := &types.ResumeModel{
		Education: []types.EducationEntry{
			{Degree: "BSc", School: "State U", Extra: map[string]any{"honors": "cum laude", "degree": "shadowed"}},
		},
	}

	ctx := ModelContext(m, ContextOptions{})
	out := Render("{{#education}}{{degree}}, {{school}} {{honors}}[{{details}}]{{/education}}", ctx)
	assert.Equal(t, "BSc, State U cum laude[]", out)
}

func TestModelContext_StaticURL(t *testing.T) {
	ctx := ModelContext(&types.ResumeModel{Slug: "cv"}, ContextOptions{BasePath: "/site/"})
	assert.Equal(t, "/site/resume/cv/", ctx["static_url"])

	ctx = ModelContext(&types.ResumeModel{}, ContextOptions{BasePath: "/site"})
	assert.NotContains(t, ctx, "static_url")
}

func TestModelContext_NilModel(t *testing.T) {
	assert.Empty(t, ModelContext(nil, ContextOptions{}))
}
