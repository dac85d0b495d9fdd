package transfer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/store"
)

var t0 = time.UnixMilli(1_700_000_000_000).UTC()

func baseDB() *store.DB {
	db := store.Empty()
	db.Projects = store.BuiltinProjects()
	db.Prompts = []model.Prompt{
		{ID: "p1", ProjectID: "general", Title: "Cold email", Prompt: "write a cold email", Tags: []string{"Sales"}, CreatedAt: 1, Version: 1},
		{ID: "p2", ProjectID: "blogs", Title: "Intro", Prompt: "blog intro", Tags: []string{}, CreatedAt: 2, Version: 1},
	}
	db.Recent = []string{"p2"}
	return db
}

func TestExport_WriteJSONAndYAML(t *testing.T) {
	doc := Export(baseDB(), t0)
	assert.Equal(t, "2023-11-14T22:13:20Z", doc.ExportedAt)
	assert.Len(t, doc.Prompts, 2)

	var jsonBuf bytes.Buffer
	require.NoError(t, Write(&jsonBuf, doc, FormatJSON))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &decoded))
	assert.Contains(t, decoded, "projects")
	assert.Contains(t, decoded, "recent")

	var yamlBuf bytes.Buffer
	require.NoError(t, Write(&yamlBuf, doc, FormatYAML))
	assert.Contains(t, yamlBuf.String(), "exportedAt:")

	assert.Error(t, Write(&bytes.Buffer{}, doc, "xml"))
}

func TestImportJSON_RoundTripIntoEmptyStore(t *testing.T) {
	src := baseDB()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Export(src, t0), FormatJSON))

	dst := store.Empty()
	dst.Projects = store.BuiltinProjects()
	res, err := ImportJSON(dst, buf.Bytes(), t0)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ProjectsAdded)
	assert.Equal(t, 2, res.PromptsAdded)
	assert.Equal(t, []string{"p2"}, dst.Recent)
	p, ok := dst.FindPrompt("p1")
	require.True(t, ok)
	assert.Equal(t, "write a cold email", p.Prompt)
}

func TestImportJSON_MergesExistingPromptFields(t *testing.T) {
	db := baseDB()
	data := `{"prompts":[{"id":"p1","title":"Warm email","copyCount":4}],"recent":["p1","p2"]}`

	res, err := ImportJSON(db, []byte(data), t0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.PromptsMerged)
	p, _ := db.FindPrompt("p1")
	assert.Equal(t, "Warm email", p.Title)
	assert.Equal(t, "write a cold email", p.Prompt)
	assert.Equal(t, 4, p.CopyCount)
	assert.Equal(t, []string{"p2", "p1"}, db.Recent)
}

func TestImportJSON_ProjectsAndIDs(t *testing.T) {
	db := baseDB()
	data := `{
	  "projects":[
	    {"id":"general","name":"General","locked":true},
	    {"id":"other-work","name":"work"},
	    {"id":"fresh","name":"Fresh","locked":true}
	  ],
	  "prompts":[
	    {"title":"No id","prompt":"body","projectId":"other-work"},
	    {"id":"p9","title":"In fresh","prompt":"fresh body","projectId":"fresh"}
	  ]
	}`
	db.Projects = append(db.Projects, model.Project{ID: "w1", Name: "Work"})

	res, err := ImportJSON(db, []byte(data), t0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ProjectsAdded)
	assert.Equal(t, 2, res.PromptsAdded)

	fresh, ok := db.FindProject("fresh")
	require.True(t, ok)
	assert.False(t, fresh.Locked, "imported custom projects are never locked")

	noID := db.Prompts[len(db.Prompts)-2]
	assert.True(t, strings.HasPrefix(noID.ID, store.PromptIDPrefix+"-"))
	assert.Equal(t, "w1", noID.ProjectID, "name collision maps onto the existing project")
}

func TestImportJSON_RecentCapped(t *testing.T) {
	db := baseDB()
	data := `{"prompts":[
	  {"id":"n1","title":"a","prompt":"a"},
	  {"id":"n2","title":"b","prompt":"b"},
	  {"id":"n3","title":"c","prompt":"c"}
	],"recent":["n1","n2","n3"]}`
	_, err := ImportJSON(db, []byte(data), t0)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "n1", "n2"}, db.Recent)
}

func TestImportJSON_InvalidLeavesStoreUntouched(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"prompts": [`,
		"wrong type":      `{"prompts": "nope"}`,
		"project no name": `{"projects": [{"id": "a"}]}`,
		"negative count":  `{"prompts": [{"id":"p1","copyCount":-2}]}`,
		"top level array": `[]`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			db := baseDB()
			before := db.Clone()
			_, err := ImportJSON(db, []byte(data), t0)
			var fe ImportFormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "json", fe.Kind)
			assert.Equal(t, Export(before, t0), Export(db, t0))
		})
	}
}

func TestImportCSV_HeaderAndTags(t *testing.T) {
	db := baseDB()
	res, err := ImportCSV(db, strings.NewReader("title,prompt,tags\n\"Hi\",\"Say hi\",greeting\n"), t0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.PromptsAdded)

	p := db.Prompts[len(db.Prompts)-1]
	assert.Equal(t, "Hi", p.Title)
	assert.Equal(t, "Say hi", p.Prompt)
	assert.Equal(t, []string{"greeting"}, p.Tags)
	assert.Equal(t, model.ProjectGeneral, p.ProjectID)
	assert.Equal(t, t0.UnixMilli(), p.CreatedAt)
}

func TestImportCSV_ProjectsAndSkippedRows(t *testing.T) {
	db := baseDB()
	input := strings.Join([]string{
		"Title,Content,Tags,Project",
		`"Quoted, title","body with ""quotes""","a;b, c",Research`,
		`Empty body,,x,Research`,
		`,no title,,`,
		`Blog one,blog text,,blogs`,
		`Again,more,,research`,
	}, "\n")

	res, err := ImportCSV(db, strings.NewReader(input), t0)
	require.NoError(t, err)
	assert.Equal(t, 3, res.PromptsAdded)
	assert.Equal(t, 2, res.RowsSkipped)
	assert.Equal(t, 1, res.ProjectsAdded)
	assert.Equal(t, []string{"Research"}, res.CreatedProject)

	research, ok := db.FindProjectByName("research")
	require.True(t, ok)
	first := db.Prompts[2]
	assert.Equal(t, "Quoted, title", first.Title)
	assert.Equal(t, `body with "quotes"`, first.Prompt)
	assert.Equal(t, []string{"a", "b", "c"}, first.Tags)
	assert.Equal(t, research.ID, first.ProjectID)
	assert.Equal(t, "blogs", db.Prompts[3].ProjectID)
	assert.Equal(t, research.ID, db.Prompts[4].ProjectID)
}

func TestImportCSV_HeaderColumnsAreClaimedOnce(t *testing.T) {
	cases := map[string]string{
		"substring title, exact body": "prompt_title,body\nGreeting,Say hello\n",
		"exact names win":             "prompt text,title,prompt\nignored,Greeting,Say hello\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			db := baseDB()
			res, err := ImportCSV(db, strings.NewReader(input), t0)
			require.NoError(t, err)
			assert.Equal(t, 1, res.PromptsAdded)
			p := db.Prompts[len(db.Prompts)-1]
			assert.Equal(t, "Greeting", p.Title)
			assert.Equal(t, "Say hello", p.Prompt)
		})
	}
}

func TestImportCSV_BadHeader(t *testing.T) {
	for _, input := range []string{"", "name,body\nx,y\n", "title,tags\nx,y\n"} {
		db := baseDB()
		_, err := ImportCSV(db, strings.NewReader(input), t0)
		var fe ImportFormatError
		require.ErrorAs(t, err, &fe, "input %q", input)
		assert.Len(t, db.Prompts, 2)
	}
}

func TestSplitText(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		want  []string
		split bool
	}{
		{"dashes", "One\nfirst body\n---\nTwo\nsecond body", []string{"One\nfirst body", "Two\nsecond body"}, true},
		{"equals with padding", "A\n  ===  \nB", []string{"A", "B"}, true},
		{"blank run", "A\nbody\n\n\nB\nbody", []string{"A\nbody", "B\nbody"}, true},
		{"single blank line is not a separator", "A\n\nstill A", []string{"A\n\nstill A"}, false},
		{"crlf", "A\r\n---\r\nB", []string{"A", "B"}, true},
		{"dashes inside a line", "a --- b", []string{"a --- b"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, split := SplitText(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.split, split)
		})
	}
}

func TestImportText(t *testing.T) {
	db := baseDB()
	res, err := ImportText(db, "Summarize\nSummarize this article\n---\nJust a title\n", t0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.PromptsAdded)
	assert.Equal(t, "Summarize", db.Prompts[2].Title)
	assert.Equal(t, "Summarize this article", db.Prompts[2].Prompt)
	assert.Equal(t, "Just a title", db.Prompts[3].Prompt)

	res, err = ImportText(db, "  one block of text\nwith two lines  ", t0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.PromptsAdded)
	last := db.Prompts[len(db.Prompts)-1]
	assert.Equal(t, DefaultTextTitle, last.Title)
	assert.Equal(t, "one block of text\nwith two lines", last.Prompt)
	assert.Equal(t, model.ProjectGeneral, last.ProjectID)

	var fe ImportFormatError
	_, err = ImportText(db, " \n\t", t0)
	assert.ErrorAs(t, err, &fe)
	_, err = ImportText(db, "---\n===", t0)
	assert.ErrorAs(t, err, &fe)
}
