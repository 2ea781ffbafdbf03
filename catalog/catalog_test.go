package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/talentscout/internal/fakemodel"
	"github.com/tbxark/talentscout/types"
)

func TestQuestionsFor_Known(t *testing.T) {
	qs := QuestionsFor("  PyThOn ")
	require.Len(t, qs, QuestionCount)
	assert.Equal(t, "What are the key differences between lists and tuples in Python?", qs[0])
	assert.True(t, strings.HasPrefix(qs[4], "(Optional)"))
	assert.Contains(t, table, "python")
}

func TestQuestionsFor_TableEntriesHaveFiveQuestions(t *testing.T) {
	for tech, qs := range table {
		assert.Len(t, qs, QuestionCount, tech)
		assert.Equal(t, strings.ToLower(tech), tech)
	}
}

func TestQuestionsFor_ReturnsCopy(t *testing.T) {
	qs := QuestionsFor("go")
	qs[0] = "changed"
	assert.NotEqual(t, "changed", QuestionsFor("go")[0])
}

func TestQuestionsFor_Unknown(t *testing.T) {
	for _, tech := range []string{"Elixir", "Rust", "COBOL 85", "Kotlin Multiplatform"} {
		qs := QuestionsFor(tech)
		require.Len(t, qs, QuestionCount)
		for _, q := range qs {
			assert.Contains(t, q, tech)
		}
		assert.Equal(t, qs, QuestionsFor(tech))
		assert.NotContains(t, table, strings.ToLower(tech))
	}
	assert.Contains(t, QuestionsFor("Elixir")[4], "(Optional) Coding task")
}

func TestBuild(t *testing.T) {
	sets, err := Build(context.Background(), NewStaticSource(), types.Candidate{}, []string{"Python", "Java", "React"})
	require.NoError(t, err)
	require.Len(t, sets, 3)
	total := 0
	for _, s := range sets {
		total += len(s.Questions)
	}
	assert.Equal(t, 15, total)
	assert.Equal(t, "Python", sets[0].Technology)
	assert.Equal(t, "React", sets[2].Technology)
}

type failingSource struct{}

func (failingSource) Questions(ctx context.Context, req *types.QuestionRequest) ([]string, error) {
	return nil, errors.New("unavailable")
}

func TestFailbackSource(t *testing.T) {
	ctx := context.Background()
	src := NewFailbackSource(failingSource{}, NewStaticSource())
	qs, err := src.Questions(ctx, &types.QuestionRequest{Technology: "Go"})
	require.NoError(t, err)
	assert.Equal(t, QuestionsFor("Go"), qs)

	_, err = NewFailbackSource(failingSource{}).Questions(ctx, &types.QuestionRequest{Technology: "Go"})
	assert.ErrorContains(t, err, "all question sources failed")

	_, err = Build(ctx, failingSource{}, types.Candidate{}, []string{"Go"})
	assert.ErrorContains(t, err, `questions for "Go"`)
}

func TestToolBasedSource(t *testing.T) {
	ctx := context.Background()
	cm := &fakemodel.ChatModel{
		ToolName:  generateQuestionsToolName,
		Arguments: `{"questions":["Q1 Rust"," Q2 Rust ","Q3 Rust","Q4 Rust","(Optional) Coding task: Rust"]}`,
	}
	src, err := NewToolBasedSource(cm)
	require.NoError(t, err)

	qs, err := src.Questions(ctx, &types.QuestionRequest{
		Technology: "Rust",
		Candidate:  types.Candidate{YearsExperience: 3, DesiredPosition: "Backend engineer"},
	})
	require.NoError(t, err)
	require.Len(t, qs, QuestionCount)
	assert.Equal(t, "Q2 Rust", qs[1])

	calls := cm.Calls()
	require.Len(t, calls, 1)
	prompt := calls[0][1].Content
	assert.Contains(t, prompt, "# Technology:\nRust")
	assert.Contains(t, prompt, "Backend engineer")
	assert.Contains(t, prompt, "Candidate profile schema JSON")
	assert.Contains(t, calls[0][0].Content, generateQuestionsToolName)
}

func TestToolBasedSource_WrongCountFallsBack(t *testing.T) {
	ctx := context.Background()
	cm := &fakemodel.ChatModel{ToolName: generateQuestionsToolName, Arguments: `{"questions":["only one"]}`}
	llm, err := NewToolBasedSource(cm)
	require.NoError(t, err)

	_, err = llm.Questions(ctx, &types.QuestionRequest{Technology: "Rust"})
	assert.ErrorContains(t, err, "expected 5 questions")

	qs, err := NewFailbackSource(llm, NewStaticSource()).Questions(ctx, &types.QuestionRequest{Technology: "Rust"})
	require.NoError(t, err)
	assert.Equal(t, QuestionsFor("Rust"), qs)
}
