package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/promptloom/internal/apperr"
	"github.com/starford/promptloom/internal/models"
)

type stubSource struct {
	prompts map[int64]models.Prompt
	saved   []models.CombinationInput
}

func (s *stubSource) GetPrompt(_ context.Context, id int64) (*models.Prompt, error) {
	p, ok := s.prompts[id]
	if !ok {
		return nil, apperr.NotFound("Prompt")
	}
	return &p, nil
}

func (s *stubSource) CreateCombination(_ context.Context, in models.CombinationInput) (*models.Combination, error) {
	s.saved = append(s.saved, in)
	return &models.Combination{ID: 5, Name: in.Name, PromptIDs: in.PromptIDs}, nil
}

func newStub() *stubSource {
	return &stubSource{prompts: map[int64]models.Prompt{
		1: {ID: 1, Title: "A", Content: "alpha"},
		2: {ID: 2, Title: "B", Content: "bravo"},
		3: {ID: 3, Title: "C", Content: "charlie"},
	}}
}

func TestRunCompose_MoveAndPrint(t *testing.T) {
	src := newStub()
	var out, errOut bytes.Buffer

	err := runCompose(context.Background(), src, []int64{1, 2, 3}, [][2]int{{0, 2}, {5, 0}}, "", &out, &errOut)
	require.NoError(t, err)
	assert.Equal(t, "bravo\n\ncharlie\n\nalpha\n", out.String())
	assert.Contains(t, errOut.String(), "move 5:0 ignored")
	assert.Empty(t, src.saved)
}

func TestRunCompose_Save(t *testing.T) {
	src := newStub()
	var out, errOut bytes.Buffer

	err := runCompose(context.Background(), src, []int64{2, 1}, nil, "Pair", &out, &errOut)
	require.NoError(t, err)
	require.Len(t, src.saved, 1)
	assert.Equal(t, []int64{2, 1}, src.saved[0].PromptIDs)
	assert.Contains(t, errOut.String(), `saved combination 5 "Pair"`)
}

func TestRunCompose_UnknownPrompt(t *testing.T) {
	var out, errOut bytes.Buffer
	err := runCompose(context.Background(), newStub(), []int64{9}, nil, "", &out, &errOut)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestParseArgs(t *testing.T) {
	ids, err := parseIDs([]string{"3", "1"})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, ids)

	_, err = parseIDs(nil)
	assert.Error(t, err)
	_, err = parseIDs([]string{"x"})
	assert.Error(t, err)

	mv, err := parseMove("0:2")
	require.NoError(t, err)
	assert.Equal(t, [2]int{0, 2}, mv)

	_, err = parseMove("02")
	assert.Error(t, err)
	_, err = parseMove("a:b")
	assert.Error(t, err)
}
