package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelsSpinnerModelKeepsLoadedModels(t *testing.T) {
	m := newModelsSpinnerModel("Fetching models...", nil)
	assert.Contains(t, m.View(), "Fetching models...")

	next, cmd := m.Update(modelsLoadedMsg{models: []string{"mistral", "llama3:8b"}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	loaded := next.(modelsSpinnerModel)
	assert.Equal(t, []string{"mistral", "llama3:8b"}, loaded.models)
	assert.Empty(t, loaded.View())

	_, cmd = loaded.Update(spinner.TickMsg{})
	assert.Nil(t, cmd)
}

func TestLoadModelsWithSpinnerReturnsListing(t *testing.T) {
	var calls int
	list := func(context.Context) []string {
		calls++
		return []string{"mistral:latest"}
	}

	models, err := loadModelsWithSpinner(context.Background(), &bytes.Buffer{}, "Fetching models...", list)
	require.NoError(t, err)
	assert.Equal(t, []string{"mistral:latest"}, models)
	assert.Equal(t, 1, calls)
}
