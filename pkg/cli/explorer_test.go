package cli

import (
	"errors"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNoClipboard = errors.New("no clipboard")

type recordingClipboard struct {
	copied []string
	err    error
}

func (c *recordingClipboard) write(s string) error {
	if c.err != nil {
		return c.err
	}

	c.copied = append(c.copied, s)

	return nil
}

func newTestExplorer(initial string, clip *recordingClipboard) *explorerModel {
	return newExplorerModel(initial, true, clip.write, lipgloss.NewRenderer(io.Discard))
}

func typeRunes(t *testing.T, m *explorerModel, s string) *explorerModel {
	t.Helper()

	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})

		var ok bool

		m, ok = next.(*explorerModel)
		require.True(t, ok)
	}

	return m
}

func TestExplorerAnalyzesAsYouType(t *testing.T) {
	t.Parallel()

	clip := &recordingClipboard{}
	m := newTestExplorer("", clip)
	assert.Nil(t, m.report)

	m = typeRunes(t, m, "2025")
	require.NotNil(t, m.report)
	assert.Equal(t, 2025, m.report.Year)
	assert.Equal(t, uint8(0xE9), m.report.TruncatedByte)
	assert.Contains(t, m.View(), "2233")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = next.(*explorerModel)
	require.NotNil(t, m.report)
	assert.Equal(t, 202, m.report.Year)
}

func TestExplorerCopiesProtocolHex(t *testing.T) {
	t.Parallel()

	clip := &recordingClipboard{}
	m := newTestExplorer("2025", clip)

	m = typeRunes(t, m, "c")
	assert.Equal(t, []string{"0x1419"}, clip.copied)
	assert.Equal(t, "2025", m.yearInput.Value(), "copy key is not typed into the input")
	assert.Contains(t, m.View(), "0x1419 copied to clipboard!")

	m = typeRunes(t, m, "1")
	assert.Empty(t, m.copyMessage)
}

func TestExplorerCopyFailures(t *testing.T) {
	t.Parallel()

	clip := &recordingClipboard{err: errNoClipboard}
	m := newTestExplorer("2025", clip)
	m = typeRunes(t, m, "c")
	assert.Equal(t, "Failed to copy to clipboard", m.copyMessage)

	m = newTestExplorer("25600", &recordingClipboard{})
	m = typeRunes(t, m, "c")
	assert.Contains(t, m.copyMessage, "Failed to copy")

	noCopy := newExplorerModel("2025", false, clip.write, lipgloss.NewRenderer(io.Discard))
	noCopy = typeRunes(t, noCopy, "c")
	assert.Empty(t, noCopy.copyMessage)
	assert.NotContains(t, noCopy.View(), "copy protocol hex")
}

func TestExplorerInvalidYear(t *testing.T) {
	t.Parallel()

	m := newTestExplorer("", &recordingClipboard{})
	m = typeRunes(t, m, "20x")
	assert.Nil(t, m.report)
	require.ErrorIs(t, m.err, errInvalidYear)
	assert.Contains(t, m.View(), "Error:")
}

func TestExplorerQuits(t *testing.T) {
	t.Parallel()

	m := newTestExplorer("", &recordingClipboard{})

	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		_, cmd := m.Update(tea.KeyMsg{Type: key})
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	}
}

func TestClipboardAvailable(t *testing.T) {
	t.Parallel()

	const contents = "user data"
	reads := 0

	read := func() (string, error) {
		reads++

		return contents, nil
	}

	assert.True(t, clipboardAvailable(read))
	assert.Equal(t, 1, reads)

	assert.False(t, clipboardAvailable(func() (string, error) { return "", errNoClipboard }))
}
