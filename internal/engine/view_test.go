package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_HostSeesEverything(t *testing.T) {
	s := newTestSession(t, 3)
	join(t, s, "a", "Alice")
	join(t, s, "b", "Bob")
	mustApply(t, s, Command{Type: CmdSetMode, Conn: host, Mode: ModeInfinite})
	mustApply(t, s, Command{Type: CmdSetPlayMode, Conn: host, PlayMode: PlayModeType})
	mustApply(t, s, Command{Type: CmdSubmitAnswer, Conn: "b", Text: "Lima"})
	mustApply(t, s, Command{Type: CmdSubmitAnswer, Conn: "a", Text: "Quito"})
	s.Players["a"].Score = 2

	p := Project(s)
	q, _ := s.CurrentQuestion()

	require.NotNil(t, p.Host.Question)
	assert.Equal(t, RoleHost, p.Host.Role)
	assert.Equal(t, q.Answer, p.Host.Question.Answer)
	assert.Equal(t, "cat", p.Host.Question.Category)
	assert.Equal(t, "easy", p.Host.Question.Difficulty)
	assert.Equal(t, 1, p.Host.Question.Position)
	assert.Equal(t, 3, p.Host.Question.Total)
	assert.Equal(t, []HostAnswer{
		{ID: "b", Name: "Bob", Text: "Lima"},
		{ID: "a", Name: "Alice", Text: "Quito"},
	}, p.Host.Answers)
	assert.Equal(t, []ScoreEntry{{Name: "Alice", Score: 2}, {Name: "Bob", Score: 0}}, p.Host.Scores)
	assert.NotContains(t, p.Players, host)
}

func TestProject_PlayerViewHidesSecrets(t *testing.T) {
	s := newTestSession(t, 3)
	join(t, s, "a", "Alice")
	join(t, s, "b", "Bob")
	mustApply(t, s, Command{Type: CmdSetMode, Conn: host, Mode: ModeInfinite})
	mustApply(t, s, Command{Type: CmdSetPlayMode, Conn: host, PlayMode: PlayModeType})
	mustApply(t, s, Command{Type: CmdSubmitAnswer, Conn: "a", Text: "my-secret-guess"})
	mustApply(t, s, Command{Type: CmdSubmitAnswer, Conn: "b", Text: "bobs-guess"})

	p := Project(s)
	q, _ := s.CurrentQuestion()
	require.Len(t, p.Players, 2)

	alice := p.Players["a"]
	require.NotNil(t, alice.Question)
	assert.Equal(t, q.Text, alice.Question.Text)
	assert.Equal(t, "Alice", alice.Me.Name)
	assert.Equal(t, "my-secret-guess", alice.Me.PendingAnswer)

	raw, err := json.Marshal(alice)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), q.Answer)
	assert.NotContains(t, string(raw), "bobs-guess")
	assert.NotContains(t, string(raw), `"category"`)
	assert.NotContains(t, string(raw), `"difficulty"`)
}

func TestProject_PlayerQuestionHiddenUntilStarted(t *testing.T) {
	s := newTestSession(t, 2)
	join(t, s, "a", "Alice")

	p := Project(s)
	assert.Nil(t, p.Players["a"].Question)
	assert.NotNil(t, p.Host.Question, "the host can preview the first question")
}

func TestProject_QueueAndPosition(t *testing.T) {
	s := newTestSession(t, 2)
	join(t, s, "a", "Alice")
	join(t, s, "b", "Bob")
	startBuzzer(t, s, 10)
	mustApply(t, s, Command{Type: CmdBuzz, Conn: "b"})
	mustApply(t, s, Command{Type: CmdBuzz, Conn: "a"})

	p := Project(s)
	assert.Equal(t, []string{"Bob", "Alice"}, p.Host.Queue)
	assert.Equal(t, []string{"Bob", "Alice"}, p.Players["a"].Queue)
	assert.Equal(t, 2, p.Players["a"].Me.QueuePosition)
	assert.Equal(t, 1, p.Players["b"].Me.QueuePosition)
}

func TestProject_DoesNotMutate(t *testing.T) {
	s := newTestSession(t, 2)
	join(t, s, "a", "Alice")
	startBuzzer(t, s, 10)
	mustApply(t, s, Command{Type: CmdBuzz, Conn: "a"})

	first := Project(s)
	second := Project(s)
	assert.Equal(t, first, second)
}
