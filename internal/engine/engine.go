package engine

import (
	"errors"
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/DoyleJ11/quiz-buzzer-backend/internal/questions"
)

var ErrNotHost = errors.New("only the host can do that")
var ErrNotPlayer = errors.New("log in as a player first")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrBlankName = errors.New("name must not be blank")
var ErrNoIdentity = errors.New("claim a name first")
var ErrNotStarted = errors.New("game has not started")
var ErrWrongPlayMode = errors.New("not available in this play mode")
var ErrBuzzersClosed = errors.New("buzzers are closed")
var ErrNoQuestion = errors.New("no question is live")
var ErrAlreadyBuzzed = errors.New("already buzzed this round")
var ErrBlankAnswer = errors.New("answer must not be blank")
var ErrModeNotChosen = errors.New("choose a game mode first")
var ErrInvalidMode = errors.New("unknown game mode")
var ErrInvalidTarget = errors.New("target score must be a whole number between 10 and 100")
var ErrInvalidPlayMode = errors.New("unknown play mode")
var ErrQueueEmpty = errors.New("nobody has buzzed")
var ErrNoPendingAnswer = errors.New("no pending answer for that player")
var ErrUnsupportedCommand = errors.New("unsupported command")

const (
	MinTargetScore = 10
	MaxTargetScore = 100
)

// ConnID is the server-assigned id of one live transport session.
type ConnID string

type Role string

const (
	RoleNone   Role = ""
	RoleHost   Role = "host"
	RolePlayer Role = "player"
)

type Mode string

const (
	ModeUnset    Mode = ""
	ModeInfinite Mode = "infinite"
	ModeFirstTo  Mode = "first_to"
)

type PlayMode string

const (
	PlayModeUnset  PlayMode = ""
	PlayModeBuzzer PlayMode = "buzzer"
	PlayModeType   PlayMode = "type"
)

type Player struct {
	Name  string
	Score int
}

type Win struct {
	Name  string
	Score int
}

type Session struct {
	Mode        Mode
	TargetScore int
	PlayMode    PlayMode
	Started     bool
	BuzzersOpen bool
	RoundID     int
	LastWin     *Win

	Questions []questions.Question
	Order     *QuestionOrder
	Queue     *BuzzerQueue
	Answers   *AnswerBoard
	Names     *Registry
	Players   map[ConnID]*Player
	Roles     map[ConnID]Role
}

type CommandType string

const (
	CmdLogin         CommandType = "login"
	CmdClaimName     CommandType = "claimName"
	CmdBuzz          CommandType = "buzz"
	CmdSubmitAnswer  CommandType = "submitAnswer"
	CmdAdvance       CommandType = "advance"
	CmdRuleCorrect   CommandType = "ruleCorrect"
	CmdRuleIncorrect CommandType = "ruleIncorrect"
	CmdJudgeAnswer   CommandType = "judgeAnswer"
	CmdResetScores   CommandType = "resetScores"
	CmdResetLobby    CommandType = "resetLobby"
	CmdToggleBuzzers CommandType = "toggleBuzzers"
	CmdSetMode       CommandType = "setMode"
	CmdSetPlayMode   CommandType = "setPlayMode"
	CmdDisconnect    CommandType = "disconnect"
)

/*
	CmdLogin        -> EvtLoggedIn
	CmdClaimName    -> [EvtForcedLogout] -> EvtNameClaimed
	CmdAdvance      -> EvtRoundAdvanced
	CmdRuleCorrect  -> [EvtGameWon] -> EvtRoundAdvanced
	CmdJudgeAnswer  -> [EvtGameWon -> EvtRoundAdvanced]
	CmdSetMode      -> EvtRoundAdvanced
	CmdResetLobby   -> EvtLobbyReset
*/

// Command is one inbound client event, already tagged with its connection.
// Role is only read by CmdLogin and is set by the transport after it has
// checked credentials.
type Command struct {
	Type        CommandType
	Conn        ConnID
	Role        Role
	Name        string
	Text        string
	Target      ConnID
	Correct     bool
	Open        bool
	Mode        Mode
	TargetScore float64
	PlayMode    PlayMode
}

type EventType string

const (
	EvtLoggedIn      EventType = "LoggedIn"
	EvtNameClaimed   EventType = "NameClaimed"
	EvtForcedLogout  EventType = "ForcedLogout"
	EvtRoundAdvanced EventType = "RoundAdvanced"
	EvtGameWon       EventType = "GameWon"
	EvtLobbyReset    EventType = "LobbyReset"
)

type Event struct {
	Type    EventType
	Conn    ConnID
	Role    Role
	Name    string
	Score   int
	Target  int
	RoundID int
	Reason  string
}

// EventName lets events travel on the event bus.
func (e Event) EventName() string { return string(e.Type) }

const ReasonNameTaken = "Your name was claimed from another connection."

// Apply runs cmd against the session. A returned error means nothing changed.
func (s *Session) Apply(cmd Command) ([]Event, error) {
	prevWin := s.LastWin
	s.LastWin = nil
	events, err := s.apply(cmd)
	if err != nil {
		s.LastWin = prevWin
		return nil, err
	}
	return events, nil
}

func (s *Session) apply(cmd Command) ([]Event, error) {
	switch cmd.Type {
	case CmdLogin:
		return s.login(cmd.Conn, cmd.Role)

	case CmdDisconnect:
		s.disconnect(cmd.Conn)
		return nil, nil

	case CmdClaimName:
		return s.claimName(cmd.Conn, cmd.Name)

	case CmdBuzz:
		return nil, s.buzz(cmd.Conn)

	case CmdSubmitAnswer:
		return nil, s.submitAnswer(cmd.Conn, cmd.Text)
	}

	// everything below is host-only
	if !isHostCommand(cmd.Type) {
		return nil, ErrUnsupportedCommand
	}
	if s.Roles[cmd.Conn] != RoleHost {
		return nil, ErrNotHost
	}

	switch cmd.Type {
	case CmdSetMode:
		return s.setMode(cmd.Mode, cmd.TargetScore)

	case CmdSetPlayMode:
		if s.Mode == ModeUnset {
			return nil, ErrModeNotChosen
		}
		if cmd.PlayMode != PlayModeBuzzer && cmd.PlayMode != PlayModeType {
			return nil, ErrInvalidPlayMode
		}
		s.PlayMode = cmd.PlayMode
		s.Started = true
		s.clearRound()
		return nil, nil

	case CmdAdvance:
		if !s.Started {
			return nil, ErrNotStarted
		}
		return []Event{s.advance()}, nil

	case CmdToggleBuzzers:
		if s.PlayMode != PlayModeBuzzer {
			return nil, ErrWrongPlayMode
		}
		s.BuzzersOpen = cmd.Open
		return nil, nil

	case CmdRuleCorrect:
		if s.PlayMode != PlayModeBuzzer {
			return nil, ErrWrongPlayMode
		}
		head, ok := s.Queue.DequeueHead()
		if !ok {
			return nil, ErrQueueEmpty
		}
		events := s.award(head)
		return append(events, s.advance()), nil

	case CmdRuleIncorrect:
		if s.PlayMode != PlayModeBuzzer {
			return nil, ErrWrongPlayMode
		}
		if _, ok := s.Queue.DequeueHead(); !ok {
			return nil, ErrQueueEmpty
		}
		return nil, nil

	case CmdJudgeAnswer:
		if s.PlayMode != PlayModeType {
			return nil, ErrWrongPlayMode
		}
		if _, ok := s.Answers.Take(cmd.Target); !ok {
			return nil, ErrNoPendingAnswer
		}
		if !cmd.Correct {
			return nil, nil
		}
		events := s.award(cmd.Target)
		if ContainsEvent(events, EvtGameWon) {
			events = append(events, s.advance())
		}
		return events, nil

	case CmdResetScores:
		s.zeroScores()
		return nil, nil

	case CmdResetLobby:
		s.resetLobby()
		return []Event{{Type: EvtLobbyReset, RoundID: s.RoundID}}, nil

	default:
		return nil, ErrUnsupportedCommand
	}
}

func (s *Session) login(conn ConnID, role Role) ([]Event, error) {
	if role != RoleHost && role != RolePlayer {
		return nil, ErrInvalidCredentials
	}
	if role == RoleHost && s.Roles[conn] != RoleHost {
		// a host does not play; drop whatever this connection held as a player
		s.dropPlayer(conn)
	}
	s.Roles[conn] = role
	return []Event{{Type: EvtLoggedIn, Conn: conn, Role: role}}, nil
}

func (s *Session) claimName(conn ConnID, raw string) ([]Event, error) {
	if s.Roles[conn] != RolePlayer {
		return nil, ErrNotPlayer
	}
	name := NormalizeName(raw)
	if name == "" {
		return nil, ErrBlankName
	}

	var events []Event
	score := 0
	if p, ok := s.Players[conn]; ok {
		score = p.Score
	}

	if evicted, ok := s.Names.Claim(conn, name); ok {
		if old, had := s.Players[evicted]; had {
			score = old.Score
		}
		s.dropPlayer(evicted)
		delete(s.Roles, evicted)
		events = append(events, Event{Type: EvtForcedLogout, Conn: evicted, Name: name, Reason: ReasonNameTaken})
	}

	s.Players[conn] = &Player{Name: name, Score: score}
	return append(events, Event{Type: EvtNameClaimed, Conn: conn, Name: name}), nil
}

func (s *Session) buzz(conn ConnID) error {
	if err := s.checkPlayable(conn, PlayModeBuzzer); err != nil {
		return err
	}
	if !s.BuzzersOpen {
		return ErrBuzzersClosed
	}
	if !s.Queue.Enqueue(conn) {
		return ErrAlreadyBuzzed
	}
	return nil
}

func (s *Session) submitAnswer(conn ConnID, raw string) error {
	if err := s.checkPlayable(conn, PlayModeType); err != nil {
		return err
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return ErrBlankAnswer
	}
	s.Answers.Submit(conn, text)
	return nil
}

// checkPlayable holds the admission rules shared by buzzing and typing.
func (s *Session) checkPlayable(conn ConnID, pm PlayMode) error {
	if _, ok := s.Players[conn]; !ok {
		return ErrNoIdentity
	}
	if !s.Started {
		return ErrNotStarted
	}
	if s.PlayMode != pm {
		return ErrWrongPlayMode
	}
	if _, ok := s.CurrentQuestion(); !ok {
		return ErrNoQuestion
	}
	return nil
}

func (s *Session) setMode(mode Mode, target float64) ([]Event, error) {
	switch mode {
	case ModeInfinite:
		s.TargetScore = 0
	case ModeFirstTo:
		if target != math.Trunc(target) || target < MinTargetScore || target > MaxTargetScore {
			return nil, ErrInvalidTarget
		}
		s.TargetScore = int(target)
	default:
		return nil, ErrInvalidMode
	}
	s.Mode = mode
	s.zeroScores()
	s.Order.Reshuffle()
	s.Started = false
	s.PlayMode = PlayModeUnset
	s.clearRound()
	s.RoundID++
	return []Event{{Type: EvtRoundAdvanced, RoundID: s.RoundID}}, nil
}

// award gives conn a point and settles a first_to win.
func (s *Session) award(conn ConnID) []Event {
	p, ok := s.Players[conn]
	if !ok {
		return nil
	}
	p.Score++
	if s.Mode != ModeFirstTo || p.Score < s.TargetScore {
		return nil
	}
	win := Win{Name: p.Name, Score: p.Score}
	s.zeroScores()
	s.LastWin = &win
	return []Event{{Type: EvtGameWon, Conn: conn, Name: win.Name, Score: win.Score, Target: s.TargetScore}}
}

func (s *Session) advance() Event {
	s.Order.Advance()
	s.clearRound()
	s.RoundID++
	return Event{Type: EvtRoundAdvanced, RoundID: s.RoundID}
}

func (s *Session) clearRound() {
	s.Queue.Clear()
	s.Answers.Clear()
	s.BuzzersOpen = false
}

func (s *Session) zeroScores() {
	for _, p := range s.Players {
		p.Score = 0
	}
}

func (s *Session) resetLobby() {
	s.Mode = ModeUnset
	s.TargetScore = 0
	s.PlayMode = PlayModeUnset
	s.Started = false
	s.clearRound()
	s.Order.Reshuffle()
	s.Names.Reset()
	clear(s.Players)
	clear(s.Roles)
	s.RoundID++
}

// disconnect is idempotent: an evicted connection is cleaned up twice.
func (s *Session) disconnect(conn ConnID) {
	s.dropPlayer(conn)
	delete(s.Roles, conn)
}

func (s *Session) dropPlayer(conn ConnID) {
	s.Queue.Remove(conn)
	s.Answers.Take(conn)
	s.Names.Release(conn)
	delete(s.Players, conn)
}

func isHostCommand(t CommandType) bool {
	switch t {
	case CmdSetMode, CmdSetPlayMode, CmdAdvance, CmdToggleBuzzers, CmdRuleCorrect,
		CmdRuleIncorrect, CmdJudgeAnswer, CmdResetScores, CmdResetLobby:
		return true
	}
	return false
}

// NormalizeName trims and NFC-normalizes a display name so visually equal
// names collide.
func NormalizeName(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}
