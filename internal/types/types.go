package types

import "github.com/DoyleJ11/quiz-buzzer-backend/internal/engine"

// Client -> Server. Any message may carry ackId; the server answers with
// an "ack" carrying the same id.
//
//	login         username, password
//	claimName     name
//	buzz          -
//	submitAnswer  text
//	advance, ruleCorrect, ruleIncorrect, resetScores, resetLobby  (host)
//	judgeAnswer   target, correct  (host)
//	toggleBuzzers open  (host)
//	setMode       mode, targetScore  (host)
//	setPlayMode   playMode  (host)
type ClientMessage struct {
	Type        string  `json:"type"`
	AckID       string  `json:"ackId,omitempty"`
	Username    string  `json:"username,omitempty"`
	Password    string  `json:"password,omitempty"`
	Name        string  `json:"name,omitempty"`
	Text        string  `json:"text,omitempty"`
	Target      string  `json:"target,omitempty"`
	Correct     bool    `json:"correct,omitempty"`
	Open        bool    `json:"open,omitempty"`
	Mode        string  `json:"mode,omitempty"`
	TargetScore float64 `json:"targetScore,omitempty"`
	PlayMode    string  `json:"playMode,omitempty"`
}

// Inbound-only message types the transport handles before ToCommand.
const MsgLogin = "login"

const (
	MsgLoginResult  = "loginResult"
	MsgNameClaimed  = "nameClaimed"
	MsgForcedLogout = "forcedLogout"
	MsgState        = "state"
	MsgLobbyReset   = "lobbyReset"
	MsgAck          = "ack"
	MsgError        = "error"
)

// Server -> Client. State holds an engine.HostView or engine.PlayerView.
type ServerMessage struct {
	Type           string      `json:"type"`
	Version        int         `json:"version,omitempty"`
	State          any         `json:"state,omitempty"`
	AckID          string      `json:"ackId,omitempty"`
	OK             *bool       `json:"ok,omitempty"`
	Role           engine.Role `json:"role,omitempty"`
	QuestionActive *bool       `json:"questionActive,omitempty"`
	Name           string      `json:"name,omitempty"`
	Reason         string      `json:"reason,omitempty"`
	Message        string      `json:"message,omitempty"`
}

// ToCommand maps a decoded client message onto an engine command. Login is
// not mapped here: credentials are checked by the transport first.
func ToCommand(conn engine.ConnID, m ClientMessage) (engine.Command, bool) {
	cmd := engine.Command{Type: engine.CommandType(m.Type), Conn: conn}

	switch cmd.Type {
	case engine.CmdClaimName:
		cmd.Name = m.Name
	case engine.CmdSubmitAnswer:
		cmd.Text = m.Text
	case engine.CmdJudgeAnswer:
		cmd.Target = engine.ConnID(m.Target)
		cmd.Correct = m.Correct
	case engine.CmdToggleBuzzers:
		cmd.Open = m.Open
	case engine.CmdSetMode:
		cmd.Mode = engine.Mode(m.Mode)
		cmd.TargetScore = m.TargetScore
	case engine.CmdSetPlayMode:
		cmd.PlayMode = engine.PlayMode(m.PlayMode)
	case engine.CmdBuzz, engine.CmdAdvance, engine.CmdRuleCorrect, engine.CmdRuleIncorrect,
		engine.CmdResetScores, engine.CmdResetLobby:
	default:
		return engine.Command{}, false
	}
	return cmd, true
}

func Bool(b bool) *bool { return &b }
