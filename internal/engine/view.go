package engine

import (
	"cmp"
	"slices"
)

type ScoreEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type WinnerView struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// PhaseView is the part of the state both roles see.
type PhaseView struct {
	RoundID     int          `json:"roundId"`
	Mode        Mode         `json:"mode"`
	TargetScore int          `json:"targetScore,omitempty"`
	PlayMode    PlayMode     `json:"playMode"`
	Started     bool         `json:"started"`
	BuzzersOpen bool         `json:"buzzersOpen"`
	Queue       []string     `json:"queue"`
	Scores      []ScoreEntry `json:"scores"`
	LastWinner  *WinnerView  `json:"lastWinner,omitempty"`
}

type HostQuestion struct {
	ID         string `json:"id"`
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Text       string `json:"text"`
	Answer     string `json:"answer"`
	Position   int    `json:"position"`
	Total      int    `json:"total"`
}

type HostAnswer struct {
	ID   ConnID `json:"id"`
	Name string `json:"name"`
	Text string `json:"text"`
}

type HostView struct {
	Role Role `json:"role"`
	PhaseView
	Question *HostQuestion `json:"question,omitempty"`
	Answers  []HostAnswer  `json:"answers"`
}

type PlayerQuestion struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Me struct {
	Name          string `json:"name,omitempty"`
	Score         int    `json:"score"`
	QueuePosition int    `json:"queuePosition,omitempty"`
	PendingAnswer string `json:"pendingAnswer,omitempty"`
}

type PlayerView struct {
	Role Role `json:"role"`
	PhaseView
	Question *PlayerQuestion `json:"question,omitempty"`
	Me       Me              `json:"me"`
}

// Projection holds every view derived from one session state.
type Projection struct {
	Host    HostView
	Players map[ConnID]PlayerView
}

// Project rebuilds all views from scratch. It does not touch the session.
func Project(s *Session) Projection {
	phase := s.phaseView()
	p := Projection{
		Host:    s.hostView(phase),
		Players: map[ConnID]PlayerView{},
	}
	for conn, role := range s.Roles {
		if role == RolePlayer {
			p.Players[conn] = s.playerView(phase, conn)
		}
	}
	return p
}

func (s *Session) HostView() HostView { return s.hostView(s.phaseView()) }

func (s *Session) PlayerView(conn ConnID) PlayerView { return s.playerView(s.phaseView(), conn) }

func (s *Session) phaseView() PhaseView {
	v := PhaseView{
		RoundID:     s.RoundID,
		Mode:        s.Mode,
		TargetScore: s.TargetScore,
		PlayMode:    s.PlayMode,
		Started:     s.Started,
		BuzzersOpen: s.BuzzersOpen,
		Queue:       make([]string, 0, s.Queue.Len()),
		Scores:      make([]ScoreEntry, 0, len(s.Players)),
	}
	for _, conn := range s.Queue.Entries() {
		if p, ok := s.Players[conn]; ok {
			v.Queue = append(v.Queue, p.Name)
		}
	}
	for _, p := range s.Players {
		v.Scores = append(v.Scores, ScoreEntry{Name: p.Name, Score: p.Score})
	}
	slices.SortFunc(v.Scores, func(a, b ScoreEntry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if s.LastWin != nil {
		v.LastWinner = &WinnerView{Name: s.LastWin.Name, Score: s.LastWin.Score}
	}
	return v
}

func (s *Session) hostView(phase PhaseView) HostView {
	v := HostView{Role: RoleHost, PhaseView: phase, Answers: []HostAnswer{}}
	if q, ok := s.CurrentQuestion(); ok {
		v.Question = &HostQuestion{
			ID:         q.ID,
			Category:   q.Category,
			Difficulty: q.Difficulty,
			Text:       q.Text,
			Answer:     q.Answer,
			Position:   s.Order.Position(),
			Total:      s.Order.Len(),
		}
	}
	for _, a := range s.Answers.Entries() {
		name := ""
		if p, ok := s.Players[a.Conn]; ok {
			name = p.Name
		}
		v.Answers = append(v.Answers, HostAnswer{ID: a.Conn, Name: name, Text: a.Text})
	}
	return v
}

func (s *Session) playerView(phase PhaseView, conn ConnID) PlayerView {
	v := PlayerView{Role: RolePlayer, PhaseView: phase}
	// players only see the question once the game is running
	if q, ok := s.CurrentQuestion(); ok && s.Started {
		v.Question = &PlayerQuestion{ID: q.ID, Text: q.Text}
	}
	if p, ok := s.Players[conn]; ok {
		v.Me.Name = p.Name
		v.Me.Score = p.Score
	}
	v.Me.QueuePosition = s.Queue.Position(conn)
	v.Me.PendingAnswer, _ = s.Answers.Get(conn)
	return v
}
