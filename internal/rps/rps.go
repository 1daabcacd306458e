// Package rps plays rock-paper-scissors against the computer.
package rps

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

type Choice string

const (
	Rock     Choice = "Rock"
	Paper    Choice = "Paper"
	Scissors Choice = "Scissors"
)

// Choices lists the moves in display order.
var Choices = []Choice{Rock, Paper, Scissors}

var ErrInvalidChoice = errors.New("choice must be Rock, Paper, or Scissors")

// ParseChoice accepts a move name in any case.
func ParseChoice(s string) (Choice, error) {
	for _, c := range Choices {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrInvalidChoice)
}

// beats maps each choice to the one it defeats.
var beats = map[Choice]Choice{
	Rock:     Scissors,
	Paper:    Rock,
	Scissors: Paper,
}

type Outcome string

const (
	Tie  Outcome = "tie"
	Win  Outcome = "win"
	Lose Outcome = "lose"
)

// Message is the line shown to the player.
func (o Outcome) Message() string {
	switch o {
	case Win:
		return "You Win!"
	case Lose:
		return "Computer Wins!"
	default:
		return "It's a Tie!"
	}
}

// Judge decides a round from the player's point of view.
func Judge(player, computer Choice) Outcome {
	switch {
	case player == computer:
		return Tie
	case beats[player] == computer:
		return Win
	default:
		return Lose
	}
}

// Round is the result of one play.
type Round struct {
	Player   Choice  `json:"player"`
	Computer Choice  `json:"computer"`
	Outcome  Outcome `json:"outcome"`
	Message  string  `json:"message"`
}

// Score is the running tally.
type Score struct {
	Player   int `json:"player"`
	Computer int `json:"computer"`
}

// Scoreboard keeps the score across rounds. It is safe for concurrent use.
type Scoreboard struct {
	mu     sync.Mutex
	score  Score
	choose func() Choice
}

// NewScoreboard returns a scoreboard whose computer moves come from choose.
// A nil choose picks uniformly at random.
func NewScoreboard(choose func() Choice) *Scoreboard {
	if choose == nil {
		choose = func() Choice { return Choices[rand.IntN(len(Choices))] }
	}
	return &Scoreboard{choose: choose}
}

// Play runs one round and updates the score.
func (s *Scoreboard) Play(player Choice) (Round, Score) {
	computer := s.choose()
	outcome := Judge(player, computer)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch outcome {
	case Win:
		s.score.Player++
	case Lose:
		s.score.Computer++
	}

	return Round{Player: player, Computer: computer, Outcome: outcome, Message: outcome.Message()}, s.score
}

// Score returns the current tally.
func (s *Scoreboard) Score() Score {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Reset zeroes both scores.
func (s *Scoreboard) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.score = Score{}
}
