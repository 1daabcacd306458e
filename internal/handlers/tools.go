package handlers

import (
	"errors"
	"net/http"

	"pocketapps/internal/calc"
	"pocketapps/internal/password"
	"pocketapps/internal/rps"
)

type calcRequest struct {
	A  string `json:"a"`
	B  string `json:"b"`
	Op string `json:"op"`
}

type calcResponse struct {
	calc.Result
	Display string `json:"display"`
}

// Calculate evaluates a two-operand expression. Operands are sent as text.
func (h *Handlers) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calcRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	result, err := calc.Evaluate(req.A, req.B, req.Op)
	switch {
	case errors.Is(err, calc.ErrInvalidNumber):
		respondError(w, http.StatusBadRequest, "please enter valid numbers")
		return
	case err != nil:
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, calcResponse{Result: result, Display: "Result: " + result.String()})
}

// GeneratePassword returns a new random password. Omitted fields take the defaults.
func (h *Handlers) GeneratePassword(w http.ResponseWriter, r *http.Request) {
	opts := password.DefaultOptions()
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &opts); err != nil {
			respondError(w, http.StatusBadRequest, "invalid json")
			return
		}
	}

	pw, err := password.Generate(opts)
	if err != nil {
		if errors.Is(err, password.ErrInvalidLength) || errors.Is(err, password.ErrNoCharacterClasses) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondServerError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"password": pw, "length": len(pw)})
}

// GameScore returns the current rock-paper-scissors score.
func (h *Handlers) GameScore(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.game.Score())
}

// PlayRound plays one round with the player's choice.
func (h *Handlers) PlayRound(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Choice string `json:"choice"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	choice, err := rps.ParseChoice(req.Choice)
	if err != nil {
		respondError(w, http.StatusBadRequest, rps.ErrInvalidChoice.Error())
		return
	}

	round, score := h.game.Play(choice)
	respondJSON(w, http.StatusOK, map[string]interface{}{"round": round, "score": score})
}

// ResetGame zeroes the score.
func (h *Handlers) ResetGame(w http.ResponseWriter, r *http.Request) {
	h.game.Reset()
	respondJSON(w, http.StatusOK, h.game.Score())
}
