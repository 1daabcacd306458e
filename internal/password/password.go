// Package password generates random passwords from selectable character classes.
package password

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

const (
	MinLength     = 8
	MaxLength     = 32
	DefaultLength = 12

	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Lowercase = "abcdefghijklmnopqrstuvwxyz"
	Digits    = "0123456789"
	Symbols   = "!@#$%^&*()-_=+[]{};:,.<>?/~"
)

var (
	ErrNoCharacterClasses = errors.New("please select at least one character type")
	ErrInvalidLength      = fmt.Errorf("length must be between %d and %d", MinLength, MaxLength)
)

// Options selects the password length and the character classes to draw from.
type Options struct {
	Length  int  `json:"length"`
	Upper   bool `json:"upper"`
	Lower   bool `json:"lower"`
	Digits  bool `json:"digits"`
	Symbols bool `json:"symbols"`
}

// DefaultOptions enables every class at the default length.
func DefaultOptions() Options {
	return Options{Length: DefaultLength, Upper: true, Lower: true, Digits: true, Symbols: true}
}

func (o Options) classes() []string {
	var classes []string
	if o.Upper {
		classes = append(classes, Uppercase)
	}
	if o.Lower {
		classes = append(classes, Lowercase)
	}
	if o.Digits {
		classes = append(classes, Digits)
	}
	if o.Symbols {
		classes = append(classes, Symbols)
	}
	return classes
}

// Validate reports whether o can produce a password.
func (o Options) Validate() error {
	if o.Length < MinLength || o.Length > MaxLength {
		return ErrInvalidLength
	}
	if len(o.classes()) == 0 {
		return ErrNoCharacterClasses
	}
	return nil
}

// Generate returns a password drawn from crypto/rand.
func Generate(opts Options) (string, error) {
	return GenerateFrom(rand.Reader, opts)
}

// GenerateFrom returns a password using r as the source of randomness.
// The result holds at least one character of every selected class.
func GenerateFrom(r io.Reader, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	classes := opts.classes()
	var pool string
	for _, c := range classes {
		pool += c
	}

	out := make([]byte, 0, opts.Length)
	for _, c := range classes {
		b, err := pick(r, c)
		if err != nil {
			return "", err
		}
		out = append(out, b)
	}
	for len(out) < opts.Length {
		b, err := pick(r, pool)
		if err != nil {
			return "", err
		}
		out = append(out, b)
	}

	// Fisher-Yates, so the guaranteed characters are not always first.
	for i := len(out) - 1; i > 0; i-- {
		j, err := randIndex(r, i+1)
		if err != nil {
			return "", err
		}
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

func pick(r io.Reader, set string) (byte, error) {
	i, err := randIndex(r, len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randIndex(r io.Reader, n int) (int, error) {
	v, err := rand.Int(r, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to read random data: %w", err)
	}
	return int(v.Int64()), nil
}
