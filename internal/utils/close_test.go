package utils

import (
	"errors"
	"testing"

	"github.com/MrSnakeDoc/vault/internal/logger"
)

type closer struct {
	err    error
	closed int
}

func (c *closer) Close() error {
	c.closed++
	return c.err
}

func TestClose(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"clean", nil},
		{"failing", errors.New("busy")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &closer{err: tt.err}
			Close(c)
			CloseLogged(c, logger.NewNop(), "test")
			if c.closed != 2 {
				t.Errorf("closed %d times, want 2", c.closed)
			}
		})
	}
}
