package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebindDollar(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SELECT 1", "SELECT 1"},
		{"SELECT * FROM t WHERE id = ?", "SELECT * FROM t WHERE id = $1"},
		{"INSERT INTO t (a, b, c) VALUES (?, ?, ?)", "INSERT INTO t (a, b, c) VALUES ($1, $2, $3)"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, rebindDollar(tt.in))
		})
	}
}

func TestPlaceholderQuestionLeavesQueryAlone(t *testing.T) {
	s := &Store{placeholder: Question}
	assert.Equal(t, "SELECT ? , ?", s.q("SELECT ? , ?"))

	s = &Store{placeholder: Dollar}
	assert.Equal(t, "SELECT $1 , $2", s.q("SELECT ? , ?"))
}
