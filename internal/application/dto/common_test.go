package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPage(t *testing.T) {
	tests := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{"vacío", PageRequest{}, PageRequest{Limit: 20}},
		{"tope de 100", PageRequest{Limit: 500, Offset: 40}, PageRequest{Limit: 100, Offset: 40}},
		{"negativos", PageRequest{Limit: -1, Offset: -7}, PageRequest{Limit: 20}},
		{"válido", PageRequest{Limit: 50, Offset: 10}, PageRequest{Limit: 50, Offset: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.DefaultPage()
			assert.Equal(t, tt.want, p)
		})
	}
}
