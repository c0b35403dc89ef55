package rates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgeBand(t *testing.T) {
	tests := []struct {
		age  int
		want string
	}{
		{0, AgeBandChild},
		{14, AgeBandChild},
		{15, "15"},
		{21, "21"},
		{40, "40"},
		{63, "63"},
		{64, AgeBandSenior},
		{90, AgeBandSenior},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AgeBand(tt.age), "age %d", tt.age)
	}
}
