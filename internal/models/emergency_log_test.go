package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDangerLevel(t *testing.T) {
	cases := []struct {
		in   string
		want DangerLevel
	}{
		{"HIGH", DangerHigh},
		{"high", DangerHigh},
		{" Medium ", DangerMedium},
		{"LOW", DangerLow},
		{"low", DangerLow},
		{"", DangerMedium},
		{"CRITICAL", DangerMedium},
		{"???", DangerMedium},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseDangerLevel(tc.in), "input %q", tc.in)
	}
}

func TestSentContactsRoundTrip(t *testing.T) {
	l := &EmergencyLog{}
	contacts := []SentContact{
		{Name: "Mom", Phone: "010-1111-2222"},
		{Name: "Dad", Phone: "010-3333-4444"},
	}
	assert.NoError(t, l.SetSentContacts(contacts))
	assert.Equal(t, contacts, l.SentContactList())
}

func TestSentContactListEmpty(t *testing.T) {
	l := &EmergencyLog{}
	assert.Empty(t, l.SentContactList())
}
