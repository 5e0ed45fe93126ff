package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRule(t *testing.T) {
	cases := map[string]Rule{
		"5/minute":    {Limit: 5, Window: time.Minute},
		"10/hour":     {Limit: 10, Window: time.Hour},
		"3/hours":     {Limit: 3, Window: time.Hour},
		" 100 / min ": {Limit: 100, Window: time.Minute},
		"1/s":         {Limit: 1, Window: time.Second},
		"50/day":      {Limit: 50, Window: 24 * time.Hour},
		"30/90s":      {Limit: 30, Window: 90 * time.Second},
		"2/secs":      {Limit: 2, Window: time.Second},
		"4/minutes":   {Limit: 4, Window: time.Minute},
		"1/1500ms":    {Limit: 1, Window: 1500 * time.Millisecond},
	}
	for input, want := range cases {
		got, err := ParseRule(input)
		require.NoErrorf(t, err, "ParseRule(%q)", input)
		assert.Equalf(t, want, got, "ParseRule(%q)", input)
	}
}

func TestParseRuleRejectsInvalid(t *testing.T) {
	for _, input := range []string{"", "5", "0/minute", "-1/minute", "x/minute", "5/fortnight", "5/-1s", "1/ms", "1/hs"} {
		_, err := ParseRule(input)
		assert.Errorf(t, err, "ParseRule(%q) should fail", input)
	}
}

func TestDefaultRulesCoverEveryClass(t *testing.T) {
	rules := DefaultRules()
	for _, class := range Classes() {
		rule, ok := rules[class]
		require.Truef(t, ok, "missing rule for %s", class)
		assert.True(t, rule.valid())
	}
	assert.Less(t, rules[AuthLogin].Limit, rules[APIDefault].Limit)
}
