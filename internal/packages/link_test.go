package packages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGiftURL(t *testing.T) {
	cases := []struct {
		name   string
		url    string
		giftID string
		ok     bool
	}{
		{"lien valide", "https://yb.tencent.com/fes/red/claim?red_packet_id=abc123", "abc123", true},
		{"paramètres supplémentaires", "https://yb.tencent.com/fes/red/claim?red_packet_id=abc123&from=share", "abc123", true},
		{"identifiant ailleurs dans la query", "https://yb.tencent.com/fes/red/claim?from=share&red_packet_id=xyz", "xyz", true},
		{"mauvais domaine", "https://evil.example.com/fes/red/claim?red_packet_id=abc", "", false},
		{"http non sécurisé", "http://yb.tencent.com/fes/red/claim?red_packet_id=abc", "", false},
		{"mauvais chemin", "https://yb.tencent.com/fes/red/other?red_packet_id=abc", "", false},
		{"identifiant absent", "https://yb.tencent.com/fes/red/claim?from=share", "", false},
		{"vide", "", "", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			giftID, ok := ParseGiftURL(c.url)
			assert.Equal(t, c.ok, ok)
			assert.Equal(t, c.giftID, giftID)
		})
	}
}
