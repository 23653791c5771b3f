package ordernum

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	at := time.Unix(1700000000, 0)
	num := Generate("cs_test_abc12345XYZ", at)
	assert.Equal(t, "ORDER-1700000000-12345XYZ", num)
}

func TestGenerateShortSessionID(t *testing.T) {
	at := time.Unix(1700000000, 0)
	num := Generate("abc", at)
	assert.Equal(t, "ORDER-1700000000-ABC", num)
}

func TestGenerateLowercaseSuffix(t *testing.T) {
	at := time.Unix(1699999999, 0)
	num := Generate("cs_live_deadbeefcafe", at)
	assert.Equal(t, "ORDER-1699999999-BEEFCAFE", num)
}
