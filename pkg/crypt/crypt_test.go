package crypt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/crypt"
)

func TestSealOpenJSON(t *testing.T) {
	box, err := crypt.New("secret")
	require.NoError(t, err)

	enc, err := box.SealJSON(map[string]string{"access_token": "abc"})
	require.NoError(t, err)
	assert.NotContains(t, enc, "abc")

	var out map[string]string
	require.NoError(t, box.OpenJSON(enc, &out))
	assert.Equal(t, "abc", out["access_token"])
}

func TestWrongKeyFails(t *testing.T) {
	a, _ := crypt.New("one")
	b, _ := crypt.New("two")

	enc, err := a.Seal([]byte("payload"))
	require.NoError(t, err)

	_, err = b.Open(enc)
	assert.ErrorIs(t, err, crypt.ErrDecrypt)
}

func TestGarbageFails(t *testing.T) {
	box, _ := crypt.New("k")
	_, err := box.Open("not base64!!")
	assert.ErrorIs(t, err, crypt.ErrDecrypt)
	_, err = box.Open("AAAA")
	assert.ErrorIs(t, err, crypt.ErrDecrypt)
}

func TestEmptySecret(t *testing.T) {
	_, err := crypt.New("")
	assert.Error(t, err)
}
