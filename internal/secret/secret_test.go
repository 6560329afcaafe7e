package secret

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore map[string][]byte

func (m mapStore) Set(key string, value []byte) error { m[key] = value; return nil }
func (m mapStore) Get(key string) ([]byte, error)     { return m[key], nil }
func (m mapStore) Delete(key string) error            { delete(m, key); return nil }

func TestEnvStore(t *testing.T) {
	t.Setenv("CANVASDOC_SECRET_REDIS_MAIN", "s3cret")

	v, err := EnvStore{}.Get("redis-main")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", string(v))

	v, err = EnvStore{}.Get("absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestChain_FirstHitWins(t *testing.T) {
	first, second := mapStore{}, mapStore{"k": []byte("two")}
	c := Chain{first, second}

	v, err := c.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(v))

	require.NoError(t, c.Set("k", []byte("one")))
	v, err = c.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "one", string(v))

	require.NoError(t, c.Delete("k"))
	v, _ = c.Get("k")
	assert.Nil(t, v)
}

func TestResolvePassword(t *testing.T) {
	s := mapStore{"db": []byte("pw")}

	got, err := ResolvePassword(s, "plain", "db")
	require.NoError(t, err)
	assert.Equal(t, "plain", got)

	got, err = ResolvePassword(s, "", "db")
	require.NoError(t, err)
	assert.Equal(t, "pw", got)

	got, err = ResolvePassword(s, "", "")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ResolvePassword(s, "", "missing")
	assert.Error(t, err)
}
