package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURL(t *testing.T) {
	assert.Equal(t,
		"http://localhost:9000/avatars/users/u1/a.png",
		PublicURL("http://localhost:9000", "", "avatars", "users/u1/a.png", true))
	assert.Equal(t,
		"https://minio.example.com/avatars/a.png",
		PublicURL("https://minio.example.com", "", "avatars", "a.png", false))
	assert.Equal(t,
		"https://avatars.s3.eu-west-1.amazonaws.com/a.png",
		PublicURL("", "eu-west-1", "avatars", "a.png", false))
	assert.Equal(t,
		"https://avatars.s3.us-east-1.amazonaws.com/a.png",
		PublicURL("", "", "avatars", "a.png", false))
}

func TestKeyFromURL(t *testing.T) {
	assert.Equal(t, "users/u1/a.png", KeyFromURL("http://localhost:9000/avatars/users/u1/a.png", "avatars"))
	assert.Equal(t, "a.png", KeyFromURL("https://avatars.s3.eu-west-1.amazonaws.com/a.png", "avatars"))
	assert.Equal(t, "", KeyFromURL("https://cdn.example.com/other.png", "avatars"))
}
