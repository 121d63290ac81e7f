package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDSN(t *testing.T) {
	tests := map[string]string{
		"postgresql+asyncpg://u:p@db:5432/chat": "postgresql://u:p@db:5432/chat",
		"postgresql+psycopg://u:p@db/chat":      "postgresql://u:p@db/chat",
		"postgres://u:p@db/chat":                "postgres://u:p@db/chat",
		"host=db user=u password=p dbname=chat": "host=db user=u password=p dbname=chat",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeDSN(in), in)
	}
}

func TestMaskDSN(t *testing.T) {
	tests := map[string]string{
		"postgresql://chat:s3cret@db:5432/chat?sslmode=disable": "postgresql://chat:***@db:5432/chat?sslmode=disable",
		"postgres://chat@db/chat":                                "postgres://chat@db/chat",
		"host=db user=chat password=s3cret dbname=chat":          "host=db user=chat password=*** dbname=chat",
	}
	for in, want := range tests {
		got := MaskDSN(in)
		assert.Equal(t, want, got, in)
		assert.NotContains(t, got, "s3cret")
	}
}
