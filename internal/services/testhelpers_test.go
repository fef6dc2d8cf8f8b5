package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hoadb/memberwall/internal/database"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func fastHasher() BcryptHasher {
	return NewBcryptHasher(bcrypt.MinCost)
}

var (
	jpegHeader = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}
	pngHeader  = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a}
)
