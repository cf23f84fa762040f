package repository

import (
	"testing"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialhub/internal/model"
	"github.com/d60-Lab/socialhub/internal/testutil"
)

func openTestDB(tb testing.TB) *gorm.DB { return testutil.OpenDB(tb) }

func seedUser(tb testing.TB, db *gorm.DB, name string) *model.User {
	return testutil.SeedUser(tb, db, name)
}
