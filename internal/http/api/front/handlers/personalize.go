package handlers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/crystalgrimoire/grimoire/internal/astrology"
	"github.com/crystalgrimoire/grimoire/internal/models"
	"github.com/crystalgrimoire/grimoire/internal/personalization"
)

// recentJournalLimit bounds how many journal entries feed the mood signal.
const recentJournalLimit = 10

// loadPersonalization assembles the personalization context bundle for a user
// from their collection, recent journal entries, and the current moon phase.
func loadPersonalization(ctx context.Context, db *gorm.DB, user *models.User, now time.Time) (personalization.Context, error) {
	var collection []models.CollectionEntry
	if errFind := db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Find(&collection).Error; errFind != nil {
		return personalization.Context{}, errFind
	}

	var journal []models.JournalEntry
	if errFind := db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(recentJournalLimit).
		Find(&journal).Error; errFind != nil {
		return personalization.Context{}, errFind
	}

	return personalization.Build(user, collection, journal, astrology.CurrentMoonPhase(now)), nil
}
