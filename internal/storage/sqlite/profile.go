// ABOUTME: User profile storage operations for SQLite
// ABOUTME: One row per user_id with JSON array serialization for list fields
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harper/sous/internal/models"
)

// ProfileStore handles user profile persistence
type ProfileStore struct {
	db *DB
}

// NewProfileStore creates a new ProfileStore
func NewProfileStore(db *DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Get retrieves the profile for a user, returning nil if not found
func (s *ProfileStore) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	var (
		name, subscription, goal sql.NullString
		prefsJSON, allergiesJSON sql.NullString
		profile                  models.UserProfile
		updatedAt                time.Time
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, name, subscription_type, daily_calories, protein_target,
			fitness_goal, dietary_preferences, allergies, updated_at
		FROM user_profiles
		WHERE user_id = ?
	`, userID).Scan(&profile.UserID, &name, &subscription, &profile.DailyCalories, &profile.ProteinTarget,
		&goal, &prefsJSON, &allergiesJSON, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	profile.Name = name.String
	profile.SubscriptionType = subscription.String
	if profile.SubscriptionType == "" {
		profile.SubscriptionType = models.SubscriptionFree
	}
	profile.FitnessGoal = goal.String
	profile.DietaryPreferences = unmarshalList(prefsJSON)
	profile.Allergies = unmarshalList(allergiesJSON)
	profile.LastUpdated = updatedAt

	return &profile, nil
}

// Save saves or updates a user profile (upsert)
func (s *ProfileStore) Save(ctx context.Context, profile *models.UserProfile) error {
	if profile == nil || profile.UserID == "" {
		return errors.New("profile user_id is required")
	}

	prefsJSON, err := marshalList(profile.DietaryPreferences)
	if err != nil {
		return err
	}
	allergiesJSON, err := marshalList(profile.Allergies)
	if err != nil {
		return err
	}

	subscription := profile.SubscriptionType
	if subscription == "" {
		subscription = models.SubscriptionFree
	}

	now := time.Now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, name, subscription_type, daily_calories, protein_target,
			fitness_goal, dietary_preferences, allergies, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			name = excluded.name,
			subscription_type = excluded.subscription_type,
			daily_calories = excluded.daily_calories,
			protein_target = excluded.protein_target,
			fitness_goal = excluded.fitness_goal,
			dietary_preferences = excluded.dietary_preferences,
			allergies = excluded.allergies,
			updated_at = excluded.updated_at
	`, profile.UserID, profile.Name, subscription, profile.DailyCalories, profile.ProteinTarget,
		profile.FitnessGoal, prefsJSON, allergiesJSON, now)
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", profile.UserID, err)
	}

	profile.SubscriptionType = subscription
	profile.LastUpdated = now
	return nil
}

// Delete removes a user profile
func (s *ProfileStore) Delete(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM user_profiles WHERE user_id = ?`, userID)
	return err
}
