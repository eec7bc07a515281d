/* prefs.go
 * Mongo backed store for per team notification preferences. Teams without a stored document
 * get the defaults (everything enabled); the settings surface writes through Upsert
 */

package prefs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "notification_prefs"

// TeamPrefs is one team's notification switches
type TeamPrefs struct {
	TeamID         string `bson:"team_id"`
	Enabled        bool   `bson:"enabled"`
	MatchReminders bool   `bson:"match_reminders"`
	LiveAlerts     bool   `bson:"live_alerts"`
	ResultAlerts   bool   `bson:"result_alerts"`
}

// Defaults returns the preferences applied to a team without a stored document
func Defaults(teamID string) TeamPrefs {
	return TeamPrefs{
		TeamID:         teamID,
		Enabled:        true,
		MatchReminders: true,
		LiveAlerts:     true,
		ResultAlerts:   true,
	}
}

type Store struct {
	coll   *mongo.Collection
	logger zerolog.Logger
}

// Connect dials Mongo and returns a preference store bound to the given database
func Connect(ctx context.Context, uri, database string, logger zerolog.Logger) (*Store, *mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("prefs: connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("prefs: pinging mongo: %w", err)
	}
	return NewStore(client.Database(database).Collection(collectionName), logger), client, nil
}

// NewStore wraps an existing collection handle, used directly by tests
func NewStore(coll *mongo.Collection, logger zerolog.Logger) *Store {
	return &Store{coll: coll, logger: logger}
}

// Get returns one team's preferences, or the defaults when no document exists
func (s *Store) Get(ctx context.Context, teamID string) (TeamPrefs, error) {
	var p TeamPrefs
	err := s.coll.FindOne(ctx, bson.D{{Key: "team_id", Value: teamID}}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Defaults(teamID), nil
		}
		return Defaults(teamID), fmt.Errorf("prefs: fetching preferences for %s: %w", teamID, err)
	}
	return p, nil
}

// All returns the preferences for every listed team, applying defaults to teams without a
// stored document. A lookup failure degrades that team to defaults rather than failing the
// whole map
func (s *Store) All(ctx context.Context, teamIDs []string) map[string]TeamPrefs {
	stored := make(map[string]TeamPrefs)
	cursor, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		s.logger.Warn().Err(err).Msg("preference scan failed, using defaults for all teams")
	} else {
		var docs []TeamPrefs
		if err := cursor.All(ctx, &docs); err != nil {
			s.logger.Warn().Err(err).Msg("preference decode failed, using defaults for all teams")
		}
		for _, d := range docs {
			stored[d.TeamID] = d
		}
	}

	out := make(map[string]TeamPrefs, len(teamIDs))
	for _, id := range teamIDs {
		if p, ok := stored[id]; ok {
			out[id] = p
		} else {
			out[id] = Defaults(id)
		}
	}
	return out
}

// Upsert stores one team's preferences, inserting the document if none exists
func (s *Store) Upsert(ctx context.Context, p TeamPrefs) error {
	filter := bson.D{{Key: "team_id", Value: p.TeamID}}
	update := bson.M{"$set": p}
	_, err := s.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("prefs: upserting preferences for %s: %w", p.TeamID, err)
	}
	return nil
}
