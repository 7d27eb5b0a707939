// Seeds a Whispr database with demo users, relationships and comments.
// Intended for local development against an empty database.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"whispr/internal/auth"
	"whispr/internal/config"
	"whispr/internal/database"
	"whispr/internal/models"

	"github.com/google/uuid"
)

type SeedConfig struct {
	NumUsers          int
	CommentsPerUser   int
	FollowProbability float64
	LikeProbability   float64
	ViewProbability   float64
}

var usernames = []string{
	"luna", "atlas", "miko", "sage", "indigo", "wren", "juno", "echo",
	"nova", "reed", "ivy", "felix", "orion", "pearl", "ember", "basil",
}

var sampleTexts = []string{
	"Just watched the sunrise from the rooftop. Worth the alarm.",
	"Hot take: tea beats coffee for late night coding.",
	"Anyone else rereading their favorite book instead of starting new ones?",
	"Shipped a side project today. Tiny, but mine.",
	"The city is so quiet on Sunday mornings.",
	"Learning to make pasta from scratch. Flour everywhere.",
	"Found a new running route along the river.",
	"Rainy days are for long playlists and longer naps.",
}

var sampleTopics = [][]string{
	{"life"},
	{"tech", "opinions"},
	{"books"},
	{"projects", "tech"},
	{"city"},
	{"cooking"},
	{"running", "outdoors"},
	{"music"},
}

func main() {
	seedCfg := SeedConfig{
		NumUsers:          12,
		CommentsPerUser:   4,
		FollowProbability: 0.25,
		LikeProbability:   0.3,
		ViewProbability:   0.6,
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mongodb, err := database.NewMongoDB(cfg.Database.URI, cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongodb.Close(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := mongodb.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	log.Printf("Seeding %d users with up to %d comments each", seedCfg.NumUsers, seedCfg.CommentsPerUser)

	users, err := seedUsers(ctx, mongodb, seedCfg.NumUsers)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	followCount := seedFollows(users, seedCfg.FollowProbability)

	comments, err := seedComments(ctx, mongodb, users, seedCfg)
	if err != nil {
		log.Fatalf("Failed to seed comments: %v", err)
	}

	// Persist users last so follow edges and totalComments land together.
	for _, u := range users {
		if err := mongodb.SaveUser(ctx, u); err != nil {
			log.Fatalf("Failed to save user %s: %v", u.Username, err)
		}
	}

	log.Printf("Seed complete:")
	log.Printf("- Users: %d", len(users))
	log.Printf("- Follow edges: %d", followCount)
	log.Printf("- Comments: %d", len(comments))
}

func seedUsers(ctx context.Context, store database.Store, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	now := time.Now()

	for i := 0; i < count; i++ {
		username := usernames[i%len(usernames)]
		if i >= len(usernames) {
			username = fmt.Sprintf("%s%d", username, i/len(usernames))
		}

		publicID, err := auth.GeneratePublicID(ctx, store, username)
		if err != nil {
			return nil, fmt.Errorf("generate publicId for %s: %w", username, err)
		}

		user := &models.User{
			ID:         uuid.New(),
			Email:      fmt.Sprintf("%s@example.com", username),
			Username:   username,
			PublicID:   publicID,
			Gender:     []string{models.GenderFemale, models.GenderMale, models.GenderOther}[i%3],
			Age:        18 + rand.Intn(30),
			ProfilePic: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
			Followers:  make([]uuid.UUID, 0),
			Followed:   make([]uuid.UUID, 0),
			Bookmarked: make([]uuid.UUID, 0),
			CreatedAt:  now.Add(-time.Duration(rand.Intn(90*24)) * time.Hour),
			UpdatedAt:  now,
		}

		if err := store.SaveUser(ctx, user); err != nil {
			return nil, fmt.Errorf("save user %s: %w", username, err)
		}
		users = append(users, user)
	}

	return users, nil
}

// seedFollows wires random follow edges, keeping both sides of each edge
// consistent the way the relationship actor would.
func seedFollows(users []*models.User, probability float64) int {
	edges := 0
	for _, follower := range users {
		for _, target := range users {
			if follower.ID == target.ID || rand.Float64() > probability {
				continue
			}
			if target.HasFollower(follower.ID) {
				continue
			}
			target.Followers = append(target.Followers, follower.ID)
			follower.Followed = append(follower.Followed, target.ID)
			edges++
		}
	}
	return edges
}

func seedComments(ctx context.Context, store database.Store, users []*models.User, cfg SeedConfig) ([]*models.Comment, error) {
	comments := make([]*models.Comment, 0)
	now := time.Now()

	for _, owner := range users {
		n := 1 + rand.Intn(cfg.CommentsPerUser)
		for i := 0; i < n; i++ {
			pick := rand.Intn(len(sampleTexts))
			comment := &models.Comment{
				ID:        uuid.New(),
				Text:      sampleTexts[pick],
				Topics:    sampleTopics[pick],
				UserID:    owner.ID,
				Likes:     make([]uuid.UUID, 0),
				Replies:   make([]uuid.UUID, 0),
				ViewedBy:  make([]uuid.UUID, 0),
				Public:    rand.Float64() > 0.1,
				CreatedAt: now.Add(-time.Duration(rand.Intn(30*24)) * time.Hour),
				UpdatedAt: now,
			}

			for _, reader := range users {
				if reader.ID == owner.ID {
					continue
				}
				if rand.Float64() < cfg.ViewProbability {
					comment.ViewedBy = append(comment.ViewedBy, reader.ID)
					if rand.Float64() < cfg.LikeProbability {
						comment.Likes = append(comment.Likes, reader.ID)
					}
				}
			}

			if err := store.SaveComment(ctx, comment); err != nil {
				return nil, fmt.Errorf("save comment for %s: %w", owner.Username, err)
			}
			owner.TotalComments++
			comments = append(comments, comment)
		}
	}

	return comments, nil
}
