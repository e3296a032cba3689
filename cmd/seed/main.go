package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"animov/pkg/config"
	"animov/pkg/content"
	"animov/pkg/database"
	"animov/pkg/logger"
	"animov/pkg/models"
	"animov/pkg/s3"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const avatarSource = "https://cataas.com/cat?width=256&height=256"

func main() {
	var withAvatars bool
	flag.BoolVar(&withAvatars, "avatars", false, "download placeholder avatars and upload them to S3")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.ForService("seed", cfg.LogLevel, cfg.LogPretty)
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}
	defer database.Close(db)

	var s3Client *s3.Client
	if withAvatars {
		s3Client, err = s3.NewClient(cfg)
		if err != nil {
			log.Error("Failed to create S3 client: %v", err)
			panic(err)
		}
	}

	if err := seedDatabase(db, s3Client, log); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

type seedUser struct {
	email       string
	username    string
	displayName string
}

var testUsers = []seedUser{
	{"alice@test.com", "alice", "Alice"},
	{"bob@test.com", "bob", "Bob"},
	{"charlie@test.com", "charlie", "Charlie"},
	{"diana@test.com", "diana", "Diana"},
	{"eve@test.com", "eve", "Eve"},
}

const testPassword = "password123"

func seedDatabase(db *gorm.DB, s3Client *s3.Client, log *logger.Logger) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	users := make([]*models.User, 0, len(testUsers))
	for _, data := range testUsers {
		user, err := ensureUser(db, data, string(hashedPassword), log)
		if err != nil {
			return err
		}
		if s3Client != nil && user.AvatarURL == "" {
			if err := uploadAvatar(db, s3Client, httpClient, user); err != nil {
				log.Warn("Failed to upload avatar for %s: %v", user.Username, err)
			}
		}
		users = append(users, user)
	}

	alice, bob, charlie, diana, eve := users[0], users[1], users[2], users[3], users[4]

	friendships := []struct {
		requester, addressee *models.User
		status               models.FriendshipStatus
	}{
		{alice, bob, models.FriendshipAccepted},
		{alice, charlie, models.FriendshipAccepted},
		{diana, alice, models.FriendshipPending},
		{bob, charlie, models.FriendshipPending},
		{eve, diana, models.FriendshipBlocked},
	}
	for _, f := range friendships {
		low, high := models.OrderedPair(f.requester.ID, f.addressee.ID)
		row := &models.Friendship{UserLowID: low, UserHighID: high, RequesterID: f.requester.ID, Status: f.status}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
			return fmt.Errorf("failed to seed friendship %s/%s: %w", f.requester.Username, f.addressee.Username, err)
		}
	}

	if err := seedLibrary(db, alice, bob); err != nil {
		return err
	}
	if err := seedComments(db, users); err != nil {
		return err
	}

	log.Info("Seeded %d users and %d friendships", len(users), len(friendships))
	return nil
}

func ensureUser(db *gorm.DB, data seedUser, hashedPassword string, log *logger.Logger) (*models.User, error) {
	var existing models.User
	err := db.Where("email = ? OR username = ?", data.email, data.username).First(&existing).Error
	if err == nil {
		log.Info("User %s already exists, skipping", existing.Username)
		return &existing, nil
	}
	if !database.IsNotFound(err) {
		return nil, fmt.Errorf("failed to look up user %s: %w", data.username, err)
	}

	user := &models.User{
		Email:         data.email,
		Username:      data.username,
		Password:      hashedPassword,
		DisplayName:   data.displayName,
		Preferences:   models.DefaultPreferences(),
		Notifications: models.DefaultNotificationSettings(),
		Privacy:       models.DefaultPrivacySettings(),
		IsActive:      true,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", data.username, err)
	}
	log.Info("Created user: %s (%s)", user.Username, user.Email)
	return user, nil
}

func uploadAvatar(db *gorm.DB, s3Client *s3.Client, httpClient *http.Client, user *models.User) error {
	resp, err := httpClient.Get(avatarSource)
	if err != nil {
		return fmt.Errorf("download avatar: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download avatar: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read avatar: %w", err)
	}

	key := fmt.Sprintf("avatars/%s.jpg", user.ID)
	url, err := s3Client.UploadFile(key, bytes.NewReader(body), "image/jpeg")
	if err != nil {
		return err
	}
	user.AvatarURL = url
	return db.Model(user).Update("avatar_url", url).Error
}

func seedLibrary(db *gorm.DB, alice, bob *models.User) error {
	rating := 9.5
	progress := 12
	favorites := []*models.FavoriteItem{
		{UserID: alice.ID, ContentID: "tv-1399", ContentType: string(content.TypeTV), Title: "Game of Thrones", Rating: &rating},
		{UserID: alice.ID, ContentID: "anime-5114", ContentType: string(content.TypeAnime), Title: "Fullmetal Alchemist: Brotherhood"},
		{UserID: bob.ID, ContentID: "movie-603", ContentType: string(content.TypeMovie), Title: "The Matrix"},
	}
	watchlist := []*models.WatchlistItem{
		{TrackedItem: models.TrackedItem{UserID: alice.ID, ContentID: "anime-52991", ContentType: string(content.TypeAnime), Title: "Frieren", Status: string(content.WatchWatching), Progress: &progress}},
		{TrackedItem: models.TrackedItem{UserID: bob.ID, ContentID: "tv-1396", ContentType: string(content.TypeTV), Title: "Breaking Bad", Status: string(content.WatchPlanned)}},
	}
	readlist := []*models.ReadlistItem{
		{TrackedItem: models.TrackedItem{UserID: alice.ID, ContentID: "book-zyTCAlFPjgYC", ContentType: string(content.TypeBook), Title: "The Google Story", Status: string(content.ReadPlanned)}},
		{TrackedItem: models.TrackedItem{UserID: bob.ID, ContentID: "manga-2", ContentType: string(content.TypeManga), Title: "Berserk", Status: string(content.ReadReading)}},
	}

	skipDuplicates := db.Clauses(clause.OnConflict{DoNothing: true})
	if err := skipDuplicates.Create(&favorites).Error; err != nil {
		return fmt.Errorf("failed to seed favorites: %w", err)
	}
	if err := skipDuplicates.Create(&watchlist).Error; err != nil {
		return fmt.Errorf("failed to seed watchlist: %w", err)
	}
	if err := skipDuplicates.Create(&readlist).Error; err != nil {
		return fmt.Errorf("failed to seed readlist: %w", err)
	}
	return nil
}

func seedComments(db *gorm.DB, users []*models.User) error {
	var count int64
	if err := db.Model(&models.Comment{}).Where("content_id = ?", "tv-1399").Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count comments: %w", err)
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for i, user := range users {
			rating := 6 + i%5
			root := &models.Comment{
				UserID:      user.ID,
				ContentID:   "tv-1399",
				ContentType: string(content.TypeTV),
				Rating:      &rating,
				Text:        fmt.Sprintf("Season %d is my favorite.", i+1),
			}
			if err := tx.Create(root).Error; err != nil {
				return fmt.Errorf("failed to seed comment: %w", err)
			}

			replier := users[(i+1)%len(users)]
			reply := &models.Comment{
				UserID:      replier.ID,
				ContentID:   root.ContentID,
				ContentType: root.ContentType,
				Text:        "Agreed!",
				ParentID:    &root.ID,
			}
			if err := tx.Create(reply).Error; err != nil {
				return fmt.Errorf("failed to seed reply: %w", err)
			}
			if err := tx.Create(&models.CommentLike{CommentID: root.ID, UserID: replier.ID}).Error; err != nil {
				return fmt.Errorf("failed to seed like: %w", err)
			}
		}
		return nil
	})
}
