package models

// All lists every table model, in dependency order, for AutoMigrate in tests
// and tooling.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Session{},
		&FavoriteItem{},
		&WatchlistItem{},
		&ReadlistItem{},
		&Comment{},
		&CommentLike{},
		&Friendship{},
	}
}
